package actions

import (
	"context"

	"file-manager/platform"
)

// Open launches each selected item with its default application.
func (d *Dispatcher) Open(ctx context.Context, names []string) Result {
	return d.launch(ctx, OpOpen, platform.VerbOpen, names)
}

// OpenElevated launches each selected item through privilege escalation.
func (d *Dispatcher) OpenElevated(ctx context.Context, names []string) Result {
	return d.launch(ctx, OpOpenElevated, platform.VerbOpenElevated, names)
}

// Reveal shows each selected item in the system file browser.
func (d *Dispatcher) Reveal(ctx context.Context, names []string) Result {
	return d.launch(ctx, OpReveal, platform.VerbReveal, names)
}

func (d *Dispatcher) launch(ctx context.Context, op Op, verb platform.Verb, names []string) Result {
	res := Result{Op: op}
	paths := d.resolve(names)
	if len(paths) == 0 {
		res.NoOp = true
		return res
	}

	for _, p := range paths {
		if err := d.launcher.Do(ctx, verb, p); err != nil {
			res.fail(p, err)
			continue
		}
		res.Succeeded = append(res.Succeeded, p)
	}
	return res
}
