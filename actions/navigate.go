package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

var errInvalidPath = errors.New("invalid path")

// Enter descends into a directory entry, or opens anything else.
func (d *Dispatcher) Enter(ctx context.Context, name string) Result {
	paths := d.resolve([]string{name})
	if len(paths) == 0 {
		return Result{Op: OpEnter, NoOp: true}
	}

	p := paths[0]
	info, err := os.Stat(p)
	if err != nil {
		res := Result{Op: OpEnter}
		res.fail(p, err)
		return res
	}
	if !info.IsDir() {
		return d.Open(ctx, []string{p})
	}

	d.session.SetCwd(p)
	return Result{Op: OpEnter, Refresh: true, Cwd: p, Succeeded: []string{p}}
}

// Goto moves to any existing path typed into the address bar. A file path
// is accepted as well; listing it then reports the error.
func (d *Dispatcher) Goto(path string) Result {
	res := Result{Op: OpGoto}
	if path == "" {
		res.NoOp = true
		return res
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		res.fail(path, err)
		return res
	}
	if _, err := os.Stat(abs); err != nil {
		res.Failures = append(res.Failures, Failure{Path: path, Kind: Classify(err), Message: errInvalidPath.Error(), Err: err})
		return res
	}

	d.session.SetCwd(abs)
	res.Refresh = true
	res.Cwd = abs
	res.Succeeded = []string{abs}
	return res
}

// Back moves to the parent directory; at the filesystem root it does nothing.
func (d *Dispatcher) Back() Result {
	dir, ok := d.session.Back()
	if !ok {
		return Result{Op: OpBack, NoOp: true, Cwd: dir}
	}
	return Result{Op: OpBack, Refresh: true, Cwd: dir, Succeeded: []string{dir}}
}
