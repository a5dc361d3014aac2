package actions

import (
	"errors"
	"fmt"
)

var errNoTrash = fmt.Errorf("no trash available on this system: %w", errors.ErrUnsupported)

// Delete moves the selection to the trash. The whole batch is confirmed
// once; without confirmation nothing happens. One item failing does not
// stop the others.
func (d *Dispatcher) Delete(names []string, confirmed bool) Result {
	res := Result{Op: OpDelete}
	paths := d.resolve(names)
	if len(paths) == 0 {
		res.NoOp = true
		return res
	}
	if !confirmed {
		res.NeedsConfirmation = true
		res.Message = fmt.Sprintf("Move %s to the trash?", plural(len(paths), "item"))
		return res
	}

	for _, p := range paths {
		if d.trash == nil {
			res.fail(p, errNoTrash)
			continue
		}
		item, err := d.trash.Put(p)
		if err != nil {
			res.fail(p, err)
			continue
		}
		res.Succeeded = append(res.Succeeded, p)
		res.Trashed = append(res.Trashed, item)
	}

	res.Refresh = true
	res.Message = fmt.Sprintf("Moved %s to the trash", plural(len(res.Succeeded), "item"))
	d.record(OpDelete, paths, "", res)
	return res
}
