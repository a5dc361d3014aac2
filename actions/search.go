package actions

import (
	"context"
	"fmt"

	"file-manager/search"
)

// Search looks for keyword in every name below the current directory and
// returns the whole result set at once. The call blocks for the full walk.
func (d *Dispatcher) Search(ctx context.Context, keyword string) Result {
	res := Result{Op: OpSearch}
	if keyword == "" {
		res.NoOp = true
		return res
	}

	cwd := d.session.Cwd()
	matches, err := search.Names(ctx, cwd, keyword)
	if err != nil {
		res.fail(cwd, err)
		return res
	}

	if len(matches) == 0 {
		res.NotFound = true
		res.Message = "No matching files or folders."
		return res
	}
	res.Matches = matches
	res.Message = fmt.Sprintf("Found %s", plural(len(matches), "result"))
	return res
}
