package actions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var errBadName = errors.New("new name cannot contain path separators")

// Rename gives the first selected item a new name in the same directory.
// An empty name means the prompt was cancelled. An existing target is
// never replaced.
func (d *Dispatcher) Rename(names []string, newName string) Result {
	res := Result{Op: OpRename}
	paths := d.resolve(names)
	if len(paths) == 0 || newName == "" {
		res.NoOp = true
		return res
	}

	oldPath := paths[0]
	if newName == filepath.Base(oldPath) {
		res.NoOp = true
		return res
	}
	if strings.ContainsAny(newName, `/\`) || newName == "." || newName == ".." {
		res.fail(oldPath, errBadName)
		return res
	}

	newPath := filepath.Join(filepath.Dir(oldPath), newName)
	if err := rename(oldPath, newPath); err != nil {
		res.fail(oldPath, err)
	} else {
		res.Succeeded = []string{newPath}
		res.Message = fmt.Sprintf("Renamed %s to %s", filepath.Base(oldPath), newName)
	}

	res.Refresh = true
	d.record(OpRename, []string{oldPath}, newPath, res)
	return res
}

func rename(oldPath, newPath string) error {
	if _, err := os.Lstat(oldPath); err != nil {
		return err
	}
	if _, err := os.Lstat(newPath); err == nil {
		return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(oldPath, newPath)
}
