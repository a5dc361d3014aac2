package actions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
)

// Copy stages the selection for a later paste. The filesystem is not touched.
func (d *Dispatcher) Copy(names []string) Result {
	res := Result{Op: OpCopy}
	paths := d.resolve(names)
	if len(paths) == 0 {
		res.NoOp = true
		return res
	}

	d.session.SetClipboard(paths)
	res.Succeeded = paths
	res.Message = fmt.Sprintf("Copied %s", plural(len(paths), "item"))
	return res
}

// CopyPath puts the newline-joined absolute paths of the selection on the
// system text clipboard. The text is returned as well so the interface can
// place it on its own clipboard when the system one is unavailable.
func (d *Dispatcher) CopyPath(names []string) Result {
	res := Result{Op: OpCopyPath}
	paths := d.resolve(names)
	if len(paths) == 0 {
		res.NoOp = true
		return res
	}

	res.Text = strings.Join(paths, "\n")
	if err := d.clipboard.WriteAll(res.Text); err != nil {
		res.fail("", fmt.Errorf("system clipboard: %w", err))
		return res
	}
	res.Succeeded = paths
	res.Message = fmt.Sprintf("Copied %s", plural(len(paths), "path"))
	return res
}

// Paste copies every staged path into the current directory under its base
// name. Failures are collected per item; the rest of the batch continues.
func (d *Dispatcher) Paste() Result {
	res := Result{Op: OpPaste}
	sources := d.session.Clipboard()
	if len(sources) == 0 {
		res.NoOp = true
		res.Warning = true
		res.Message = "Clipboard is empty"
		return res
	}

	cwd := d.session.Cwd()
	for _, src := range sources {
		dest := filepath.Join(cwd, filepath.Base(src))
		if err := pastePath(src, dest); err != nil {
			res.fail(src, err)
			continue
		}
		res.Succeeded = append(res.Succeeded, dest)
	}

	res.Refresh = true
	res.Message = fmt.Sprintf("Pasted %s", plural(len(res.Succeeded), "item"))
	d.record(OpPaste, sources, cwd, res)
	return res
}

// pastePath copies src to dest. Directories never merge into an existing
// destination; a file replaces an existing file but not itself.
func pastePath(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if src == dest {
		return &fs.PathError{Op: "paste", Path: dest, Err: fs.ErrExist}
	}

	existing, err := os.Lstat(dest)
	switch {
	case err == nil && (info.IsDir() || existing.IsDir()):
		return &fs.PathError{Op: "paste", Path: dest, Err: fs.ErrExist}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}

	if info.IsDir() && within(src, dest) {
		return fmt.Errorf("cannot paste %s into itself", filepath.Base(src))
	}

	return copy.Copy(src, dest, copy.Options{PreserveTimes: true})
}

func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
