package listing

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ListError is returned when the directory itself cannot be enumerated.
type ListError struct {
	Dir string
	Err error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("cannot list %s: %v", e.Dir, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// Lister turns a directory path into entries. It keeps no state between
// calls; every listing is read fresh from disk.
type Lister struct {
	logger *zap.Logger
}

func NewLister(logger *zap.Logger) *Lister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lister{logger: logger}
}

// List returns every direct child of dir sorted by name. Children that
// disappear or become unreadable between enumeration and stat are logged
// and left out. A directory that cannot be read at all yields a *ListError
// and no entries.
func (l *Lister) List(dir string) ([]Entry, error) {
	names, err := os.ReadDir(dir)
	if err != nil {
		return []Entry{}, &ListError{Dir: dir, Err: err}
	}

	// os.ReadDir already sorts by filename
	entries := make([]Entry, 0, len(names))
	for _, d := range names {
		name := d.Name()
		fullPath := filepath.Join(dir, name)

		info, err := os.Lstat(fullPath)
		if err != nil {
			l.logger.Error("skipping entry", zap.String("path", fullPath), zap.Error(err))
			continue
		}

		isDir := info.IsDir()
		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := os.Stat(fullPath)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					l.logger.Error("skipping entry", zap.String("path", fullPath), zap.Error(err))
				}
				continue
			}
			isDir = target.IsDir()
		}

		entries = append(entries, newEntry(name, fullPath, info, isDir))
	}

	return entries, nil
}
