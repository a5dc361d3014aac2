// Package trash moves files into the desktop trash instead of erasing them.
//
// On Linux and other freedesktop systems the home trash follows the XDG
// Trash layout: the item goes to Trash/files/<name> and a Trash/info/<name>.trashinfo
// record remembers where it came from. On macOS items are moved into ~/.Trash.
package trash

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/otiai10/copy"
)

const (
	infoSuffix = ".trashinfo"
	timeLayout = "2006-01-02T15:04:05"
)

// Item describes something that has been moved to the trash.
type Item struct {
	Name         string    `json:"name"`
	OriginalPath string    `json:"originalPath"`
	TrashedPath  string    `json:"trashedPath"`
	DeletedAt    time.Time `json:"deletedAt"`
}

type Trash struct {
	dir string
	// flat trashes (macOS) keep items directly under dir with no info records
	flat bool
	now  func() time.Time
}

// New returns an XDG-layout trash rooted at dir.
func New(dir string) *Trash {
	return &Trash{dir: dir, now: time.Now}
}

// Home returns the current user's trash for this platform.
func Home() (*Trash, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		return nil, fmt.Errorf("recycle bin: %w", errors.ErrUnsupported)
	case "darwin":
		return &Trash{dir: filepath.Join(home, ".Trash"), flat: true, now: time.Now}, nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}
	return New(filepath.Join(dataHome, "Trash")), nil
}

func (t *Trash) Dir() string {
	return t.dir
}

func (t *Trash) filesDir() string {
	if t.flat {
		return t.dir
	}
	return filepath.Join(t.dir, "files")
}

func (t *Trash) infoDir() string {
	return filepath.Join(t.dir, "info")
}

// Put moves path into the trash and returns where it went.
func (t *Trash) Put(path string) (Item, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Item{}, err
	}
	if _, err := os.Lstat(abs); err != nil {
		return Item{}, err
	}

	if err := os.MkdirAll(t.filesDir(), 0700); err != nil {
		return Item{}, fmt.Errorf("prepare trash: %w", err)
	}
	if !t.flat {
		if err := os.MkdirAll(t.infoDir(), 0700); err != nil {
			return Item{}, fmt.Errorf("prepare trash: %w", err)
		}
	}

	deletedAt := t.now()
	name, err := t.reserve(filepath.Base(abs), abs, deletedAt)
	if err != nil {
		return Item{}, err
	}

	dest := filepath.Join(t.filesDir(), name)
	if err := move(abs, dest); err != nil {
		if !t.flat {
			os.Remove(filepath.Join(t.infoDir(), name+infoSuffix))
		}
		return Item{}, err
	}

	return Item{
		Name:         name,
		OriginalPath: abs,
		TrashedPath:  dest,
		DeletedAt:    deletedAt,
	}, nil
}

// reserve picks a free name inside the trash. For XDG trashes the info file
// is created exclusively, which is what claims the name.
func (t *Trash) reserve(base, original string, deletedAt time.Time) (string, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem, ext = base, ""
	}

	for i := 1; i < 10000; i++ {
		name := base
		if i > 1 {
			name = stem + "." + strconv.Itoa(i) + ext
		}

		if _, err := os.Lstat(filepath.Join(t.filesDir(), name)); err == nil {
			continue
		}
		if t.flat {
			return name, nil
		}

		f, err := os.OpenFile(filepath.Join(t.infoDir(), name+infoSuffix), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("write trash info: %w", err)
		}

		_, err = fmt.Fprintf(f, "[Trash Info]\nPath=%s\nDeletionDate=%s\n", escapePath(original), deletedAt.Format(timeLayout))
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(f.Name())
			return "", fmt.Errorf("write trash info: %w", err)
		}
		return name, nil
	}
	return "", fmt.Errorf("no free trash name for %s", base)
}

// Restore moves a trashed item back to where it came from. It refuses to
// overwrite anything that now occupies the original path.
func (t *Trash) Restore(item Item) error {
	if _, err := os.Lstat(item.OriginalPath); err == nil {
		return fmt.Errorf("restore %s: %w", item.OriginalPath, fs.ErrExist)
	}
	if err := os.MkdirAll(filepath.Dir(item.OriginalPath), 0755); err != nil {
		return err
	}
	if err := move(item.TrashedPath, item.OriginalPath); err != nil {
		return err
	}
	if !t.flat {
		os.Remove(filepath.Join(t.infoDir(), item.Name+infoSuffix))
	}
	return nil
}

// Lookup reads the info record for a trashed name.
func (t *Trash) Lookup(name string) (Item, error) {
	if t.flat {
		return Item{}, fmt.Errorf("trash info: %w", errors.ErrUnsupported)
	}
	f, err := os.Open(filepath.Join(t.infoDir(), name+infoSuffix))
	if err != nil {
		return Item{}, err
	}
	defer f.Close()

	item := Item{Name: name, TrashedPath: filepath.Join(t.filesDir(), name)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "Path":
			p, err := url.PathUnescape(value)
			if err != nil {
				return Item{}, fmt.Errorf("trash info path: %w", err)
			}
			item.OriginalPath = p
		case "DeletionDate":
			if ts, err := time.ParseInLocation(timeLayout, value, time.Local); err == nil {
				item.DeletedAt = ts
			}
		}
	}
	return item, scanner.Err()
}

func escapePath(p string) string {
	u := url.URL{Path: filepath.ToSlash(p)}
	return u.EscapedPath()
}

// move renames src to dst, copying across filesystems when a rename is
// not possible.
func move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}

	if err := copy.Copy(src, dst, copy.Options{PreserveTimes: true}); err != nil {
		return err
	}
	return os.RemoveAll(src)
}
