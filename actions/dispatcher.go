// Package actions maps user commands over a selection onto filesystem and
// desktop calls. Every action returns a Result; nothing here talks to the
// user directly.
package actions

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"file-manager/journal"
	"file-manager/listing"
	"file-manager/platform"
	"file-manager/session"
	"file-manager/tasks"
	"file-manager/trash"
)

// Launcher performs desktop shell integrations.
type Launcher interface {
	Do(ctx context.Context, verb platform.Verb, path string) error
}

// Trasher moves paths into a recoverable trash.
type Trasher interface {
	Put(path string) (trash.Item, error)
}

// Submitter queues background work.
type Submitter interface {
	Submit(kind string, fn tasks.Func) (tasks.Task, error)
}

// Deps are the collaborators a Dispatcher drives.
type Deps struct {
	Session   *session.Session
	Lister    *listing.Lister
	Launcher  Launcher
	Clipboard platform.TextClipboard
	// Trash may be nil when the platform has none; Delete then fails per item.
	Trash     Trasher
	Tasks     Submitter
	Journal   *journal.Journal
	Logger    *zap.Logger
}

type Dispatcher struct {
	session   *session.Session
	lister    *listing.Lister
	launcher  Launcher
	clipboard platform.TextClipboard
	trash     Trasher
	tasks     Submitter
	journal   *journal.Journal
	logger    *zap.Logger
}

func New(d Deps) *Dispatcher {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lister := d.Lister
	if lister == nil {
		lister = listing.NewLister(logger)
	}
	return &Dispatcher{
		session:   d.Session,
		lister:    lister,
		launcher:  d.Launcher,
		clipboard: d.Clipboard,
		trash:     d.Trash,
		tasks:     d.Tasks,
		journal:   d.Journal,
		logger:    logger,
	}
}

func (d *Dispatcher) Session() *session.Session {
	return d.session
}

// List returns the entries of the current directory. When the directory
// cannot be read the entries are empty and the failure says why.
func (d *Dispatcher) List() ([]listing.Entry, *Failure) {
	cwd := d.session.Cwd()
	entries, err := d.lister.List(cwd)
	if err != nil {
		d.logger.Warn("cannot list directory", zap.String("dir", cwd), zap.Error(err))
		f := failure(cwd, err)
		return entries, &f
	}
	return entries, nil
}

// resolve turns selected names into absolute paths in the current directory.
func (d *Dispatcher) resolve(names []string) []string {
	cwd := d.session.Cwd()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if filepath.IsAbs(name) {
			paths = append(paths, filepath.Clean(name))
			continue
		}
		paths = append(paths, filepath.Join(cwd, name))
	}
	return paths
}

// target makes a prompted destination absolute relative to the current directory.
func (d *Dispatcher) target(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(d.session.Cwd(), p)
}

func (d *Dispatcher) record(op Op, sources []string, dest string, res Result) {
	if err := d.journal.Record(string(op), sources, dest, res.errorStrings()); err != nil {
		d.logger.Error("journal write failed", zap.String("op", string(op)), zap.Error(err))
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%s %ss", listing.FormatCount(int64(n)), noun)
}
