// Package session holds the per-process browsing state: the current
// directory, the directories visited before it, and the file clipboard.
package session

import (
	"path/filepath"
	"sync"
)

type Session struct {
	mu        sync.RWMutex
	cwd       string
	history   []string
	clipboard []string
}

// New starts a session in dir, which must already be absolute.
func New(dir string) *Session {
	return &Session{cwd: filepath.Clean(dir)}
}

func (s *Session) Cwd() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cwd
}

// SetCwd moves to dir and records the directory being left.
func (s *Session) SetCwd(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dir = filepath.Clean(dir)
	if dir == s.cwd {
		return
	}
	s.history = append(s.history, s.cwd)
	s.cwd = dir
}

// Back moves to the parent of the current directory. It reports false when
// already at the filesystem root. The history list is not consulted.
func (s *Session) Back() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent := filepath.Dir(s.cwd)
	if parent == s.cwd {
		return s.cwd, false
	}
	s.history = append(s.history, s.cwd)
	s.cwd = parent
	return parent, true
}

// History returns the directories left so far, oldest first.
func (s *Session) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.history...)
}

// SetClipboard replaces the staged paths with a copy of paths.
func (s *Session) SetClipboard(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = append([]string(nil), paths...)
}

// Clipboard returns a copy of the staged paths; reading does not clear them.
func (s *Session) Clipboard() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.clipboard...)
}
