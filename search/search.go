// Package search finds files and directories by name below a root.
package search

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// Names walks root recursively and returns the absolute path of every file
// or directory whose name contains keyword, compared case-insensitively.
// The root itself is not a candidate and symlinks are not followed.
// Unreadable subtrees are skipped. An empty keyword matches nothing.
func Names(ctx context.Context, root, keyword string) ([]string, error) {
	if keyword == "" {
		return nil, nil
	}
	needle := strings.ToLower(keyword)
	root = filepath.Clean(root)

	var (
		mu      sync.Mutex
		matches []string
	)
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || path == root {
			return nil
		}

		if strings.Contains(strings.ToLower(d.Name()), needle) {
			mu.Lock()
			matches = append(matches, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}
