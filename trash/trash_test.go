package trash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrash(t *testing.T) (*Trash, string) {
	t.Helper()
	base := t.TempDir()
	tr := New(filepath.Join(base, "Trash"))
	tr.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.Local) }
	work := filepath.Join(base, "work dir")
	require.NoError(t, os.MkdirAll(work, 0755))
	return tr, work
}

func TestPutIsRecoverable(t *testing.T) {
	tr, work := newTestTrash(t)
	src := filepath.Join(work, "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("keep me"), 0644))

	item, err := tr.Put(src)
	require.NoError(t, err)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "original should be gone")

	data, err := os.ReadFile(item.TrashedPath)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))

	info, err := os.ReadFile(filepath.Join(tr.Dir(), "info", "notes.txt.trashinfo"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "[Trash Info]")
	assert.Contains(t, string(info), "work%20dir/notes.txt")
	assert.Contains(t, string(info), "DeletionDate=2024-03-01T12:30:00")

	looked, err := tr.Lookup(item.Name)
	require.NoError(t, err)
	assert.Equal(t, src, looked.OriginalPath)

	require.NoError(t, tr.Restore(looked))
	data, err = os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
	_, err = os.Stat(filepath.Join(tr.Dir(), "info", "notes.txt.trashinfo"))
	assert.True(t, os.IsNotExist(err))
}

func TestPutDirectory(t *testing.T) {
	tr, work := newTestTrash(t)
	dir := filepath.Join(work, "album")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "inner"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inner", "a.jpg"), []byte("jpg"), 0644))

	item, err := tr.Put(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(item.TrashedPath, "inner", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpg", string(data))
}

func TestPutNameCollision(t *testing.T) {
	tr, work := newTestTrash(t)
	first := filepath.Join(work, "one", "report.pdf")
	second := filepath.Join(work, "two", "report.pdf")
	for _, p := range []string{first, second} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(p), 0644))
	}

	a, err := tr.Put(first)
	require.NoError(t, err)
	b, err := tr.Put(second)
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", a.Name)
	assert.Equal(t, "report.2.pdf", b.Name)

	data, err := os.ReadFile(b.TrashedPath)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), filepath.Join("two", "report.pdf")))
}

func TestPutMissing(t *testing.T) {
	tr, work := newTestTrash(t)
	_, err := tr.Put(filepath.Join(work, "ghost"))
	assert.True(t, os.IsNotExist(err))

	entries, _ := os.ReadDir(filepath.Join(tr.Dir(), "info"))
	assert.Empty(t, entries, "no info record should be left behind")
}

func TestRestoreRefusesToOverwrite(t *testing.T) {
	tr, work := newTestTrash(t)
	src := filepath.Join(work, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("old"), 0644))

	item, err := tr.Put(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))

	assert.ErrorIs(t, tr.Restore(item), os.ErrExist)
	data, _ := os.ReadFile(src)
	assert.Equal(t, "new", string(data))
}
