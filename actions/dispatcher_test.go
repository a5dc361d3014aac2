package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file-manager/journal"
	"file-manager/platform"
	"file-manager/session"
	"file-manager/tasks"
	"file-manager/trash"
)

type launchCall struct {
	verb platform.Verb
	path string
}

type fakeLauncher struct {
	mu    sync.Mutex
	calls []launchCall
	fail  map[string]error
}

func (f *fakeLauncher) Do(_ context.Context, verb platform.Verb, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, launchCall{verb, path})
	return f.fail[path]
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

type harness struct {
	d         *Dispatcher
	launcher  *fakeLauncher
	clipboard *fakeClipboard
	trash     *trash.Trash
	journal   string
	done      chan tasks.Task
	root      string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "work")
	require.NoError(t, os.Mkdir(root, 0755))

	h := &harness{
		launcher:  &fakeLauncher{fail: map[string]error{}},
		clipboard: &fakeClipboard{},
		trash:     trash.New(filepath.Join(base, "Trash")),
		journal:   filepath.Join(base, "modifications.jsonl"),
		done:      make(chan tasks.Task, 8),
		root:      root,
	}
	pool := tasks.New(tasks.Config{Workers: 2}, nil, func(task tasks.Task) { h.done <- task })
	t.Cleanup(func() { pool.Close(true) })

	h.d = New(Deps{
		Session:   session.New(root),
		Launcher:  h.launcher,
		Clipboard: h.clipboard,
		Trash:     h.trash,
		Tasks:     pool,
		Journal:   journal.New(h.journal),
	})
	return h
}

func (h *harness) write(t *testing.T, rel, content string) string {
	t.Helper()
	p := filepath.Join(h.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func (h *harness) wait(t *testing.T) tasks.Task {
	t.Helper()
	select {
	case task := <-h.done:
		return task
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for task")
		return tasks.Task{}
	}
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

func TestEmptySelectionIsNoOp(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, res := range []Result{
		h.d.Open(ctx, nil),
		h.d.OpenElevated(ctx, nil),
		h.d.Reveal(ctx, nil),
		h.d.Copy(nil),
		h.d.CopyPath(nil),
		h.d.Delete(nil, true),
		h.d.Rename(nil, "x"),
		h.d.Compress(nil, "out.zip"),
		h.d.Extract(nil, "out"),
	} {
		assert.True(t, res.NoOp, "op %s", res.Op)
		assert.True(t, res.OK(), "op %s", res.Op)
	}
	assert.Empty(t, h.launcher.calls)
}

func TestCopyThenPasteRoundTrip(t *testing.T) {
	h := newHarness(t)
	a := h.write(t, "src/a.txt", "alpha")
	b := h.write(t, "src/b.bin", "\x00bravo")
	h.write(t, "src/folder/inner/c.txt", "charlie")
	require.NoError(t, os.Mkdir(filepath.Join(h.root, "dest"), 0755))

	require.False(t, h.d.Goto(filepath.Join(h.root, "src")).NoOp)
	copied := h.d.Copy([]string{"a.txt", "b.bin", "folder"})
	assert.Equal(t, "Copied 3 items", copied.Message)

	h.d.Goto(filepath.Join(h.root, "dest"))
	res := h.d.Paste()
	require.True(t, res.OK(), "%+v", res.Failures)
	assert.True(t, res.Refresh)
	assert.Len(t, res.Succeeded, 3)

	dest := filepath.Join(h.root, "dest")
	assert.Equal(t, "alpha", readFile(t, filepath.Join(dest, "a.txt")))
	assert.Equal(t, "\x00bravo", readFile(t, filepath.Join(dest, "b.bin")))
	assert.Equal(t, "charlie", readFile(t, filepath.Join(dest, "folder", "inner", "c.txt")))
	assert.Equal(t, "alpha", readFile(t, a))
	assert.Equal(t, "\x00bravo", readFile(t, b))

	srcInfo, _ := os.Stat(a)
	dstInfo, _ := os.Stat(filepath.Join(dest, "a.txt"))
	assert.True(t, srcInfo.ModTime().Equal(dstInfo.ModTime()), "modification time preserved")

	again := h.d.Paste()
	assert.Len(t, again.Failures, 1, "clipboard survives a paste; the folder now collides")
	assert.Equal(t, DestinationExists, again.Failures[0].Kind)

	assert.Contains(t, readFile(t, h.journal), `"action":"paste"`)
}

func TestPasteEmptyClipboard(t *testing.T) {
	h := newHarness(t)
	res := h.d.Paste()
	assert.True(t, res.NoOp)
	assert.True(t, res.Warning)
	assert.Equal(t, "Clipboard is empty", res.Message)
}

func TestPasteCollisionsContinueBatch(t *testing.T) {
	h := newHarness(t)
	h.write(t, "src/file.txt", "new")
	h.write(t, "src/dir/x.txt", "x")
	h.write(t, "src/ok.txt", "ok")
	h.write(t, "dest/file.txt", "old")
	h.write(t, "dest/dir/keep.txt", "keep")

	h.d.Goto(filepath.Join(h.root, "src"))
	h.d.Copy([]string{"dir", "file.txt", "ok.txt", "missing.txt"})
	h.d.Goto(filepath.Join(h.root, "dest"))
	res := h.d.Paste()

	require.Len(t, res.Failures, 2)
	assert.Equal(t, DestinationExists, res.Failures[0].Kind)
	assert.Equal(t, NotFound, res.Failures[1].Kind)
	assert.Len(t, res.Succeeded, 2)
	assert.True(t, res.Refresh)

	dest := filepath.Join(h.root, "dest")
	assert.Equal(t, "new", readFile(t, filepath.Join(dest, "file.txt")), "files overwrite like a plain file copy")
	assert.Equal(t, "ok", readFile(t, filepath.Join(dest, "ok.txt")))
	assert.NoFileExists(t, filepath.Join(dest, "dir", "x.txt"))
}

func TestPasteOntoItself(t *testing.T) {
	h := newHarness(t)
	h.write(t, "same.txt", "same")
	h.write(t, "tree/leaf.txt", "leaf")

	h.d.Copy([]string{"same.txt", "tree"})
	res := h.d.Paste()
	require.Len(t, res.Failures, 2)
	assert.Equal(t, DestinationExists, res.Failures[0].Kind)
	assert.Equal(t, "same", readFile(t, filepath.Join(h.root, "same.txt")))

	h.d.Goto(filepath.Join(h.root, "tree"))
	res = h.d.Paste()
	require.Len(t, res.Failures, 1)
	assert.Equal(t, OperationFailed, res.Failures[0].Kind)
	assert.Equal(t, []string{filepath.Join(h.root, "tree", "same.txt")}, res.Succeeded)
	assert.NoDirExists(t, filepath.Join(h.root, "tree", "tree"))
}

func TestDeleteNeedsConfirmationAndIsRecoverable(t *testing.T) {
	h := newHarness(t)
	p := h.write(t, "doomed.txt", "recover me")

	pending := h.d.Delete([]string{"doomed.txt"}, false)
	assert.True(t, pending.NeedsConfirmation)
	assert.FileExists(t, p)

	res := h.d.Delete([]string{"doomed.txt"}, true)
	require.True(t, res.OK())
	assert.True(t, res.Refresh)
	assert.NoFileExists(t, p)
	require.Len(t, res.Trashed, 1)

	item, err := h.trash.Lookup(res.Trashed[0].Name)
	require.NoError(t, err)
	assert.Equal(t, p, item.OriginalPath)
	assert.Equal(t, "recover me", readFile(t, item.TrashedPath))

	require.NoError(t, h.trash.Restore(item))
	assert.Equal(t, "recover me", readFile(t, p))
}

func TestDeleteContinuesAfterFailure(t *testing.T) {
	h := newHarness(t)
	h.write(t, "one.txt", "1")
	h.write(t, "two.txt", "2")

	res := h.d.Delete([]string{"one.txt", "ghost.txt", "two.txt"}, true)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, NotFound, res.Failures[0].Kind)
	assert.Equal(t, filepath.Join(h.root, "ghost.txt"), res.Failures[0].Path)
	assert.Len(t, res.Succeeded, 2)
	assert.Contains(t, readFile(t, h.journal), "ghost.txt")
}

func TestRename(t *testing.T) {
	h := newHarness(t)
	orig := h.write(t, "draft.txt", "draft")
	h.write(t, "final.txt", "final")

	res := h.d.Rename([]string{"draft.txt", "final.txt"}, "final.txt")
	require.Len(t, res.Failures, 1)
	assert.Equal(t, DestinationExists, res.Failures[0].Kind)
	assert.Equal(t, "draft", readFile(t, orig))
	assert.Equal(t, "final", readFile(t, filepath.Join(h.root, "final.txt")))

	assert.True(t, h.d.Rename([]string{"draft.txt"}, "").NoOp)

	bad := h.d.Rename([]string{"draft.txt"}, "../escape.txt")
	require.Len(t, bad.Failures, 1)
	assert.FileExists(t, orig)

	ok := h.d.Rename([]string{"draft.txt"}, "v2.txt")
	require.True(t, ok.OK())
	assert.Equal(t, []string{filepath.Join(h.root, "v2.txt")}, ok.Succeeded)
	assert.NoFileExists(t, orig)
	assert.Equal(t, "draft", readFile(t, filepath.Join(h.root, "v2.txt")))
}

func TestLaunchReportsPerItem(t *testing.T) {
	h := newHarness(t)
	bad := filepath.Join(h.root, "b.txt")
	h.launcher.fail[bad] = errors.New("no application registered")

	res := h.d.Open(context.Background(), []string{"a.txt", "b.txt", "c.txt"})
	assert.Len(t, res.Succeeded, 2)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, bad, res.Failures[0].Path)
	assert.Equal(t, OperationFailed, res.Failures[0].Kind)

	h.d.Reveal(context.Background(), []string{"a.txt"})
	h.d.OpenElevated(context.Background(), []string{"a.txt"})
	calls := h.launcher.calls
	assert.Equal(t, platform.VerbReveal, calls[3].verb)
	assert.Equal(t, platform.VerbOpenElevated, calls[4].verb)
}

func TestCopyPath(t *testing.T) {
	h := newHarness(t)
	res := h.d.CopyPath([]string{"a", "b"})
	want := filepath.Join(h.root, "a") + "\n" + filepath.Join(h.root, "b")
	require.True(t, res.OK())
	assert.Equal(t, want, h.clipboard.text)
	assert.Equal(t, want, res.Text)
	assert.Empty(t, h.d.Session().Clipboard(), "the file clipboard is a different target")

	h.clipboard.err = errors.New("no xclip")
	res = h.d.CopyPath([]string{"a"})
	assert.False(t, res.OK())
	assert.Equal(t, filepath.Join(h.root, "a"), res.Text)
}

func TestCompressThenExtract(t *testing.T) {
	h := newHarness(t)
	h.write(t, "photos/2024/beach.jpg", "sand")
	h.write(t, "photos/index.txt", "index")
	h.write(t, "notes.md", "notes")

	res := h.d.Compress([]string{"photos", "notes.md"}, "backup")
	require.True(t, res.OK())
	require.NotNil(t, res.Task)
	assert.False(t, res.Refresh)

	done := TaskResult(h.wait(t))
	require.True(t, done.OK(), "%+v", done)
	archivePath := filepath.Join(h.root, "backup.zip")
	assert.Equal(t, "Compressed 3 files to "+archivePath, done.Message)

	res = h.d.Extract([]string{"backup.zip"}, "restored")
	require.True(t, res.OK())
	done = TaskResult(h.wait(t))
	require.True(t, done.OK(), "%+v", done)
	assert.True(t, done.Refresh)

	restored := filepath.Join(h.root, "restored")
	assert.Equal(t, "sand", readFile(t, filepath.Join(restored, "2024", "beach.jpg")))
	assert.Equal(t, "index", readFile(t, filepath.Join(restored, "index.txt")))
	assert.Equal(t, "notes", readFile(t, filepath.Join(restored, "notes.md")))

	journalText := readFile(t, h.journal)
	assert.Contains(t, journalText, `"action":"compress"`)
	assert.Contains(t, journalText, `"action":"extract"`)
}

func TestCompressFailureSummary(t *testing.T) {
	h := newHarness(t)
	h.write(t, "here.txt", "here")

	h.d.Compress([]string{"here.txt", "gone.txt"}, "partial.zip")
	done := TaskResult(h.wait(t))
	require.Len(t, done.Failures, 1)
	assert.Equal(t, NotFound, done.Failures[0].Kind)
	assert.Contains(t, done.Message, "compress failed")
	assert.FileExists(t, filepath.Join(h.root, "partial.zip"))
}

func TestSearch(t *testing.T) {
	h := newHarness(t)
	h.write(t, "Docs/Invoice-March.pdf", "")
	h.write(t, "invoices/april.pdf", "")
	h.write(t, "misc.txt", "")

	assert.True(t, h.d.Search(context.Background(), "").NoOp)

	none := h.d.Search(context.Background(), "receipt")
	assert.True(t, none.NotFound)
	assert.Equal(t, "No matching files or folders.", none.Message)

	res := h.d.Search(context.Background(), "INVOICE")
	assert.Equal(t, []string{
		filepath.Join(h.root, "Docs", "Invoice-March.pdf"),
		filepath.Join(h.root, "invoices"),
	}, res.Matches)
	assert.Equal(t, "Found 2 results", res.Message)
}

func TestNavigation(t *testing.T) {
	h := newHarness(t)
	file := h.write(t, "sub/readme.txt", "hi")
	ctx := context.Background()

	res := h.d.Enter(ctx, "sub")
	assert.True(t, res.Refresh)
	assert.Equal(t, filepath.Join(h.root, "sub"), h.d.Session().Cwd())

	res = h.d.Enter(ctx, "readme.txt")
	assert.Equal(t, OpOpen, res.Op)
	assert.Equal(t, []launchCall{{platform.VerbOpen, file}}, h.launcher.calls)

	back := h.d.Back()
	assert.Equal(t, h.root, back.Cwd)

	missing := h.d.Goto(filepath.Join(h.root, "nowhere"))
	require.Len(t, missing.Failures, 1)
	assert.Equal(t, NotFound, missing.Failures[0].Kind)
	assert.Equal(t, h.root, h.d.Session().Cwd())

	res = h.d.Goto(file)
	assert.True(t, res.OK())
	assert.Equal(t, file, h.d.Session().Cwd())

	entries, listErr := h.d.List()
	assert.Empty(t, entries)
	require.NotNil(t, listErr)
	assert.Equal(t, OperationFailed, listErr.Kind)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, PermissionDenied, Classify(os.ErrPermission))
	assert.Equal(t, NotFound, Classify(&os.PathError{Op: "stat", Path: "/x", Err: os.ErrNotExist}))
	assert.Equal(t, DestinationExists, Classify(os.ErrExist))
	assert.Equal(t, OperationFailed, Classify(errors.New("boom")))
}

func TestDeleteWithoutTrash(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "kept.txt")
	require.NoError(t, os.WriteFile(p, []byte("kept"), 0644))

	d := New(Deps{Session: session.New(root)})
	res := d.Delete([]string{"kept.txt"}, true)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, OperationFailed, res.Failures[0].Kind)
	assert.ErrorIs(t, res.Failures[0].Err, errors.ErrUnsupported)
	assert.FileExists(t, p)
}
