package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/reprx/internal/ingest"
)

type fakeIngester struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeIngester) Ingest(_ context.Context, r io.Reader) (*ingest.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	body := string(data)
	f.calls = append(f.calls, body)
	if f.fail[body] {
		return nil, errors.New("bad export")
	}
	return &ingest.Result{SessionsInserted: 1, SetsInserted: 3, WarmupsSkipped: 2}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestImportSkipsUnchangedFiles verifies the state DB makes a second run a no-op
// and that an edited file is picked up again.
func TestImportSkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "first")
	writeFile(t, dir, "nested/b.CSV", "second")
	writeFile(t, dir, "notes.txt", "ignored")

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	defer state.Close()

	ing := &fakeIngester{}
	stats, err := New(ing, state, testLogger(), false).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if stats.FilesProcessed != 2 || stats.SessionsInserted != 2 || stats.SetsInserted != 6 || stats.WarmupsSkipped != 4 {
		t.Errorf("first run stats = %+v", stats)
	}
	if len(ing.calls) != 2 || ing.calls[0] != "first" || ing.calls[1] != "second" {
		t.Errorf("calls = %v", ing.calls)
	}

	stats, err = New(ing, state, testLogger(), false).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if stats.FilesSkipped != 2 || stats.FilesProcessed != 0 {
		t.Errorf("second run stats = %+v", stats)
	}

	writeFile(t, dir, "a.csv", "first, edited")
	stats, err = New(ing, state, testLogger(), false).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("third import: %v", err)
	}
	if stats.FilesProcessed != 1 || stats.FilesSkipped != 1 {
		t.Errorf("third run stats = %+v", stats)
	}
}

// TestImportFailedFileRetried verifies a rejected file is counted but not marked as imported.
func TestImportFailedFileRetried(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.csv", "broken")
	writeFile(t, dir, "good.csv", "fine")

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	defer state.Close()

	ing := &fakeIngester{fail: map[string]bool{"broken": true}}
	stats, err := New(ing, state, testLogger(), false).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if stats.FilesErrored != 1 || stats.FilesProcessed != 1 {
		t.Errorf("stats = %+v", stats)
	}

	done, err := state.IsImported("bad.csv", int64(len("broken")), mustHash(t, filepath.Join(dir, "bad.csv")))
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("failed file was marked imported")
	}
}

// TestImportDryRun verifies dry runs never call the ingester.
func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "first")

	ing := &fakeIngester{}
	stats, err := New(ing, nil, testLogger(), true).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if stats.FilesProcessed != 1 || len(ing.calls) != 0 {
		t.Errorf("stats = %+v, calls = %d", stats, len(ing.calls))
	}
}

// TestImportMissingDir verifies a missing export directory is an error.
func TestImportMissingDir(t *testing.T) {
	_, err := New(&fakeIngester{}, nil, testLogger(), false).Import(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error")
	}
}

// TestHashFile verifies the SHA-256 hex digest of a known input.
func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x", "abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := mustHash(t, filepath.Join(dir, "x")); got != want {
		t.Errorf("hash = %s, want %s", got, want)
	}
}

func mustHash(t *testing.T, path string) string {
	t.Helper()
	h, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

// TestStateList verifies imported files are listed with their size and
// session count, and that failed files are not recorded.
func TestStateList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "first")
	writeFile(t, dir, "nested/b.csv", "second")
	writeFile(t, dir, "c.csv", "broken")

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	defer state.Close()

	files, err := state.List()
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("empty state listed %d files", len(files))
	}

	ing := &fakeIngester{fail: map[string]bool{"broken": true}}
	if _, err := New(ing, state, testLogger(), false).Import(context.Background(), dir); err != nil {
		t.Fatalf("import: %v", err)
	}

	files, err = state.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := make(map[string]ImportedFile)
	for _, f := range files {
		got[f.Path] = f
	}
	if len(got) != 2 {
		t.Fatalf("listed %v, want a.csv and nested/b.csv", files)
	}
	for path, size := range map[string]int64{"a.csv": 5, "nested/b.csv": 6} {
		f, ok := got[path]
		if !ok {
			t.Fatalf("%s not listed", path)
		}
		if f.Size != size || f.Sessions != 1 {
			t.Errorf("%s: size=%d sessions=%d, want size=%d sessions=1", path, f.Size, f.Sessions, size)
		}
		if f.ImportedAt.IsZero() || f.ImportedAt.After(time.Now().Add(time.Minute)) {
			t.Errorf("%s: imported_at = %v", path, f.ImportedAt)
		}
	}
}
