package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docmeta/internal/common"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeIngestor struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeIngestor) IngestPath(_ context.Context, path string) (IngestionResult, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	switch {
	case strings.Contains(path, "broken"):
		return IngestionResult{SourcePath: path, Err: "Failed to extract PDF metadata: bad"}, nil
	case strings.Contains(path, "dup"):
		return IngestionResult{SourcePath: path, RecordID: 2, Duplicate: true}, nil
	case strings.Contains(path, "flaky"):
		return IngestionResult{}, errors.New("worker is busy")
	case strings.Contains(path, "dberr"):
		return IngestionResult{}, common.DatabaseError("insert record", errors.New("disk full"))
	}
	return IngestionResult{SourcePath: path, RecordID: 1}, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.csv"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "sub", "B.PDF"))
	touch(t, filepath.Join(root, "sub", "broken.pdf"))
	touch(t, filepath.Join(root, "dup.docx"))
	touch(t, filepath.Join(root, "flaky.eml"))
	touch(t, filepath.Join(root, ".hidden", "c.csv"))
	touch(t, filepath.Join(root, ".secret.csv"))

	ing := &fakeIngestor{}
	results, stats, err := ScanDirectory(context.Background(), root, ScanOptions{SkipHidden: true}, ing, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, uint32(6), stats.Scanned)
	assert.Equal(t, uint32(5), stats.Matched)
	assert.Equal(t, uint32(3), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Duplicates)
	assert.Equal(t, uint32(2), stats.Failed)
	assert.Len(t, results, 5)

	sort.Strings(ing.paths)
	for _, p := range ing.paths {
		assert.NotContains(t, p, string(filepath.Separator)+".")
	}
}

func TestScanDirectoryStopsOnStorageFailure(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.csv"))
	touch(t, filepath.Join(root, "b_dberr.csv"))
	touch(t, filepath.Join(root, "c.csv"))

	ing := &fakeIngestor{}
	results, stats, err := ScanDirectory(context.Background(), root, ScanOptions{}, ing, quietLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDatabase)
	assert.Len(t, ing.paths, 2, "walk must stop at the failing file")
	assert.Len(t, results, 1)
	assert.Equal(t, uint32(1), stats.Succeeded)
}

func TestScanDirectoryIncludesHidden(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ".hidden", "c.csv"))
	touch(t, filepath.Join(root, "a.csv"))

	_, stats, err := ScanDirectory(context.Background(), root, ScanOptions{}, &fakeIngestor{}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, uint32(2), stats.Succeeded)
}

func TestScanDirectoryErrors(t *testing.T) {
	_, _, err := ScanDirectory(context.Background(), " ", ScanOptions{}, &fakeIngestor{}, quietLogger())
	assert.Error(t, err)

	_, _, err = ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), ScanOptions{}, &fakeIngestor{}, quietLogger())
	assert.Error(t, err)

	root := t.TempDir()
	touch(t, filepath.Join(root, "a.csv"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = ScanDirectory(ctx, root, ScanOptions{}, &fakeIngestor{}, quietLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/a/.git"))
	assert.True(t, IsHidden(".env.csv"))
	assert.False(t, IsHidden("/a/b.csv"))
	assert.False(t, IsHidden("."))
	assert.False(t, IsHidden(".."))
}

func TestAllowedExt(t *testing.T) {
	assert.True(t, AllowedExt(".PDF"))
	assert.True(t, AllowedExt("mbox"))
	assert.False(t, AllowedExt(".txt"))
	assert.False(t, AllowedExt(""))
}

func nextPath(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return ""
	}
}

func TestWatcherInitialScanAndNewFiles(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "old.csv")
	touch(t, existing)
	touch(t, filepath.Join(root, "skip.txt"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 20 * time.Millisecond, SkipHidden: true}, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, existing, nextPath(t, events))

	fresh := filepath.Join(root, "new.csv")
	touch(t, fresh)
	assert.Equal(t, fresh, nextPath(t, events))

	cancel()
	for range events {
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, quietLogger())
	assert.Error(t, err)
}
