package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestAllowedExtAndHidden(t *testing.T) {
	for _, ext := range []string{".pdf", "PNG", ".Jpeg", "jpg", ".bmp", ".tiff"} {
		assert.True(t, AllowedExt(ext), ext)
	}
	for _, ext := range []string{".docx", ".tif", "", ".gif"} {
		assert.False(t, AllowedExt(ext), ext)
	}
	assert.True(t, IsHidden("/a/.cache"))
	assert.False(t, IsHidden("/a/b.png"))
	assert.False(t, IsHidden("."))
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "abc")
	sum, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.png"), "x")
	writeFile(t, filepath.Join(root, "a.PDF"), "x")
	writeFile(t, filepath.Join(root, "notes.docx"), "x")
	writeFile(t, filepath.Join(root, "sub", "c.jpg"), "x")
	writeFile(t, filepath.Join(root, ".trash", "d.png"), "x")
	writeFile(t, filepath.Join(root, ".e.png"), "x")

	files, stats, err := Collect(root, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.PDF"),
		filepath.Join(root, "b.png"),
		filepath.Join(root, "sub", "c.jpg"),
	}, files)
	assert.Equal(t, uint32(3), stats.Matched)

	files, _, err = Collect(root, false)
	require.NoError(t, err)
	assert.Len(t, files, 5)

	single := filepath.Join(root, "notes.docx")
	files, _, err = Collect(single, true)
	require.NoError(t, err)
	assert.Equal(t, []string{single}, files)

	_, _, err = Collect(filepath.Join(root, "missing"), true)
	assert.Error(t, err)
	_, _, err = Collect("", true)
	assert.Error(t, err)
}

func TestStartWatcherEmitsAcceptedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "existing.png"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		SkipHidden:  true,
		Debounce:    50 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "existing.png"), receive(t, events))

	writeFile(t, filepath.Join(root, ".hidden.png"), "x")
	writeFile(t, filepath.Join(root, "skip.docx"), "x")
	writeFile(t, filepath.Join(root, "new.jpg"), "x")
	assert.Equal(t, filepath.Join(root, "new.jpg"), receive(t, events))

	cancel()
	for range events {
	}
}

func TestStartWatcherInitialScanEmitsEveryFile(t *testing.T) {
	root := t.TempDir()
	const n = 300
	for i := 0; i < n; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("scan-%03d.png", i)), "x")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
	}, nil)
	require.NoError(t, err)

	// slow consumer: the buffer fills before anything is read
	time.Sleep(100 * time.Millisecond)
	seen := make(map[string]struct{}, n)
	for len(seen) < n {
		seen[receive(t, events)] = struct{}{}
	}
	assert.Len(t, seen, n)

	cancel()
	for range events {
	}
}

func TestStartWatcherNoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return ""
	}
}
