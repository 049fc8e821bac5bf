package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/natefinch/atomic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/schematic/internal/watcher"
)

func startWatcher(t *testing.T, path string) <-chan struct{} {
	t.Helper()
	w, err := watcher.New(path, 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err)
	return onChange
}

func expectSignal(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal(msg)
	}
}

func expectQuiet(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal(msg)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: a"), 0o644))
	onChange := startWatcher(t, path)

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("title: %d", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	expectSignal(t, onChange, "expected notification but got timeout")
	expectQuiet(t, onChange, "unexpected second notification")
}

func TestWatcher_SeesAtomicReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: a"), 0o644))
	onChange := startWatcher(t, path)

	require.NoError(t, atomic.WriteFile(path, strings.NewReader("title: b")))
	expectSignal(t, onChange, "expected notification for atomic replace")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amp.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("initial"), 0o644))
	onChange := startWatcher(t, path)

	require.NoError(t, os.WriteFile(other, []byte("changed"), 0o644))
	expectQuiet(t, onChange, "should not notify for unrelated files")
}

func TestWatcher_WatchesSQLiteJournal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amp.schdb")
	require.NoError(t, os.WriteFile(path, []byte("db"), 0o644))
	onChange := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path+"-wal", []byte("wal data"), 0o644))
	expectSignal(t, onChange, "expected notification for WAL file write")
}

func TestWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	w, err := watcher.New(path, 0)
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := watcher.New(filepath.Join(t.TempDir(), "missing", "amp.yaml"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	_, err = w.Start()
	require.Error(t, err)
}
