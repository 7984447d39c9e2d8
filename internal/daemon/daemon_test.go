package daemon

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fswatcher/internal/config"
	"fswatcher/internal/journal"
	"fswatcher/internal/watcher"
)

func testDaemonConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	return &config.Config{
		Env: "local",
		Watch: config.WatchConfig{
			Roots:     []string{root},
			Debounce:  50 * time.Millisecond,
			Recursive: true,
			MaxDepth:  watcher.UnlimitedDepth,
		},
		HTTP:    config.HTTPConfig{Addr: "127.0.0.1:0"},
		Journal: config.JournalConfig{Path: filepath.Join(t.TempDir(), "j.db")},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRequiresRoots(t *testing.T) {
	cfg := testDaemonConfig(t, t.TempDir())
	cfg.Watch.Roots = nil

	_, err := New(cfg, discardLogger())
	assert.ErrorIs(t, err, watcher.ErrInvalidConfiguration)
}

func TestNewRejectsMissingRoot(t *testing.T) {
	cfg := testDaemonConfig(t, filepath.Join(t.TempDir(), "missing"))

	_, err := New(cfg, discardLogger())
	assert.ErrorIs(t, err, watcher.ErrDirectoryNotFound)
}

func TestDaemonRecordsChangesToJournal(t *testing.T) {
	root := t.TempDir()
	cfg := testDaemonConfig(t, root)

	d, err := New(cfg, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Give the engine time to come up, then generate a change.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0644))
	time.Sleep(300 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	// The journal outlives the daemon; reopen and check the record.
	j, err := journal.New(journal.Config{Path: cfg.Journal.Path})
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.Recent(10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var kinds []string
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, string(watcher.DirectoryChanged))
}

func TestDaemonDrainsBufferedNotificationsOnShutdown(t *testing.T) {
	root := t.TempDir()
	cfg := testDaemonConfig(t, root)

	d, err := New(cfg, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0644))

	// Cancel right after the debounce fires: the notification may
	// still be buffered in the subscription, and shutdown must write
	// it out before closing the journal.
	time.Sleep(2 * cfg.Watch.Debounce)
	cancel()
	require.NoError(t, <-done)

	j, err := journal.New(journal.Config{Path: cfg.Journal.Path})
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.Recent(10)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
