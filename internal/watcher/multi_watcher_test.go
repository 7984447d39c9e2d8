package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiWatcherTwoRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()

	m := NewMultiWatcher(testConfig(), unlimited(), true)
	require.NoError(t, m.Add(rootA))
	require.NoError(t, m.Add(rootB))

	require.NoError(t, m.Start())
	defer m.Stop()

	assert.True(t, m.IsWatching(rootA))
	assert.True(t, m.IsWatching(rootB))
	assert.ElementsMatch(t, []string{rootA, rootB}, m.Roots())

	// Both roots report through the one shared emitter.
	rec := &notificationRecorder{}
	m.AddListener(rec.callbacks())

	require.NoError(t, os.WriteFile(filepath.Join(rootA, "a.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(rootB, "b.txt"), []byte("x"), 0644))
	settle()

	assert.ElementsMatch(t, []string{rootA, rootB}, rec.dirChanges())
}

func TestMultiWatcherDuplicateRoot(t *testing.T) {
	root := t.TempDir()

	m := NewMultiWatcher(testConfig(), unlimited(), true)
	require.NoError(t, m.Add(root))

	err := m.Add(root)
	assert.ErrorIs(t, err, ErrAlreadyWatching)
}

func TestMultiWatcherAddAfterStart(t *testing.T) {
	m := NewMultiWatcher(testConfig(), unlimited(), true)
	require.NoError(t, m.Start())
	defer m.Stop()

	root := t.TempDir()
	require.NoError(t, m.Add(root))
	assert.True(t, m.IsWatching(root))
}

func TestMultiWatcherRemove(t *testing.T) {
	root := t.TempDir()

	m := NewMultiWatcher(testConfig(), unlimited(), true)
	require.NoError(t, m.Add(root))
	require.NoError(t, m.Start())
	defer m.Stop()

	require.NoError(t, m.Remove(root))
	assert.False(t, m.IsWatching(root))
	assert.Empty(t, m.Roots())

	require.NoError(t, m.Remove(root))
}

func TestMultiWatcherNonRecursive(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	m := NewMultiWatcher(testConfig(), Options{}, false)
	require.NoError(t, m.Add(root))
	require.NoError(t, m.Start())
	defer m.Stop()

	watched := m.WatchedDirectories()
	assert.Equal(t, []string{root}, watched)
}

func TestMultiWatcherSharedIgnores(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()

	m := NewMultiWatcher(testConfig(), unlimited(), true)
	require.NoError(t, m.Add(rootA))
	require.NoError(t, m.Add(rootB))
	require.NoError(t, m.Start())
	defer m.Stop()

	m.Ignores().AddPattern("*.bak")

	rec := &notificationRecorder{}
	m.AddListener(rec.callbacks())

	require.NoError(t, os.WriteFile(filepath.Join(rootA, "x.bak"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(rootB, "y.bak"), []byte("x"), 0644))
	settle()

	assert.Empty(t, rec.filteredBatches())
}
