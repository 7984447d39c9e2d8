package ignore

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryExplicit(t *testing.T) {
	r := NewRegistry()

	r.AddExplicit("/data/out.bin")
	assert.True(t, r.ShouldIgnore("/data/out.bin"))
	assert.False(t, r.ShouldIgnore("/data/other.bin"))

	r.RemoveExplicit("/data/out.bin")
	assert.False(t, r.ShouldIgnore("/data/out.bin"))
}

func TestRegistryPredictive(t *testing.T) {
	r := NewRegistry()

	r.AddPredictive("/data/photo_compressed.jpg")
	assert.True(t, r.ShouldIgnore("/data/photo_compressed.jpg"))

	r.RemovePredictive("/data/photo_compressed.jpg")
	assert.False(t, r.ShouldIgnore("/data/photo_compressed.jpg"))
}

func TestRegistryPatterns(t *testing.T) {
	r := NewRegistry()

	r.AddPattern("*.tmp")
	assert.True(t, r.ShouldIgnore("a.tmp"))
	assert.True(t, r.ShouldIgnore("/deep/dir/b.tmp"))
	assert.False(t, r.ShouldIgnore("a.txt"))

	r.RemovePattern("*.tmp")
	assert.False(t, r.ShouldIgnore("a.tmp"))
}

func TestRegistryCleanup(t *testing.T) {
	tempDir := t.TempDir()

	existing := filepath.Join(tempDir, "present.txt")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0644))
	gone := filepath.Join(tempDir, "gone.txt")

	r := NewRegistry()
	r.AddExplicit(existing, gone)
	// Predicted outputs do not exist yet; Cleanup must keep them.
	r.AddPredictive(filepath.Join(tempDir, "future.out"))

	r.Cleanup()

	assert.True(t, r.ShouldIgnore(existing))
	assert.False(t, r.ShouldIgnore(gone))
	assert.True(t, r.ShouldIgnore(filepath.Join(tempDir, "future.out")))
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	r.AddExplicit("/a")
	r.AddPredictive("/b")
	r.AddPattern("*.tmp")

	r.ClearExplicit()
	assert.False(t, r.ShouldIgnore("/a"))
	assert.True(t, r.ShouldIgnore("/b"))

	r.ClearAll()
	assert.False(t, r.ShouldIgnore("/b"))
	assert.False(t, r.ShouldIgnore("x.tmp"))
	assert.Empty(t, r.Patterns())
}

func TestRegistrySnapshots(t *testing.T) {
	r := NewRegistry()
	r.AddExplicit("/a", "/b")
	r.AddPredictive("/c")
	r.AddPattern("*.tmp", "*~")

	assert.ElementsMatch(t, []string{"/a", "/b"}, r.Explicit())
	assert.ElementsMatch(t, []string{"/c"}, r.Predictive())
	assert.Equal(t, []string{"*.tmp", "*~"}, r.Patterns())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.AddPredictive("/p")
				r.RemovePredictive("/p")
				r.AddPattern("*.tmp")
				r.RemovePattern("*.tmp")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.ShouldIgnore("/p")
				r.ShouldIgnore("x.tmp")
			}
		}()
	}
	wg.Wait()
}
