package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := New(Config{Path: filepath.Join(t.TempDir(), "journal.db")})
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalAppendAndGet(t *testing.T) {
	j := setupJournal(t)

	entry := &Entry{
		Dir:   "/watched",
		Kind:  "filtered_change",
		Paths: []string{"/watched/a.txt"},
	}
	require.NoError(t, j.Append(entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())

	got, err := j.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Dir, got.Dir)
	assert.Equal(t, entry.Paths, got.Paths)
}

func TestJournalAppendNil(t *testing.T) {
	j := setupJournal(t)
	assert.ErrorIs(t, j.Append(nil), ErrNilEntry)
}

func TestJournalGetUnknown(t *testing.T) {
	j := setupJournal(t)
	_, err := j.Get("missing")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestJournalRecentOrder(t *testing.T) {
	j := setupJournal(t)

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(&Entry{
			Dir:       "/d",
			Kind:      "directory_changed",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	recent, err := j.Recent(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	// Newest first.
	assert.True(t, recent[0].Timestamp.After(recent[1].Timestamp))
	assert.True(t, recent[1].Timestamp.After(recent[2].Timestamp))
}

func TestJournalRange(t *testing.T) {
	j := setupJournal(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		require.NoError(t, j.Append(&Entry{
			Dir:       "/d",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := j.Range(base.Add(2*time.Minute), base.Add(5*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Oldest first within the range.
	assert.True(t, got[0].Timestamp.Before(got[1].Timestamp))
}

func TestJournalPrune(t *testing.T) {
	j := setupJournal(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 6; i++ {
		require.NoError(t, j.Append(&Entry{
			Dir:       "/d",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	removed, err := j.Prune(base.Add(3 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	remaining, err := j.Recent(100)
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
}

func TestJournalPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := New(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, j.Append(&Entry{Dir: "/d", Kind: "filtered_change"}))
	require.NoError(t, j.Close())

	j2, err := New(Config{Path: path})
	require.NoError(t, err)
	defer j2.Close()

	entries, err := j2.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
