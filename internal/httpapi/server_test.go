package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fswatcher/internal/journal"
	"fswatcher/internal/watcher"
)

func setupServer(t *testing.T) (*Server, *watcher.MultiWatcher, string) {
	t.Helper()

	root := t.TempDir()
	engine := watcher.NewMultiWatcher(
		watcher.Config{DebounceDuration: 50 * time.Millisecond},
		watcher.Options{MaxDepth: watcher.UnlimitedDepth},
		true,
	)
	require.NoError(t, engine.Add(root))
	require.NoError(t, engine.Start())
	t.Cleanup(func() { engine.Stop() })

	j, err := journal.New(journal.Config{Path: filepath.Join(t.TempDir(), "j.db")})
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(":0", engine, j, log), engine, root
}

func doRequest(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleStatus(t *testing.T) {
	s, _, root := setupServer(t)

	rec := doRequest(t, s, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Roots    []string        `json:"roots"`
		Watching map[string]bool `json:"watching"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{root}, got.Roots)
	assert.True(t, got.Watching[root])
}

func TestHandleWatches(t *testing.T) {
	s, _, root := setupServer(t)

	rec := doRequest(t, s, http.MethodGet, "/watches", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Directories []string `json:"directories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got.Directories, root)
}

func TestHandleStats(t *testing.T) {
	s, _, _ := setupServer(t)

	rec := doRequest(t, s, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Contains(t, stats, "events_seen")
	assert.Contains(t, stats, "watches_added")
}

func TestHandleIgnores(t *testing.T) {
	s, engine, _ := setupServer(t)

	body, _ := json.Marshal(ignoresRequest{Kind: "pattern", Values: []string{"*.bak"}})
	rec := doRequest(t, s, http.MethodPost, "/ignores", body)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.True(t, engine.Ignores().ShouldIgnore("x.bak"))

	rec = doRequest(t, s, http.MethodGet, "/ignores", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Patterns []string `json:"patterns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got.Patterns, "*.bak")

	rec = doRequest(t, s, http.MethodDelete, "/ignores?kind=pattern", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, engine.Ignores().ShouldIgnore("x.bak"))
}

func TestHandleIgnoresBadRequest(t *testing.T) {
	s, _, _ := setupServer(t)

	rec := doRequest(t, s, http.MethodPost, "/ignores", []byte("not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, _ := json.Marshal(ignoresRequest{Kind: "bogus", Values: []string{"x"}})
	rec = doRequest(t, s, http.MethodPost, "/ignores", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleJournal(t *testing.T) {
	s, _, _ := setupServer(t)

	require.NoError(t, s.journal.Append(&journal.Entry{
		Dir:   "/d",
		Kind:  "filtered_change",
		Paths: []string{"/d/a.txt"},
	}))

	rec := doRequest(t, s, http.MethodGet, "/journal?n=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Entries []journal.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "/d", got.Entries[0].Dir)

	rec = doRequest(t, s, http.MethodGet, "/journal?n=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
