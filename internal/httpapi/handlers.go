package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"fswatcher/internal/util/logger/sl"
	utiljson "fswatcher/internal/util/utilJson"
)

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(utiljson.ToJson(v))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	roots := s.engine.Roots()
	watching := make(map[string]bool, len(roots))
	for _, root := range roots {
		watching[root] = s.engine.IsWatching(root)
	}

	s.writeJSON(w, map[string]interface{}{
		"roots":    roots,
		"watching": watching,
	})
}

func (s *Server) handleWatches(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"directories": s.engine.WatchedDirectories(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.Stats())
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	n := 50
	if q := r.URL.Query().Get("n"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	if from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to"); from != "" && to != "" {
		fromT, err1 := time.Parse(time.RFC3339, from)
		toT, err2 := time.Parse(time.RFC3339, to)
		if err1 != nil || err2 != nil {
			http.Error(w, "invalid time range", http.StatusBadRequest)
			return
		}
		entries, err := s.journal.Range(fromT, toT)
		if err != nil {
			s.log.Error("journal range", sl.Err(err))
			http.Error(w, "journal unavailable", http.StatusInternalServerError)
			return
		}
		s.writeJSON(w, map[string]interface{}{"entries": entries})
		return
	}

	entries, err := s.journal.Recent(n)
	if err != nil {
		s.log.Error("journal read", sl.Err(err))
		http.Error(w, "journal unavailable", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, map[string]interface{}{"entries": entries})
}

type ignoresRequest struct {
	Kind   string   `json:"kind"`
	Values []string `json:"values"`
}

func (s *Server) handleIgnoresList(w http.ResponseWriter, r *http.Request) {
	registry := s.engine.Ignores()
	s.writeJSON(w, map[string]interface{}{
		"explicit":   registry.Explicit(),
		"predictive": registry.Predictive(),
		"patterns":   registry.Patterns(),
	})
}

func (s *Server) handleIgnoresAdd(w http.ResponseWriter, r *http.Request) {
	var req ignoresRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	registry := s.engine.Ignores()
	switch req.Kind {
	case "explicit":
		registry.AddExplicit(req.Values...)
	case "predictive":
		registry.AddPredictive(req.Values...)
	case "pattern":
		registry.AddPattern(req.Values...)
	default:
		http.Error(w, "unknown ignore kind", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIgnoresClear(w http.ResponseWriter, r *http.Request) {
	registry := s.engine.Ignores()
	switch r.URL.Query().Get("kind") {
	case "explicit":
		registry.ClearExplicit()
	case "predictive":
		registry.ClearPredictive()
	case "pattern":
		registry.ClearPatterns()
	case "", "all":
		registry.ClearAll()
	default:
		http.Error(w, "unknown ignore kind", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
