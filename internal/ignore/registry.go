package ignore

import (
	"os"
	"path/filepath"
	"sync"

	"fswatcher/internal/glob"
)

// Registry tracks paths that must be suppressed from change reports.
// It holds three independent sets: explicit ignores, predictive
// ignores (expected future outputs that may not exist yet), and glob
// patterns matched against a path's base name. All operations are
// safe for concurrent use from multiple watch callbacks.
type Registry struct {
	mu         sync.RWMutex
	explicit   map[string]struct{}
	predictive map[string]struct{}
	patterns   []string
}

func NewRegistry() *Registry {
	return &Registry{
		explicit:   make(map[string]struct{}),
		predictive: make(map[string]struct{}),
	}
}

// AddExplicit registers paths to ignore unconditionally.
func (r *Registry) AddExplicit(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, path := range paths {
		r.explicit[path] = struct{}{}
	}
}

// RemoveExplicit drops paths from the explicit set.
func (r *Registry) RemoveExplicit(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, path := range paths {
		delete(r.explicit, path)
	}
}

// AddPredictive registers expected output paths. The targets may not
// exist yet; they are suppressed as soon as they appear.
func (r *Registry) AddPredictive(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, path := range paths {
		r.predictive[path] = struct{}{}
	}
}

// RemovePredictive drops paths from the predictive set.
func (r *Registry) RemovePredictive(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, path := range paths {
		delete(r.predictive, path)
	}
}

// AddPattern registers glob patterns matched against base names.
func (r *Registry) AddPattern(patterns ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, patterns...)
}

// RemovePattern drops patterns previously added with AddPattern.
func (r *Registry) RemovePattern(patterns ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pattern := range patterns {
		for i, existing := range r.patterns {
			if existing == pattern {
				r.patterns = append(r.patterns[:i], r.patterns[i+1:]...)
				break
			}
		}
	}
}

// ShouldIgnore reports whether path is in the explicit or predictive
// set, or its base name matches any registered pattern. The three
// checks observe one consistent snapshot.
func (r *Registry) ShouldIgnore(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.explicit[path]; ok {
		return true
	}
	if _, ok := r.predictive[path]; ok {
		return true
	}
	return glob.MatchesAny(filepath.Base(path), r.patterns)
}

// Cleanup drops explicit ignores whose target no longer exists on
// disk. Predictive ignores are left untouched: a predicted output
// may legitimately not exist yet.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for path := range r.explicit {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			delete(r.explicit, path)
		}
	}
}

func (r *Registry) ClearExplicit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.explicit = make(map[string]struct{})
}

func (r *Registry) ClearPredictive() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictive = make(map[string]struct{})
}

func (r *Registry) ClearPatterns() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = nil
}

func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.explicit = make(map[string]struct{})
	r.predictive = make(map[string]struct{})
	r.patterns = nil
}

// Explicit returns a snapshot of the explicit set.
func (r *Registry) Explicit() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return keysOf(r.explicit)
}

// Predictive returns a snapshot of the predictive set.
func (r *Registry) Predictive() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return keysOf(r.predictive)
}

// Patterns returns a snapshot of the registered patterns.
func (r *Registry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.patterns))
	copy(out, r.patterns)
	return out
}

func keysOf(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
