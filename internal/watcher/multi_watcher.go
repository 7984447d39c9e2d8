package watcher

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"fswatcher/internal/filter"
	"fswatcher/internal/ignore"
)

// rootWatch is either a RecursiveWatcher or a bare DirectoryWatcher,
// depending on whether recursion is enabled for the manager.
type rootWatch interface {
	Start() error
	Stop() error
	IsWatching() bool
}

// MultiWatcher watches several independent roots through one shared
// emitter, metrics and configuration. It is a thin composition layer:
// one RecursiveWatcher (or DirectoryWatcher when recursion is off)
// per root, keyed by root path.
type MultiWatcher struct {
	config    Config
	opts      Options
	recursive bool
	emitter   *Emitter
	metrics   *Metrics

	mu      sync.RWMutex
	roots   map[string]rootWatch
	started bool
}

func NewMultiWatcher(config Config, opts Options, recursive bool) *MultiWatcher {
	config = config.withDefaults()
	metrics := NewMetrics()
	return &MultiWatcher{
		config:    config,
		opts:      opts,
		recursive: recursive,
		emitter:   newEmitter(config.BufferSize, metrics),
		metrics:   metrics,
		roots:     make(map[string]rootWatch),
	}
}

// Add registers a root. When the manager is already started the new
// root starts watching immediately.
func (m *MultiWatcher) Add(root string) error {
	var (
		w   rootWatch
		err error
	)
	if m.recursive {
		w, err = newRecursiveWatcher(root, m.config, m.opts, m.emitter, m.metrics)
	} else {
		w, err = newDirectoryWatcher(root, m.config, m.emitter, m.metrics)
	}
	if err != nil {
		return err
	}

	key := rootKey(w)

	m.mu.Lock()
	if _, exists := m.roots[key]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyWatching, key)
	}
	m.roots[key] = w
	started := m.started
	m.mu.Unlock()

	if started {
		return w.Start()
	}
	return nil
}

// Remove stops and unregisters a root. Removing an unknown root is a
// no-op.
func (m *MultiWatcher) Remove(root string) error {
	m.mu.Lock()
	w, exists := m.roots[root]
	if exists {
		delete(m.roots, root)
	}
	m.mu.Unlock()

	if !exists {
		return nil
	}
	return w.Stop()
}

// Start brings every registered root up concurrently. Idempotent; a
// failure on one root does not prevent the others from starting, the
// first error is returned.
func (m *MultiWatcher) Start() error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	watches := m.snapshotLocked()
	m.mu.Unlock()

	g := new(errgroup.Group)
	for _, w := range watches {
		g.Go(w.Start)
	}
	return g.Wait()
}

// Stop tears down every root. Idempotent.
func (m *MultiWatcher) Stop() error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = false
	watches := m.snapshotLocked()
	m.mu.Unlock()

	var firstErr error
	for _, w := range watches {
		if err := w.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiWatcher) snapshotLocked() []rootWatch {
	watches := make([]rootWatch, 0, len(m.roots))
	for _, w := range m.roots {
		watches = append(watches, w)
	}
	return watches
}

// IsWatching reports whether the given root is currently active.
func (m *MultiWatcher) IsWatching(root string) bool {
	m.mu.RLock()
	w, exists := m.roots[root]
	m.mu.RUnlock()
	return exists && w.IsWatching()
}

// Roots returns a sorted snapshot of the registered root paths.
func (m *MultiWatcher) Roots() []string {
	m.mu.RLock()
	roots := make([]string, 0, len(m.roots))
	for root := range m.roots {
		roots = append(roots, root)
	}
	m.mu.RUnlock()

	sort.Strings(roots)
	return roots
}

// WatchedDirectories aggregates the watched set across every root.
func (m *MultiWatcher) WatchedDirectories() []string {
	m.mu.RLock()
	watches := m.snapshotLocked()
	m.mu.RUnlock()

	var dirs []string
	for _, w := range watches {
		switch t := w.(type) {
		case *RecursiveWatcher:
			dirs = append(dirs, t.WatchedDirectories()...)
		case *DirectoryWatcher:
			if t.IsWatching() {
				dirs = append(dirs, t.Path())
			}
		}
	}
	sort.Strings(dirs)
	return dirs
}

// Ignores exposes the shared ignore registry.
func (m *MultiWatcher) Ignores() *ignore.Registry {
	return m.config.Ignores
}

// Filters exposes the shared filter chain.
func (m *MultiWatcher) Filters() *filter.Chain {
	return m.config.Filters
}

// AddListener registers push callbacks shared across all roots.
func (m *MultiWatcher) AddListener(cb Callbacks) string {
	return m.emitter.AddListener(cb)
}

// RemoveListener drops a callback listener by id.
func (m *MultiWatcher) RemoveListener(id string) {
	m.emitter.RemoveListener(id)
}

// Subscribe returns a notification channel fed by every root.
func (m *MultiWatcher) Subscribe() (<-chan Notification, func()) {
	return m.emitter.Subscribe()
}

// Stats returns the shared counters.
func (m *MultiWatcher) Stats() map[string]interface{} {
	return m.metrics.Stats()
}

func rootKey(w rootWatch) string {
	switch t := w.(type) {
	case *RecursiveWatcher:
		return t.Root()
	case *DirectoryWatcher:
		return t.Path()
	default:
		return ""
	}
}
