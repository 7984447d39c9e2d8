package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"fswatcher/internal/glob"
)

// RecursiveWatcher mirrors a directory hierarchy with one
// DirectoryWatcher per directory. The tree grows incrementally: every
// node's directory-changed signal triggers a rescan of that directory
// only, inserting newly created subdirectories and pruning entries
// whose target vanished.
type RecursiveWatcher struct {
	root    string
	config  Config
	opts    Options
	log     *slog.Logger
	emitter *Emitter
	metrics *Metrics

	mu         sync.RWMutex
	watches    map[string]*DirectoryWatcher
	active     bool
	listenerID string
}

// NewRecursiveWatcher builds a tree rooted at root with its own
// emitter and metrics. Construction fails fast when root does not
// exist or is not a directory.
func NewRecursiveWatcher(root string, config Config, opts Options) (*RecursiveWatcher, error) {
	config = config.withDefaults()
	metrics := NewMetrics()
	return newRecursiveWatcher(root, config, opts, newEmitter(config.BufferSize, metrics), metrics)
}

func newRecursiveWatcher(root string, config Config, opts Options, emitter *Emitter, metrics *Metrics) (*RecursiveWatcher, error) {
	opts = opts.withDefaults()
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := verifyDirectory(abs); err != nil {
		return nil, err
	}

	return &RecursiveWatcher{
		root:    abs,
		config:  config,
		opts:    opts,
		log:     config.Logger,
		emitter: emitter,
		metrics: metrics,
		watches: make(map[string]*DirectoryWatcher),
	}, nil
}

// Start performs the initial depth-first scan. Failing to watch the
// root is fatal; failures on subdirectories are reported through the
// error sink and do not abort siblings.
func (rw *RecursiveWatcher) Start() error {
	rw.mu.Lock()
	if rw.active {
		rw.mu.Unlock()
		return nil
	}
	rw.active = true
	// The tree listens to its own raw emissions to grow on demand.
	rw.listenerID = rw.emitter.AddListener(Callbacks{
		OnDirectoryChange: rw.rescan,
	})
	rw.mu.Unlock()

	if err := rw.addDirectory(rw.root, true); err != nil {
		rw.Stop()
		return err
	}
	return nil
}

// addDirectory inserts a watch for path if policy allows, then
// recurses into its subdirectories. Non-root failures are reported
// asynchronously and swallowed.
func (rw *RecursiveWatcher) addDirectory(path string, isRoot bool) error {
	depth := rw.depthOf(path)
	if rw.opts.MaxDepth >= 0 && depth > rw.opts.MaxDepth {
		return nil
	}
	if !isRoot {
		if glob.MatchesAny(filepath.Base(path), rw.opts.ExcludePatterns) {
			return nil
		}
		info, err := os.Lstat(path)
		if err != nil {
			// Vanished mid-scan; nothing to do.
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 && !rw.opts.FollowSymlinks {
			return nil
		}
	}

	rw.mu.RLock()
	_, exists := rw.watches[path]
	active := rw.active
	rw.mu.RUnlock()
	if exists || !active {
		return nil
	}

	dw, err := newDirectoryWatcher(path, rw.config, rw.emitter, rw.metrics)
	if err == nil {
		err = dw.Start()
	}
	if err != nil {
		if isRoot {
			return err
		}
		rw.log.Warn("cannot watch subdirectory", slog.String("dir", path), slog.Any("error", err))
		rw.metrics.RecordError()
		rw.emitter.emitError(err)
		return nil
	}

	rw.mu.Lock()
	// Re-check under the write lock: Stop may have cleared the tree
	// while we were binding, and a stopped tree must not be
	// resurrected by an in-flight scan.
	if !rw.active {
		rw.mu.Unlock()
		dw.Stop()
		return nil
	}
	if _, exists := rw.watches[path]; exists {
		rw.mu.Unlock()
		dw.Stop()
		return nil
	}
	rw.watches[path] = dw
	rw.mu.Unlock()

	rw.metrics.RecordWatchAdded()
	rw.log.Debug("directory added to tree", slog.String("dir", path), slog.Int("depth", depth))

	for _, sub := range rw.subdirectories(path) {
		if err := rw.addDirectory(sub, false); err != nil {
			rw.emitter.emitError(err)
		}
	}
	return nil
}

// rescan reacts to a directory-changed emission: it prunes tree
// entries under dir whose target no longer exists and inserts newly
// created subdirectories of dir.
func (rw *RecursiveWatcher) rescan(dir string) {
	rw.mu.RLock()
	active := rw.active
	rw.mu.RUnlock()
	if !active {
		return
	}

	rw.prune(dir)

	for _, sub := range rw.subdirectories(dir) {
		if err := rw.addDirectory(sub, false); err != nil {
			rw.emitter.emitError(err)
		}
	}
}

// prune removes watches below dir whose directory vanished.
func (rw *RecursiveWatcher) prune(dir string) {
	prefix := dir + string(filepath.Separator)

	rw.mu.Lock()
	var stale []*DirectoryWatcher
	for path, dw := range rw.watches {
		if path == rw.root || !strings.HasPrefix(path, prefix) {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			stale = append(stale, dw)
			delete(rw.watches, path)
		}
	}
	rw.mu.Unlock()

	for _, dw := range stale {
		dw.Stop()
		rw.metrics.RecordWatchRemoved()
		rw.log.Debug("directory pruned from tree", slog.String("dir", dw.Path()))
	}
}

// depthOf recomputes a directory's depth as the path-component
// difference from the root. Depth is never stored per node, so it
// stays correct however the tree was grown.
func (rw *RecursiveWatcher) depthOf(path string) int {
	rel, err := filepath.Rel(rw.root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func (rw *RecursiveWatcher) subdirectories(dir string) []string {
	var subs []string
	for _, entry := range listDirectory(dir, !rw.config.IncludeHidden) {
		info, err := os.Stat(entry)
		if err == nil && info.IsDir() {
			subs = append(subs, entry)
		}
	}
	return subs
}

// Stop stops every owned watch and clears the map atomically relative
// to readers. Idempotent.
func (rw *RecursiveWatcher) Stop() error {
	rw.mu.Lock()
	if !rw.active {
		rw.mu.Unlock()
		return nil
	}
	rw.active = false
	listenerID := rw.listenerID
	rw.listenerID = ""
	watches := rw.watches
	rw.watches = make(map[string]*DirectoryWatcher)
	rw.mu.Unlock()

	rw.emitter.RemoveListener(listenerID)

	var firstErr error
	for _, dw := range watches {
		if err := dw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		rw.metrics.RecordWatchRemoved()
	}
	return firstErr
}

// Root returns the tree root.
func (rw *RecursiveWatcher) Root() string {
	return rw.root
}

// IsWatching reports whether the tree is active.
func (rw *RecursiveWatcher) IsWatching() bool {
	rw.mu.RLock()
	defer rw.mu.RUnlock()
	return rw.active
}

// WatchedDirectories returns a sorted snapshot of the watched paths.
// The snapshot is copied out under the lock; map internals never
// escape it.
func (rw *RecursiveWatcher) WatchedDirectories() []string {
	rw.mu.RLock()
	dirs := make([]string, 0, len(rw.watches))
	for path := range rw.watches {
		dirs = append(dirs, path)
	}
	rw.mu.RUnlock()

	sort.Strings(dirs)
	return dirs
}

// AddListener registers push callbacks shared by every node.
func (rw *RecursiveWatcher) AddListener(cb Callbacks) string {
	return rw.emitter.AddListener(cb)
}

// RemoveListener drops a callback listener by id.
func (rw *RecursiveWatcher) RemoveListener(id string) {
	rw.emitter.RemoveListener(id)
}

// Subscribe returns a pull-based notification channel fed by every
// node in the tree.
func (rw *RecursiveWatcher) Subscribe() (<-chan Notification, func()) {
	return rw.emitter.Subscribe()
}

// Stats returns a snapshot of the tree-wide counters.
func (rw *RecursiveWatcher) Stats() map[string]interface{} {
	return rw.metrics.Stats()
}
