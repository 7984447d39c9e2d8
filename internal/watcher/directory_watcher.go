package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DirectoryWatcher owns one fsnotify binding for exactly one
// directory. Raw events feed a trailing-edge debouncer; the coalesced
// action lists the directory, applies the ignore registry and the
// filter chain, registers predicted outputs, and emits.
type DirectoryWatcher struct {
	path    string
	config  Config
	log     *slog.Logger
	emitter *Emitter
	metrics *Metrics

	mu        sync.Mutex
	watching  bool
	fsw       *fsnotify.Watcher
	stopChan  chan struct{}
	debouncer *Debouncer
	wg        sync.WaitGroup

	pendingMu sync.Mutex
	pending   []ChangeEvent
}

// NewDirectoryWatcher builds a watch for path with its own emitter
// and metrics. Construction fails fast when the path does not exist
// or is not a directory.
func NewDirectoryWatcher(path string, config Config) (*DirectoryWatcher, error) {
	config = config.withDefaults()
	metrics := NewMetrics()
	return newDirectoryWatcher(path, config, newEmitter(config.BufferSize, metrics), metrics)
}

// newDirectoryWatcher is the shared constructor: the recursive tree
// and the multi-root manager pass in their shared emitter and metrics
// so every node reports through one fan-out point.
func newDirectoryWatcher(path string, config Config, emitter *Emitter, metrics *Metrics) (*DirectoryWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	if err := verifyDirectory(abs); err != nil {
		return nil, err
	}

	return &DirectoryWatcher{
		path:    abs,
		config:  config,
		log:     config.Logger,
		emitter: emitter,
		metrics: metrics,
	}, nil
}

func verifyDirectory(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %s", ErrDirectoryNotFound, path)
	case os.IsPermission(err):
		return fmt.Errorf("%w: %s", ErrInsufficientPermissions, path)
	case err != nil:
		return fmt.Errorf("%w: %s: %v", ErrCannotOpenDirectory, path, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidConfiguration, path)
	}
	return nil
}

// classifyBindError maps an fsnotify bind failure onto the watcher
// error taxonomy.
func classifyBindError(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %s", ErrInsufficientPermissions, path)
	case errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENFILE), errors.Is(err, syscall.ENOSPC):
		return fmt.Errorf("%w: %s: %v", ErrSystemResources, path, err)
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrDirectoryNotFound, path)
	default:
		return fmt.Errorf("%w: %s: %v", ErrCannotOpenDirectory, path, err)
	}
}

// Start binds the OS notification source and launches the event
// loop. It is a no-op when already watching.
func (w *DirectoryWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watching {
		return nil
	}

	// The directory may have vanished between construction and Start.
	if err := verifyDirectory(w.path); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return classifyBindError(w.path, err)
	}
	if err := fsw.Add(w.path); err != nil {
		fsw.Close()
		return classifyBindError(w.path, err)
	}

	w.fsw = fsw
	w.stopChan = make(chan struct{})
	w.debouncer = NewDebouncer(w.config.DebounceDuration)
	w.watching = true

	w.wg.Add(1)
	go w.run(fsw, w.stopChan)

	w.log.Debug("watch started", slog.String("dir", w.path))
	return nil
}

func (w *DirectoryWatcher) run(fsw *fsnotify.Watcher, stop chan struct{}) {
	defer w.wg.Done()

	for {
		select {
		case <-stop:
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Op&w.config.EventMask == 0 {
				continue
			}
			w.metrics.RecordEvent()
			w.recordPending(event)
			w.debouncer.Debounce(w.path, w.handleChange)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.metrics.RecordError()
			w.log.Error("watch error", slog.String("dir", w.path), slog.Any("error", err))
			w.emitter.emitError(err)
		}
	}
}

func (w *DirectoryWatcher) recordPending(event fsnotify.Event) {
	w.pendingMu.Lock()
	w.pending = append(w.pending, ChangeEvent{
		Path:      event.Name,
		Kind:      kindOf(event.Op),
		Timestamp: time.Now(),
	})
	w.pendingMu.Unlock()
}

func (w *DirectoryWatcher) takePending() []ChangeEvent {
	w.pendingMu.Lock()
	events := w.pending
	w.pending = nil
	w.pendingMu.Unlock()
	return events
}

// handleChange is the debounced action. It runs on the timer
// goroutine, one invocation at a time per directory.
func (w *DirectoryWatcher) handleChange() {
	w.metrics.RecordCoalesced()
	events := w.takePending()

	entries := listDirectory(w.path, !w.config.IncludeHidden)

	survivors := make([]string, 0, len(entries))
	for _, entry := range entries {
		if w.config.Ignores.ShouldIgnore(entry) {
			continue
		}
		if !w.config.Filters.Matches(entry) {
			continue
		}
		survivors = append(survivors, entry)
	}

	// Predicted outputs must land in the predictive set before the
	// filtered emission hands control to consumers, so a consumer
	// that synchronously writes its output cannot re-trigger itself.
	if w.config.Predictor != nil {
		for _, path := range survivors {
			if predicted := w.config.Predictor.Predict(path); len(predicted) > 0 {
				w.config.Ignores.AddPredictive(predicted...)
			}
		}
	}

	// The raw directory-changed emission always fires; the recursive
	// tree keys its rescans on it.
	w.emitter.emitDirectoryChange(w.path, events)

	if len(survivors) > 0 {
		w.metrics.RecordBatch()
		w.emitter.emitFilteredChange(w.path, survivors)
	}
}

// listDirectory returns the full paths of the directory's immediate
// entries. Listing failures degrade to an empty result: a concurrent
// deletion is expected, not fatal.
func listDirectory(dir string, skipHidden bool) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if skipHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths
}

// Stop cancels the binding and any pending debounce action. It is
// idempotent; the descriptor is released exactly once. No debounced
// action fires after Stop returns.
func (w *DirectoryWatcher) Stop() error {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = false
	close(w.stopChan)
	err := w.fsw.Close()
	w.fsw = nil
	debouncer := w.debouncer
	w.mu.Unlock()

	w.wg.Wait()
	debouncer.Stop()

	w.log.Debug("watch stopped", slog.String("dir", w.path))
	return err
}

// Path returns the watched directory.
func (w *DirectoryWatcher) Path() string {
	return w.path
}

// IsWatching reports whether the binding is currently active.
func (w *DirectoryWatcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watching
}

// AddListener registers push callbacks; see Emitter.
func (w *DirectoryWatcher) AddListener(cb Callbacks) string {
	return w.emitter.AddListener(cb)
}

// RemoveListener drops a callback listener by id.
func (w *DirectoryWatcher) RemoveListener(id string) {
	w.emitter.RemoveListener(id)
}

// Subscribe returns a pull-based notification channel; see Emitter.
func (w *DirectoryWatcher) Subscribe() (<-chan Notification, func()) {
	return w.emitter.Subscribe()
}

// Stats returns a snapshot of the watch counters.
func (w *DirectoryWatcher) Stats() map[string]interface{} {
	return w.metrics.Stats()
}
