package watcher

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Emitter is the single fan-out point for consumer-facing emissions.
// Each delivery mechanism — push callbacks and subscriber channels —
// is just a registered sink keyed by listener id, so the same emit
// feeds all of them. Emission order is preserved per watch within
// each mechanism; order across mechanisms is unspecified.
type Emitter struct {
	mu         sync.RWMutex
	callbacks  map[string]Callbacks
	subs       map[string]chan Notification
	bufferSize int
	metrics    *Metrics
}

func newEmitter(bufferSize int, metrics *Metrics) *Emitter {
	return &Emitter{
		callbacks:  make(map[string]Callbacks),
		subs:       make(map[string]chan Notification),
		bufferSize: bufferSize,
		metrics:    metrics,
	}
}

// AddListener registers push callbacks and returns the listener id.
func (e *Emitter) AddListener(cb Callbacks) string {
	id := uuid.NewString()
	e.mu.Lock()
	e.callbacks[id] = cb
	e.mu.Unlock()
	return id
}

// RemoveListener drops the callbacks registered under id.
func (e *Emitter) RemoveListener(id string) {
	e.mu.Lock()
	delete(e.callbacks, id)
	e.mu.Unlock()
}

// Subscribe returns a channel of notifications and a cancel func that
// unregisters and closes it. Sends are non-blocking: a subscriber
// that falls behind loses notifications (counted in metrics) rather
// than stalling the watch pipeline.
func (e *Emitter) Subscribe() (<-chan Notification, func()) {
	id := uuid.NewString()
	ch := make(chan Notification, e.bufferSize)

	e.mu.Lock()
	e.subs[id] = ch
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		if existing, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(existing)
		}
		e.mu.Unlock()
	}
	return ch, cancel
}

func (e *Emitter) emit(n Notification) {
	n.Timestamp = time.Now()

	e.mu.RLock()
	cbs := make([]Callbacks, 0, len(e.callbacks))
	for _, cb := range e.callbacks {
		cbs = append(cbs, cb)
	}
	e.mu.RUnlock()

	for _, cb := range cbs {
		switch n.Kind {
		case DirectoryChanged:
			if cb.OnDirectoryChange != nil {
				cb.OnDirectoryChange(n.Dir)
			}
		case FilteredChange:
			if cb.OnFilteredChange != nil {
				cb.OnFilteredChange(n.Paths)
			}
		case WatchError:
			if cb.OnError != nil {
				cb.OnError(n.err)
			}
		}
	}

	// Channel sends happen under the read lock: cancel closes a
	// channel only under the write lock, so a close can never land
	// between the lookup and the send. Sends stay non-blocking, so
	// the lock is held only briefly.
	e.mu.RLock()
	for _, ch := range e.subs {
		select {
		case ch <- n:
		default:
			e.metrics.RecordDropped()
		}
	}
	e.mu.RUnlock()
}

func (e *Emitter) emitDirectoryChange(dir string, events []ChangeEvent) {
	e.emit(Notification{Kind: DirectoryChanged, Dir: dir, Events: events})
}

func (e *Emitter) emitFilteredChange(dir string, paths []string) {
	e.emit(Notification{Kind: FilteredChange, Dir: dir, Paths: paths})
}

func (e *Emitter) emitError(err error) {
	e.emit(Notification{Kind: WatchError, Error: err.Error(), err: err})
}
