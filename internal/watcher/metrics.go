package watcher

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds atomic counters shared across every watch spawned
// from one manager.
type Metrics struct {
	eventsSeen      int64
	eventsCoalesced int64
	batchesEmitted  int64
	dropped         int64
	errors          int64
	watchesAdded    int64
	watchesRemoved  int64

	mu            sync.Mutex
	lastEventTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordEvent() {
	atomic.AddInt64(&m.eventsSeen, 1)
	m.mu.Lock()
	m.lastEventTime = time.Now()
	m.mu.Unlock()
}

func (m *Metrics) RecordCoalesced() {
	atomic.AddInt64(&m.eventsCoalesced, 1)
}

func (m *Metrics) RecordBatch() {
	atomic.AddInt64(&m.batchesEmitted, 1)
}

func (m *Metrics) RecordDropped() {
	atomic.AddInt64(&m.dropped, 1)
}

func (m *Metrics) RecordError() {
	atomic.AddInt64(&m.errors, 1)
}

func (m *Metrics) RecordWatchAdded() {
	atomic.AddInt64(&m.watchesAdded, 1)
}

func (m *Metrics) RecordWatchRemoved() {
	atomic.AddInt64(&m.watchesRemoved, 1)
}

func (m *Metrics) Stats() map[string]interface{} {
	m.mu.Lock()
	lastEvent := m.lastEventTime
	m.mu.Unlock()

	return map[string]interface{}{
		"events_seen":      atomic.LoadInt64(&m.eventsSeen),
		"events_coalesced": atomic.LoadInt64(&m.eventsCoalesced),
		"batches_emitted":  atomic.LoadInt64(&m.batchesEmitted),
		"dropped":          atomic.LoadInt64(&m.dropped),
		"errors":           atomic.LoadInt64(&m.errors),
		"watches_added":    atomic.LoadInt64(&m.watchesAdded),
		"watches_removed":  atomic.LoadInt64(&m.watchesRemoved),
		"last_event_time":  lastEvent,
	}
}
