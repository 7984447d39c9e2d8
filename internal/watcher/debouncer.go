package watcher

import (
	"sync"
	"time"
)

type debounceEntry struct {
	gen   uint64
	timer *time.Timer
}

// Debouncer coalesces bursts of stimuli into one trailing-edge firing
// per key: the bound func runs once, interval after the last stimulus.
// Stale reschedules are made inert through a per-key generation
// counter — only the generation that armed the timer may fire.
//
// The action runs on the timer's goroutine, never the caller's.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	entries  map[string]*debounceEntry
	stopped  bool
	inflight sync.WaitGroup
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		entries:  make(map[string]*debounceEntry),
	}
}

// Debounce schedules fn to run interval from now under the given key,
// replacing any firing still pending for that key.
func (d *Debouncer) Debounce(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	entry, exists := d.entries[key]
	if exists {
		entry.timer.Stop()
		entry.gen++
	} else {
		entry = &debounceEntry{}
		d.entries[key] = entry
	}

	gen := entry.gen
	entry.timer = time.AfterFunc(d.interval, func() {
		d.fire(key, gen, fn)
	})
}

func (d *Debouncer) fire(key string, gen uint64, fn func()) {
	d.mu.Lock()
	entry, exists := d.entries[key]
	if !exists || d.stopped || entry.gen != gen {
		// A newer stimulus or Stop won the race; this firing is stale.
		d.mu.Unlock()
		return
	}
	delete(d.entries, key)
	d.inflight.Add(1)
	d.mu.Unlock()

	defer d.inflight.Done()
	fn()
}

// Cancel discards the pending firing for key, if any, without running it.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if entry, exists := d.entries[key]; exists {
		entry.timer.Stop()
		delete(d.entries, key)
	}
}

// Pending returns the number of keys with a scheduled firing.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Stop discards every pending firing and waits for actions already
// running to complete. After Stop returns no action fires. Stop must
// not be called from inside a debounced action.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, entry := range d.entries {
		entry.timer.Stop()
		delete(d.entries, key)
	}
	d.mu.Unlock()

	d.inflight.Wait()
}
