package watcher

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	defer d.Stop()

	var fired int64
	var firedAt atomic.Value

	// Five stimuli spaced well below the interval must collapse into
	// exactly one firing, interval after the last stimulus.
	var last time.Time
	for i := 0; i < 5; i++ {
		d.Debounce("key", func() {
			atomic.AddInt64(&fired, 1)
			firedAt.Store(time.Now())
		})
		last = time.Now()
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(250 * time.Millisecond)

	assert.Equal(t, int64(1), atomic.LoadInt64(&fired))
	// Trailing edge: the firing trails the last stimulus by at least
	// the interval (small tolerance for timer granularity).
	at := firedAt.Load().(time.Time)
	assert.GreaterOrEqual(t, at.Sub(last), 90*time.Millisecond)
}

func TestDebouncerSpacedStimuliFireEach(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var fired int64
	for i := 0; i < 3; i++ {
		d.Debounce("key", func() { atomic.AddInt64(&fired, 1) })
		time.Sleep(120 * time.Millisecond)
	}

	assert.Equal(t, int64(3), atomic.LoadInt64(&fired))
}

func TestDebouncerIndependentKeys(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var a, b int64
	d.Debounce("a", func() { atomic.AddInt64(&a, 1) })
	d.Debounce("b", func() { atomic.AddInt64(&b, 1) })

	assert.Equal(t, 2, d.Pending())
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int64(1), atomic.LoadInt64(&a))
	assert.Equal(t, int64(1), atomic.LoadInt64(&b))
	assert.Equal(t, 0, d.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var fired int64
	d.Debounce("key", func() { atomic.AddInt64(&fired, 1) })
	d.Cancel("key")

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int64(0), atomic.LoadInt64(&fired))
}

func TestDebouncerStopDiscardsPending(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var fired int64
	d.Debounce("key", func() { atomic.AddInt64(&fired, 1) })
	d.Stop()

	// Nothing fires after Stop returns, and later stimuli are inert.
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int64(0), atomic.LoadInt64(&fired))

	d.Debounce("key", func() { atomic.AddInt64(&fired, 1) })
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int64(0), atomic.LoadInt64(&fired))
}
