// Package debounce coalesces bursts of calls into a single deferred action
// per key, fired once the key has been quiet for the configured delay.
package debounce

import (
	"sync"
	"time"
)

type entry struct {
	timer *time.Timer
	fn    func()
}

// Debouncer keeps at most one pending action per key. Each Trigger rescinds
// the pending action for that key and schedules the new one.
type Debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*entry
	wg      sync.WaitGroup
	stopped bool
}

// New creates a Debouncer firing after delay of quiet.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*entry),
	}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn for key, replacing anything still pending for it.
// It is a no-op after Stop.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if prev, ok := d.pending[key]; ok {
		if prev.timer.Stop() {
			d.wg.Done()
		}
	}

	e := &entry{fn: fn}
	d.wg.Add(1)
	e.timer = time.AfterFunc(d.delay, func() { d.fire(key, e) })
	d.pending[key] = e
}

func (d *Debouncer) fire(key string, e *entry) {
	defer d.wg.Done()

	d.mu.Lock()
	if d.pending[key] != e {
		// Rescheduled or cancelled while the timer was firing.
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	e.fn()
}

// Cancel drops the pending action for key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.pending[key]; ok {
		if e.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, key)
	}
}

// Flush runs every pending action now, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	var due []func()
	for key, e := range d.pending {
		if e.timer.Stop() {
			d.wg.Done()
			delete(d.pending, key)
			due = append(due, e.fn)
		}
	}
	d.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

// Pending returns the number of scheduled actions.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels pending actions and waits for in-flight ones to return.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, e := range d.pending {
		if e.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, key)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
