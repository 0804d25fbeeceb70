// Package debounce provides cancellable timers and a keyed debouncer.
package debounce

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled callback. It reports whether the callback was
// stopped before it ran.
type CancelFunc func() bool

// Scheduler runs fn once after delay unless the returned handle is cancelled.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) CancelFunc
}

// TimerScheduler schedules callbacks on runtime timers.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(delay time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(delay, fn)
	return t.Stop
}

type pending struct {
	gen    uint64
	cancel CancelFunc
	fn     func()
}

// Debouncer coalesces bursts of triggers per key into one call that runs
// delay after the last trigger.
type Debouncer struct {
	sched Scheduler
	delay time.Duration

	mu      sync.Mutex
	gen     uint64
	pending map[string]*pending
	stopped bool
}

func New(sched Scheduler, delay time.Duration) *Debouncer {
	if sched == nil {
		sched = TimerScheduler{}
	}
	return &Debouncer{sched: sched, delay: delay, pending: make(map[string]*pending)}
}

// Trigger cancels any pending call for key and schedules fn.
// Triggers after Stop are ignored.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if p, ok := d.pending[key]; ok {
		p.cancel()
	}
	d.gen++
	gen := d.gen
	p := &pending{gen: gen, fn: fn}
	p.cancel = d.sched.Schedule(d.delay, func() { d.fire(key, gen) })
	d.pending[key] = p
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.gen != gen {
		// Superseded by a later trigger whose cancel lost the race.
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()
	p.fn()
}

// Cancel drops the pending call for key without running it.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[key]
	if !ok {
		return false
	}
	delete(d.pending, key)
	p.cancel()
	return true
}

// Pending reports whether a call is scheduled for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Flush runs every pending call now, in no particular order.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.pending))
	for key, p := range d.pending {
		p.cancel()
		fns = append(fns, p.fn)
		delete(d.pending, key)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Stop flushes pending calls and rejects further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.Flush()
}
