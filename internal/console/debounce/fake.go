package debounce

import (
	"sort"
	"sync"
	"time"
)

// FakeScheduler is a manually advanced Scheduler for tests.
type FakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	timers map[int]*fakeTimer
}

type fakeTimer struct {
	id  int
	at  time.Duration
	fn  func()
	seq int
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{timers: make(map[int]*fakeTimer)}
}

func (f *FakeScheduler) Schedule(delay time.Duration, fn func()) CancelFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.timers[id] = &fakeTimer{id: id, at: f.now + delay, fn: fn, seq: id}
	return func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.timers[id]; !ok {
			return false
		}
		delete(f.timers, id)
		return true
	}
}

// Advance moves the clock forward and runs every timer that came due, in
// deadline order.
func (f *FakeScheduler) Advance(d time.Duration) {
	f.mu.Lock()
	f.now += d
	var due []*fakeTimer
	for id, t := range f.timers {
		if t.at <= f.now {
			due = append(due, t)
			delete(f.timers, id)
		}
	}
	f.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at == due[j].at {
			return due[i].seq < due[j].seq
		}
		return due[i].at < due[j].at
	})
	for _, t := range due {
		t.fn()
	}
}

// Len returns the number of timers still scheduled.
func (f *FakeScheduler) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}
