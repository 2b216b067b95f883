package chart

import (
	"sync"
	"time"
)

type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. time.AfterFunc satisfies it through
// SystemScheduler; tests substitute a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type SystemScheduler struct{}

func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer keeps at most one pending callback. Scheduling again replaces
// the pending one. Every schedule gets a token; a fired callback must
// Claim its token before acting, which fails once the token has been
// superseded, cancelled or the debouncer closed. Callers that serialise
// Schedule, Cancel and Claim under their own lock get exact
// last-writer-wins semantics even when a timer fires concurrently.
type Debouncer struct {
	mu     sync.Mutex
	s      Scheduler
	delay  time.Duration
	timer  Timer
	token  uint64
	live   bool
	closed bool
}

func NewDebouncer(s Scheduler, delay time.Duration) *Debouncer {
	if s == nil {
		s = SystemScheduler{}
	}
	return &Debouncer{s: s, delay: delay}
}

// Schedule arms f after the delay and returns its token.
func (d *Debouncer) Schedule(f func(token uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0
	}
	d.stopLocked()
	d.token++
	tok := d.token
	d.live = true
	d.timer = d.s.AfterFunc(d.delay, func() { f(tok) })
	return tok
}

// Cancel drops the pending callback. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	was := d.live
	d.stopLocked()
	return was
}

// Claim consumes token if it is still the pending one.
func (d *Debouncer) Claim(token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || !d.live || token != d.token {
		return false
	}
	d.live = false
	d.timer = nil
	return true
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// Close cancels any pending callback; later schedules are ignored.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	// a fire already in flight fails Claim once the token moves on
	d.token++
	d.live = false
}
