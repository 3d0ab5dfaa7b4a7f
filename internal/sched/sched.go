// Package sched models the single-threaded event loop: one-shot and
// periodic timers, microtasks that run after the current handler, and a
// trailing-edge debouncer built on top of them.
//
// Nothing here starts a goroutine. Time only moves when the owner calls
// Advance (tests) or Fire (the terminal driver, which arms real ticks for
// every timer returned by TakeArmed).
package sched

import (
	"slices"
	"time"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the timer and reports whether it was still armed.
	Stop() bool
}

// Scheduler is what the engine components need from the loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
	// Defer queues fn to run once the current handler returns.
	Defer(fn func())
}

// TimerID identifies an armed timer across the driver boundary.
type TimerID uint64

// Arm is a timer that became due at Delay from the moment it was taken.
type Arm struct {
	ID    TimerID
	Delay time.Duration
}

// FiredMsg reports that the real-time tick for a timer elapsed.
type FiredMsg struct {
	ID TimerID
}

type timer struct {
	loop     *Loop
	id       TimerID
	due      time.Duration
	interval time.Duration
	fn       func()
	armed    bool
}

func (t *timer) Stop() bool {
	if t == nil || !t.armed {
		return false
	}
	t.armed = false
	t.loop.drop(t)
	return true
}

// Loop is a deterministic event loop clock.
type Loop struct {
	now        time.Duration
	seq        TimerID
	timers     []*timer
	microtasks []func()
	fresh      []Arm
}

// NewLoop returns a loop at virtual time zero.
func NewLoop() *Loop {
	return &Loop{}
}

// Now returns the virtual time elapsed since the loop was created.
func (l *Loop) Now() time.Duration {
	return l.now
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return l.arm(d, 0, fn)
}

// Every runs fn every d until stopped. A non-positive period is treated as
// one millisecond.
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	return l.arm(d, d, fn)
}

func (l *Loop) Defer(fn func()) {
	if fn != nil {
		l.microtasks = append(l.microtasks, fn)
	}
}

func (l *Loop) arm(d, interval time.Duration, fn func()) *timer {
	if d < 0 {
		d = 0
	}
	l.seq++
	t := &timer{loop: l, id: l.seq, due: l.now + d, interval: interval, fn: fn, armed: true}
	l.timers = append(l.timers, t)
	l.fresh = append(l.fresh, Arm{ID: t.id, Delay: d})
	return t
}

func (l *Loop) drop(t *timer) {
	if idx := slices.Index(l.timers, t); idx >= 0 {
		l.timers = slices.Delete(l.timers, idx, idx+1)
	}
}

// Pending returns the number of armed timers.
func (l *Loop) Pending() int {
	return len(l.timers)
}

// RunMicrotasks drains the microtask queue, including tasks queued while
// draining.
func (l *Loop) RunMicrotasks() {
	for len(l.microtasks) > 0 {
		task := l.microtasks[0]
		l.microtasks = l.microtasks[1:]
		task()
	}
}

// Advance moves the clock forward by d and fires every timer that falls due,
// in due order, draining microtasks after each callback.
func (l *Loop) Advance(d time.Duration) {
	l.RunMicrotasks()
	target := l.now + d
	for {
		next := l.nextDue(target)
		if next == nil {
			break
		}
		l.now = next.due
		l.run(next)
	}
	l.now = target
}

func (l *Loop) nextDue(limit time.Duration) *timer {
	var best *timer
	for _, t := range l.timers {
		if t.due > limit {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.id < best.id) {
			best = t
		}
	}
	return best
}

func (l *Loop) run(t *timer) {
	if t.interval > 0 {
		t.due = l.now + t.interval
	} else {
		t.armed = false
		l.drop(t)
	}
	t.fn()
	l.RunMicrotasks()
}

// Fire runs the timer with the given id if it is still armed. Periodic
// timers are re-armed and show up again in TakeArmed.
func (l *Loop) Fire(id TimerID) bool {
	idx := slices.IndexFunc(l.timers, func(t *timer) bool { return t.id == id })
	if idx < 0 {
		return false
	}
	t := l.timers[idx]
	if t.due > l.now {
		l.now = t.due
	}
	if t.interval > 0 {
		l.fresh = append(l.fresh, Arm{ID: t.id, Delay: t.interval})
	}
	l.run(t)
	return true
}

// TakeArmed returns the timers armed since the previous call.
func (l *Loop) TakeArmed() []Arm {
	out := l.fresh
	l.fresh = nil
	return out
}
