package sched

import "time"

// Debouncer collapses bursts of Schedule calls into one trailing call of fn
// once wait has passed without a new Schedule. There is no maximum wait.
type Debouncer struct {
	sched Scheduler
	wait  time.Duration
	fn    func()
	timer Timer
}

func NewDebouncer(s Scheduler, wait time.Duration, fn func()) *Debouncer {
	return &Debouncer{sched: s, wait: wait, fn: fn}
}

// Schedule (re)starts the wait window.
func (d *Debouncer) Schedule() {
	d.Cancel()
	d.timer = d.sched.AfterFunc(d.wait, d.fire)
}

// Cancel drops a pending call.
func (d *Debouncer) Cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a call is waiting for its window to close.
func (d *Debouncer) Pending() bool {
	return d.timer != nil
}

// Flush runs fn now, dropping any pending call.
func (d *Debouncer) Flush() {
	d.Cancel()
	d.fn()
}

func (d *Debouncer) fire() {
	d.timer = nil
	d.fn()
}
