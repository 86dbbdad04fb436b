package hal

import "sync/atomic"

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	now  atomic.Uint64
	freq uint64
}

// NewManualClock returns a manual clock ticking at freq Hz, starting at zero.
func NewManualClock(freq uint64) *ManualClock {
	return &ManualClock{freq: freq}
}

func (c *ManualClock) Now() uint64       { return c.now.Load() }
func (c *ManualClock) Frequency() uint64 { return c.freq }

// Set moves the clock to t. The clock never goes backwards.
func (c *ManualClock) Set(t uint64) {
	for {
		cur := c.now.Load()
		if t <= cur || c.now.CompareAndSwap(cur, t) {
			return
		}
	}
}

// Advance moves the clock forward by d ticks.
func (c *ManualClock) Advance(d uint64) { c.now.Add(d) }

// Idle jumps straight to until.
func (c *ManualClock) Idle(until uint64) { c.Set(until) }

// StepClock advances by a fixed step on every read, so that code spinning
// on the clock observes time passing without a wall clock.
type StepClock struct {
	now  atomic.Uint64
	step uint64
	freq uint64
}

// NewStepClock returns a clock at freq Hz that advances step ticks per Now call.
func NewStepClock(freq, step uint64) *StepClock {
	return &StepClock{freq: freq, step: step}
}

func (c *StepClock) Now() uint64       { return c.now.Add(c.step) - c.step }
func (c *StepClock) Frequency() uint64 { return c.freq }

// Peek returns the current value without advancing.
func (c *StepClock) Peek() uint64 { return c.now.Load() }

// Idle jumps forward to until.
func (c *StepClock) Idle(until uint64) {
	for {
		cur := c.now.Load()
		if until <= cur || c.now.CompareAndSwap(cur, until) {
			return
		}
	}
}
