// Package hart models a single RISC-V hardware thread running in supervisor
// mode: saved register contexts, the timer comparator and the one primitive
// that enters a context and returns at its next trap.
//
// On the host every Context is backed by a goroutine that only runs while the
// scheduler is parked inside Execute, so exactly one side holds the hart.
package hart

import (
	"reflect"
	"runtime"
	"runtime/debug"
)

// Register numbers used by the calling convention.
const (
	RegSP = 2
	RegA0 = 10
	RegA7 = 17
)

// Context is a saved hart state: 31 general registers (x0 is hard-wired to
// zero), a scratch word, the PC and the privilege/interrupt mode flags.
type Context struct {
	x       [32]uint64
	scratch uint64
	pc      uintptr

	supervisor bool
	interrupt  bool

	entry  func(*Context)
	hart   *Hart
	masked int

	started  bool
	running  bool
	exited   bool
	released bool

	resume chan struct{}
	trap   chan Trap
	done   chan struct{}
}

// NewThread returns a supervisor context whose PC is entry's code address.
// interrupt selects whether interrupts are enabled while it runs.
func NewThread(entry func(*Context), interrupt bool) *Context {
	return &Context{
		pc:         reflect.ValueOf(entry).Pointer(),
		supervisor: true,
		interrupt:  interrupt,
		entry:      entry,
		resume:     make(chan struct{}),
		trap:       make(chan Trap),
		done:       make(chan struct{}),
	}
}

// X returns general register n.
func (c *Context) X(n int) uint64 {
	if n <= 0 || n >= len(c.x) {
		return 0
	}
	return c.x[n]
}

// SetX writes general register n. Writes to x0 are discarded.
func (c *Context) SetX(n int, v uint64) {
	if n <= 0 || n >= len(c.x) {
		return
	}
	c.x[n] = v
}

// A returns argument register a<n>.
func (c *Context) A(n int) uint64 { return c.X(RegA0 + n) }

// SetA writes argument register a<n>.
func (c *Context) SetA(n int, v uint64) { c.SetX(RegA0+n, v) }

func (c *Context) SP() uint64       { return c.X(RegSP) }
func (c *Context) SetSP(v uint64)   { c.SetX(RegSP, v) }
func (c *Context) PC() uintptr      { return c.pc }
func (c *Context) SetPC(pc uintptr) { c.pc = pc }

func (c *Context) Scratch() uint64     { return c.scratch }
func (c *Context) SetScratch(v uint64) { c.scratch = v }

// Supervisor reports whether the context runs privileged.
func (c *Context) Supervisor() bool { return c.supervisor }

// Interrupt reports whether interrupts are enabled when the context runs.
func (c *Context) Interrupt() bool { return c.interrupt }

// MoveNext advances PC past the trapping instruction.
func (c *Context) MoveNext() { c.pc += 4 }

// Running reports whether the context currently holds a hart.
func (c *Context) Running() bool { return c.running }

// Exited reports whether the entry function has returned or panicked.
func (c *Context) Exited() bool { return c.exited }

// Release frees the backing goroutine. The context must not be executed again.
func (c *Context) Release() {
	if c.released {
		return
	}
	c.released = true
	close(c.done)
}

// Preempt is an interrupt window. If interrupts are enabled and unmasked it
// traps on a pending external interrupt, or else on an elapsed timer.
func (c *Context) Preempt() {
	if !c.interrupt || c.masked > 0 || c.hart == nil {
		return
	}
	if cause, ok := c.hart.pendingInterrupt(); ok {
		c.trapOut(Trap{Cause: cause, PC: c.pc})
	}
}

// PushOff masks interrupts. Calls nest.
func (c *Context) PushOff() { c.masked++ }

// PopOn undoes one PushOff and, once unmasked, opens an interrupt window.
func (c *Context) PopOn() {
	if c.masked == 0 {
		return
	}
	c.masked--
	if c.masked == 0 {
		c.Preempt()
	}
}

// Ecall raises an environment call from supervisor mode. The kernel reads the
// syscall id from a7 and leaves the result in a0 before resuming.
func (c *Context) Ecall() {
	c.trapOut(Trap{Cause: CauseSyscall, PC: c.pc})
}

// Ebreak raises a breakpoint trap.
func (c *Context) Ebreak() {
	c.trapOut(Trap{Cause: CauseBreakpoint, PC: c.pc})
}

func (c *Context) start() {
	c.started = true
	go c.run()
}

func (c *Context) run() {
	defer func() {
		if r := recover(); r != nil {
			c.exited = true
			c.trap <- Trap{Cause: CausePanic, PC: c.pc, Value: r, Stack: debug.Stack()}
		}
	}()
	select {
	case <-c.resume:
	case <-c.done:
		runtime.Goexit()
	}
	c.entry(c)
	c.exited = true
	c.pc = 0
	c.trap <- Trap{Cause: CauseFault, PC: 0}
}

// trapOut hands the hart back to the scheduler and parks until resumed.
func (c *Context) trapOut(t Trap) {
	c.trap <- t
	select {
	case <-c.resume:
	case <-c.done:
		runtime.Goexit()
	}
}
