package hart

import (
	"errors"
	"fmt"
	"sync"

	"hartos/hal"
)

// ErrReentrant is raised when a context is entered while it, or another
// context, already holds the hart.
var ErrReentrant = errors.New("hart: context entered while running")

// Cause identifies why a context returned control to the kernel.
type Cause uint8

const (
	CauseNone Cause = iota
	// CauseTimer is the supervisor timer interrupt.
	CauseTimer
	// CauseExternal is the supervisor external interrupt (PLIC).
	CauseExternal
	// CauseSyscall is an environment call.
	CauseSyscall
	// CauseBreakpoint is an ebreak.
	CauseBreakpoint
	// CauseFault is an instruction fault; the hosted model raises it when
	// the entry function returns (PC 0).
	CauseFault
	// CausePanic is a Go panic inside the context.
	CausePanic
)

func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseTimer:
		return "timer"
	case CauseExternal:
		return "external"
	case CauseSyscall:
		return "syscall"
	case CauseBreakpoint:
		return "breakpoint"
	case CauseFault:
		return "fault"
	case CausePanic:
		return "panic"
	default:
		return fmt.Sprintf("cause(%d)", uint8(c))
	}
}

// Interrupt reports whether the cause is asynchronous.
func (c Cause) Interrupt() bool { return c == CauseTimer || c == CauseExternal }

// Trap describes a trap taken by a context.
type Trap struct {
	Cause Cause
	PC    uintptr
	// Value and Stack are set for CausePanic.
	Value any
	Stack []byte
}

// Hart is one hardware thread with its timer comparator.
type Hart struct {
	clock hal.Clock
	irq   hal.IRQController

	mu       sync.Mutex
	current  *Context
	deadline uint64
	armed    bool
}

// New returns a hart reading time from clock and external interrupts from irq.
// irq may be nil.
func New(clock hal.Clock, irq hal.IRQController) *Hart {
	return &Hart{clock: clock, irq: irq}
}

// Clock returns the hart's time source.
func (h *Hart) Clock() hal.Clock { return h.clock }

// SetTimer programs the comparator: a timer interrupt fires once Now() >= deadline.
func (h *Hart) SetTimer(deadline uint64) {
	h.mu.Lock()
	h.deadline = deadline
	h.armed = true
	h.mu.Unlock()
}

// ClearTimer disarms the comparator.
func (h *Hart) ClearTimer() {
	h.mu.Lock()
	h.armed = false
	h.mu.Unlock()
}

// Timer returns the programmed deadline.
func (h *Hart) Timer() (deadline uint64, armed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deadline, h.armed
}

// Current returns the context holding the hart, if any.
func (h *Hart) Current() *Context {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

func (h *Hart) pendingInterrupt() (Cause, bool) {
	if h.irq != nil && h.irq.Pending() {
		return CauseExternal, true
	}
	h.mu.Lock()
	deadline, armed := h.deadline, h.armed
	h.mu.Unlock()
	if armed && h.clock != nil && h.clock.Now() >= deadline {
		return CauseTimer, true
	}
	return CauseNone, false
}

// Execute resumes ctx on the hart and returns when it traps.
//
// Entering a context that is running, or entering any context while the hart
// is occupied, panics with ErrReentrant.
func (h *Hart) Execute(ctx *Context) Trap {
	h.mu.Lock()
	if h.current != nil || ctx.running {
		h.mu.Unlock()
		panic(fmt.Errorf("execute pc=%#x: %w", ctx.pc, ErrReentrant))
	}
	if ctx.exited || ctx.released {
		h.mu.Unlock()
		return Trap{Cause: CauseFault, PC: 0}
	}
	h.current = ctx
	ctx.running = true
	ctx.hart = h
	h.mu.Unlock()

	if !ctx.started {
		ctx.start()
	}
	ctx.resume <- struct{}{}
	t := <-ctx.trap

	h.mu.Lock()
	ctx.running = false
	h.current = nil
	h.mu.Unlock()
	return t
}
