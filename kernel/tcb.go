package kernel

import (
	"fmt"
	"sync"

	"hartos/hal"
	"hartos/kernel/hart"
)

// Status is the lifecycle state of a thread.
type Status uint8

const (
	StatusUninit Status = iota
	StatusReady
	StatusRunning
	// StatusBlocking means the task is not competing for the hart: it waits
	// in a level queue or in the timer queue.
	StatusBlocking
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusUninit:
		return "uninit"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusBlocking:
		return "blocking"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// TCB owns one hart context and its stack.
type TCB struct {
	mu        sync.Mutex
	heap      hal.Allocator
	ctx       *hart.Context
	stack     uintptr
	stackSize uintptr
	status    Status
	exitCode  int
	exited    bool
}

// NewTCB returns an uninitialized TCB whose stack comes from heap.
func NewTCB(heap hal.Allocator, stackSize uintptr) *TCB {
	return &TCB{heap: heap, stackSize: stackSize}
}

// Init allocates the stack, creates the context at entry with SP at the top of
// the stack, and marks the TCB Ready. Allocation failure panics.
func (t *TCB) Init(entry func(*hart.Context)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stack, err := t.heap.Alloc(t.stackSize, t.stackSize)
	if err != nil {
		panic(fmt.Errorf("tcb: stack of %#x bytes: %w", t.stackSize, err))
	}
	t.stack = stack
	t.ctx = hart.NewThread(entry, true)
	t.ctx.SetSP(uint64(stack + t.stackSize))
	t.status = StatusReady
}

// Context returns the saved hart state.
func (t *TCB) Context() *hart.Context { return t.ctx }

// Stack returns the base and size of the stack region.
func (t *TCB) Stack() (base, size uintptr) { return t.stack, t.stackSize }

func (t *TCB) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *TCB) SetStatus(s Status) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// SetExit records the exit code.
func (t *TCB) SetExit(code int) {
	t.mu.Lock()
	t.exitCode = code
	t.exited = true
	t.mu.Unlock()
}

// ExitCode returns the exit code, if the thread has exited.
func (t *TCB) ExitCode() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exitCode, t.exited
}

// Release frees the stack and the context and marks the TCB Finished.
func (t *TCB) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == StatusFinished {
		return
	}
	if t.ctx != nil {
		t.ctx.Release()
		t.heap.Dealloc(t.stack, t.stackSize)
	}
	t.status = StatusFinished
}
