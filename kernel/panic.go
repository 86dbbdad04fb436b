package kernel

import (
	"errors"
	"fmt"
	"sync/atomic"

	"hartos/kernel/hart"
)

// PanicInfo contains details about a kernel panic.
type PanicInfo struct {
	// TID is the task that was running, or -1.
	TID   int
	Cause hart.Cause
	PC    uintptr
	Value any
	Stack []byte
}

// Fault is the panic value the scheduler raises for a fatal trap.
type Fault struct {
	TID   int
	Cause hart.Cause
	PC    uintptr
	Value any
	Stack []byte
}

func (f *Fault) Error() string {
	return fmt.Sprintf("task %d: %s at pc=%#x: %v", f.TID, f.Cause, f.PC, f.Value)
}

func (f *Fault) Unwrap() error {
	err, _ := f.Value.(error)
	return err
}

var (
	panicActive  atomic.Bool
	panicHandler atomic.Value // func(PanicInfo)
)

// InPanicMode reports whether any kernel has panicked.
func InPanicMode() bool {
	return panicActive.Load()
}

// SetPanicHandler installs a process-wide panic handler.
//
// Each kernel invokes it at most once, on its first panic. It must not panic.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

func panicInfo(r any) PanicInfo {
	var f *Fault
	if err, ok := r.(error); ok && errors.As(err, &f) {
		return PanicInfo{TID: f.TID, Cause: f.Cause, PC: f.PC, Value: f.Value, Stack: f.Stack}
	}
	return PanicInfo{TID: -1, Value: r, Stack: captureStack()}
}

func triggerPanic(info PanicInfo) {
	panicActive.Store(true)
	if v := panicHandler.Load(); v != nil {
		if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
			fn(info)
		}
	}
}

// panicError converts a recovered value to the error Run returns.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrKernelPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrKernelPanic, r)
}
