package kernel

import (
	"errors"
	"testing"

	"hartos/hal"
	"hartos/kernel/hart"
)

func TestTCBInitAndRelease(t *testing.T) {
	heap := hal.NewHeap(0x1000, 0x40000)
	tcb := NewTCB(heap, 0x8000)
	if tcb.Status() != StatusUninit {
		t.Fatalf("Status() = %v, want uninit", tcb.Status())
	}

	tcb.Init(func(*hart.Context) {})
	base, size := tcb.Stack()
	if base%0x8000 != 0 {
		t.Fatalf("stack base %#x not aligned to its size", base)
	}
	if got, want := tcb.Context().SP(), uint64(base+size); got != want {
		t.Fatalf("SP() = %#x, want %#x", got, want)
	}
	if tcb.Status() != StatusReady {
		t.Fatalf("Status() = %v, want ready", tcb.Status())
	}

	tcb.Release()
	tcb.Release()
	if tcb.Status() != StatusFinished {
		t.Fatalf("Status() = %v, want finished", tcb.Status())
	}
	if heap.InUse() != 0 {
		t.Fatalf("InUse() = %d after Release, want 0", heap.InUse())
	}
}

func TestTCBOutOfMemoryPanics(t *testing.T) {
	tcb := NewTCB(hal.NewHeap(0, 0x100), 0x8000)
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, hal.ErrOutOfMemory) {
			t.Fatalf("Init() panic = %v, want ErrOutOfMemory", err)
		}
	}()
	tcb.Init(func(*hart.Context) {})
}

func TestTCBExitCode(t *testing.T) {
	tcb := NewTCB(hal.NewHeap(0, 0x1000), 0x100)
	if _, ok := tcb.ExitCode(); ok {
		t.Fatalf("ExitCode() ok = true before exit")
	}
	tcb.SetExit(3)
	if code, ok := tcb.ExitCode(); !ok || code != 3 {
		t.Fatalf("ExitCode() = %d, %v, want 3, true", code, ok)
	}
}
