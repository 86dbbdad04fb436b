package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var (
	ErrNotImplemented = errors.New("not implemented")
	ErrOutOfMemory    = errors.New("out of memory")
	ErrWouldBlock     = errors.New("operation would block")
)

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Console is the byte-oriented system console (UART on hardware).
type Console interface {
	// Getchar returns the next input byte, or false when none is buffered.
	Getchar() (byte, bool)
	Putchar(c byte)
}

// Network is the NIC seen by the kernel: a raw frame transport plus readiness.
type Network interface {
	Transmit(frame []byte) error
	Receive(frame []byte) (int, error)
	CanSend() bool
	CanRecv() bool
}

// Clock is the monotonic hardware time source (rdtime).
type Clock interface {
	// Now returns the current tick count.
	Now() uint64
	// Frequency returns ticks per second.
	Frequency() uint64
}

// Idler is implemented by clocks that can park the hart until a tick value.
//
// Simulated clocks jump forward; the host clock sleeps.
type Idler interface {
	Idle(until uint64)
}

// IRQController is the platform interrupt controller (PLIC on qemu-virt).
type IRQController interface {
	// Claim returns the highest-priority pending line, if any.
	Claim() (uint32, bool)
	// Complete signals that the claimed line has been served.
	Complete(line uint32)
	// Pending reports whether the external interrupt line to the hart is asserted.
	Pending() bool
}

// Allocator is a heap over a fixed address range.
type Allocator interface {
	Alloc(size, align uintptr) (uintptr, error)
	Dealloc(addr, size uintptr)
	Realloc(addr, oldSize, newSize, align uintptr) (uintptr, error)
}

// HAL provides the only contact point between the kernel and the outside world.
type HAL interface {
	Logger() Logger
	Console() Console
	Network() Network
	Clock() Clock
	IRQ() IRQController
	Heap() Allocator
	Display() Display
	// Shutdown powers the machine off. failure selects the error reset reason.
	Shutdown(failure bool)
}

// Clock helpers shared by the kernel and drivers.

// Millis converts a tick count to milliseconds.
func Millis(c Clock, ticks uint64) uint64 {
	f := c.Frequency()
	switch {
	case f == 0:
		return 0
	case f >= 1000:
		return ticks / (f / 1000)
	default:
		return ticks * 1000 / f
	}
}

// NowMillis returns the current time in milliseconds.
func NowMillis(c Clock) uint64 {
	return Millis(c, c.Now())
}

// TicksForMillis converts milliseconds to clock ticks.
func TicksForMillis(c Clock, ms uint64) uint64 {
	f := c.Frequency()
	if f >= 1000 {
		return ms * (f / 1000)
	}
	return ms * f / 1000
}
