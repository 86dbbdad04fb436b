//go:build !tinygo

package hal

import (
	"io"
	"os"
	"sync"
)

// HostOptions configures the hosted machine.
type HostOptions struct {
	// Out receives console output. Defaults to stdout.
	Out io.Writer
	// Clock replaces the wall clock (tests use ManualClock or StepClock).
	Clock Clock
	// NetIRQ is the PLIC line of the NIC. Zero selects 33.
	NetIRQ uint32
	// Loopback attaches a loopback NIC instead of the null network.
	Loopback bool
	// HeapBase and HeapSize describe the kernel heap range.
	HeapBase uintptr
	HeapSize uintptr
	// Width and Height of the framebuffer. Zero disables the display.
	Width  int
	Height int
}

// Host is the hosted HAL: a simulated qemu-virt machine.
type Host struct {
	console *BufferedConsole
	logger  Logger
	clock   Clock
	plic    *PLIC
	heap    *Heap
	net     Network
	fb      *MemFramebuffer

	once     sync.Once
	done     chan struct{}
	mu       sync.Mutex
	failure  bool
	shutdown bool
}

// New returns a host HAL with default options.
func New() HAL {
	return NewHost(HostOptions{})
}

// NewHost builds a hosted machine.
func NewHost(opts HostOptions) *Host {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = newHostClock()
	}
	if opts.NetIRQ == 0 {
		opts.NetIRQ = 33
	}
	if opts.HeapSize == 0 {
		opts.HeapBase = 0x8040_0000
		opts.HeapSize = 8 << 20
	}
	console := NewBufferedConsole(opts.Out, 256)
	plic := NewPLIC()
	h := &Host{
		console: console,
		logger:  ConsoleLogger(console),
		clock:   opts.Clock,
		plic:    plic,
		heap:    NewHeap(opts.HeapBase, opts.HeapSize),
		net:     NullNetwork(),
		done:    make(chan struct{}),
	}
	if opts.Loopback {
		h.net = NewLoopback(plic, opts.NetIRQ, 16)
	}
	if opts.Width > 0 && opts.Height > 0 {
		h.fb = NewFramebuffer(opts.Width, opts.Height)
	}
	return h
}

func (h *Host) Logger() Logger     { return h.logger }
func (h *Host) Console() Console   { return h.console }
func (h *Host) Network() Network   { return h.net }
func (h *Host) Clock() Clock       { return h.clock }
func (h *Host) IRQ() IRQController { return h.plic }
func (h *Host) Heap() Allocator    { return h.heap }

func (h *Host) Display() Display {
	if h.fb == nil {
		return NewDisplay(nil)
	}
	return NewDisplay(h.fb)
}

// PLIC exposes the interrupt controller so devices can raise lines.
func (h *Host) PLIC() *PLIC { return h.plic }

// BufferedConsole exposes the console for input feeding.
func (h *Host) BufferedConsole() *BufferedConsole { return h.console }

// Framebuffer returns the framebuffer, or nil when the display is disabled.
func (h *Host) Framebuffer() *MemFramebuffer { return h.fb }

// Shutdown records the power-off request. The runner decides the exit code.
func (h *Host) Shutdown(failure bool) {
	h.mu.Lock()
	h.shutdown = true
	h.failure = h.failure || failure
	h.mu.Unlock()
	h.once.Do(func() { close(h.done) })
}

// Done is closed once Shutdown has been called.
func (h *Host) Done() <-chan struct{} { return h.done }

// ShutdownState reports whether Shutdown was called and whether it reported failure.
func (h *Host) ShutdownState() (down, failure bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shutdown, h.failure
}
