//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

type tinyGoHAL struct {
	console *uartConsole
	logger  Logger
	clock   *tinyGoClock
	plic    *PLIC
	heap    *Heap
	net     Network
}

// New returns the bare-metal HAL: UART console, monotonic clock and a
// software interrupt controller.
//
// UART: the board's default serial port, 115200 8N1.
func New() HAL {
	uart := machine.Serial
	uart.Configure(machine.UARTConfig{BaudRate: 115200})
	c := &uartConsole{uart: uart}
	return &tinyGoHAL{
		console: c,
		logger:  &uartLogger{c: c},
		clock:   &tinyGoClock{start: time.Now()},
		plic:    NewPLIC(),
		heap:    NewHeap(0x2000_0000, 64<<10),
		net:     NullNetwork(),
	}
}

func (h *tinyGoHAL) Logger() Logger     { return h.logger }
func (h *tinyGoHAL) Console() Console   { return h.console }
func (h *tinyGoHAL) Network() Network   { return h.net }
func (h *tinyGoHAL) Clock() Clock       { return h.clock }
func (h *tinyGoHAL) IRQ() IRQController { return h.plic }
func (h *tinyGoHAL) Heap() Allocator    { return h.heap }
func (h *tinyGoHAL) Display() Display   { return NewDisplay(nil) }

func (h *tinyGoHAL) Shutdown(failure bool) {
	if failure {
		h.logger.WriteLineString("shutdown: failure")
	}
	for {
		time.Sleep(time.Hour)
	}
}

type uartConsole struct {
	uart machine.Serialer
}

func (c *uartConsole) Getchar() (byte, bool) {
	if c.uart.Buffered() == 0 {
		return 0, false
	}
	b, err := c.uart.ReadByte()
	if err != nil {
		return 0, false
	}
	return b, true
}

func (c *uartConsole) Putchar(b byte) { c.uart.WriteByte(b) }

type uartLogger struct {
	c *uartConsole
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.c.Putchar(s[i])
	}
	l.c.Putchar('\r')
	l.c.Putchar('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.c.Putchar(b[i])
	}
	l.c.Putchar('\r')
	l.c.Putchar('\n')
}

// tinyGoClock counts microseconds since boot.
type tinyGoClock struct {
	start time.Time
}

func (c *tinyGoClock) Now() uint64       { return uint64(time.Since(c.start) / time.Microsecond) }
func (c *tinyGoClock) Frequency() uint64 { return 1_000_000 }

func (c *tinyGoClock) Idle(until uint64) {
	now := c.Now()
	if until > now {
		time.Sleep(time.Duration(until-now) * time.Microsecond)
	}
}
