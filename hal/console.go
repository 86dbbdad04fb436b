package hal

import (
	"io"
	"sync"
)

// BufferedConsole is a Console whose input arrives through Feed and whose
// output goes to a writer plus an optional mirror.
type BufferedConsole struct {
	in chan byte

	mu     sync.Mutex
	w      io.Writer
	mirror func(byte)
}

// NewBufferedConsole returns a console writing to w with an input buffer of depth bytes.
func NewBufferedConsole(w io.Writer, depth int) *BufferedConsole {
	if depth <= 0 {
		depth = 256
	}
	return &BufferedConsole{in: make(chan byte, depth), w: w}
}

// Mirror installs a second output sink (the framebuffer console).
func (c *BufferedConsole) Mirror(fn func(byte)) {
	c.mu.Lock()
	c.mirror = fn
	c.mu.Unlock()
}

// Feed queues input bytes. Bytes beyond the buffer are dropped, like a UART FIFO overrun.
func (c *BufferedConsole) Feed(p []byte) int {
	n := 0
	for _, b := range p {
		select {
		case c.in <- b:
			n++
		default:
			return n
		}
	}
	return n
}

func (c *BufferedConsole) Getchar() (byte, bool) {
	select {
	case b := <-c.in:
		return b, true
	default:
		return 0, false
	}
}

func (c *BufferedConsole) Putchar(b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.w != nil {
		c.w.Write([]byte{b})
	}
	if c.mirror != nil {
		c.mirror(b)
	}
}

// Write lets the console serve as an io.Writer.
func (c *BufferedConsole) Write(p []byte) (int, error) {
	for _, b := range p {
		c.Putchar(b)
	}
	return len(p), nil
}

type consoleLogger struct {
	mu sync.Mutex
	c  Console
}

// ConsoleLogger returns a Logger that writes lines to c.
func ConsoleLogger(c Console) Logger { return &consoleLogger{c: c} }

func (l *consoleLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := 0; i < len(s); i++ {
		l.c.Putchar(s[i])
	}
	l.c.Putchar('\n')
}

func (l *consoleLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range b {
		l.c.Putchar(c)
	}
	l.c.Putchar('\n')
}
