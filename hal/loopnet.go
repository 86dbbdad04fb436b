package hal

import (
	"fmt"
	"sync"
)

// MaxFrameSize bounds a single frame on the loopback link.
const MaxFrameSize = 1514

// Loopback is a NIC whose transmitted frames are received back by itself.
//
// Every transmit (and every Inject) raises the configured line on the PLIC,
// the same way a virtio-net device signals a used-ring update.
type Loopback struct {
	mu     sync.Mutex
	frames [][]byte
	depth  int
	plic   *PLIC
	line   uint32
}

// NewLoopback returns a loopback NIC holding at most depth frames.
func NewLoopback(plic *PLIC, line uint32, depth int) *Loopback {
	if depth <= 0 {
		depth = 16
	}
	return &Loopback{plic: plic, line: line, depth: depth}
}

// Inject delivers a frame as if it came from the wire.
func (l *Loopback) Inject(frame []byte) error {
	return l.Transmit(frame)
}

func (l *Loopback) Transmit(frame []byte) error {
	if len(frame) > MaxFrameSize {
		return fmt.Errorf("loopback: frame of %d bytes exceeds %d", len(frame), MaxFrameSize)
	}
	l.mu.Lock()
	if len(l.frames) >= l.depth {
		l.mu.Unlock()
		return ErrWouldBlock
	}
	l.frames = append(l.frames, append([]byte(nil), frame...))
	l.mu.Unlock()
	if l.plic != nil {
		l.plic.Raise(l.line)
	}
	return nil
}

func (l *Loopback) Receive(frame []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.frames) == 0 {
		return 0, ErrWouldBlock
	}
	f := l.frames[0]
	l.frames[0] = nil
	l.frames = l.frames[1:]
	return copy(frame, f), nil
}

func (l *Loopback) CanSend() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames) < l.depth
}

func (l *Loopback) CanRecv() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames) > 0
}
