// Package netdev is the kernel side of the NIC: it acknowledges the device
// interrupt, moves received frames into a software ring and wakes the
// coroutines waiting for them.
package netdev

import (
	"fmt"
	"sync"

	"hartos/hal"
	"hartos/kernel/executor"
)

// DefaultRing is the default number of frames held between interrupts and readers.
const DefaultRing = 32

// Device wraps a hal.Network.
type Device struct {
	nic hal.Network

	mu      sync.Mutex
	ring    [][]byte
	depth   int
	dropped uint64
	irqs    uint64
	waiters []*executor.Waker
	buf     []byte
}

// New returns a device over nic whose RX ring holds depth frames.
func New(nic hal.Network, depth int) *Device {
	if depth <= 0 {
		depth = DefaultRing
	}
	return &Device{nic: nic, depth: depth, buf: make([]byte, hal.MaxFrameSize)}
}

// HandleInterrupt drains the NIC into the RX ring. When the ring is full the
// oldest frame is dropped. Registered wakers fire once frames were queued.
func (d *Device) HandleInterrupt() {
	d.mu.Lock()
	d.irqs++
	got := 0
	for d.nic.CanRecv() {
		n, err := d.nic.Receive(d.buf)
		if err != nil {
			break
		}
		if len(d.ring) >= d.depth {
			d.ring[0] = nil
			d.ring = d.ring[1:]
			d.dropped++
		}
		d.ring = append(d.ring, append([]byte(nil), d.buf[:n]...))
		got++
	}
	var wake []*executor.Waker
	if got > 0 {
		wake = d.waiters
		d.waiters = nil
	}
	d.mu.Unlock()

	for _, w := range wake {
		w.Wake()
	}
}

// TryRecv pops the oldest received frame.
func (d *Device) TryRecv() ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.ring) == 0 {
		return nil, false
	}
	f := d.ring[0]
	d.ring[0] = nil
	d.ring = d.ring[1:]
	return f, true
}

// Send transmits a frame.
func (d *Device) Send(frame []byte) error {
	if !d.nic.CanSend() {
		return fmt.Errorf("netdev: send %d bytes: %w", len(frame), hal.ErrWouldBlock)
	}
	if err := d.nic.Transmit(frame); err != nil {
		return fmt.Errorf("netdev: send %d bytes: %w", len(frame), err)
	}
	return nil
}

// Register parks w until the next interrupt that queues a frame.
func (d *Device) Register(w *executor.Waker) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, x := range d.waiters {
		if x == w {
			return
		}
	}
	d.waiters = append(d.waiters, w)
}

// Stats returns the interrupt count and the number of dropped frames.
func (d *Device) Stats() (irqs, dropped uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.irqs, d.dropped
}

// RecvFuture completes with the next frame, suspending until one arrives.
func (d *Device) RecvFuture(out *[]byte) executor.Future {
	return executor.FutureFunc(func(cx *executor.Context) executor.State {
		if f, ok := d.TryRecv(); ok {
			*out = f
			return executor.Done
		}
		d.Register(cx.Waker())
		// A frame may have landed between TryRecv and Register.
		if f, ok := d.TryRecv(); ok {
			*out = f
			return executor.Done
		}
		return executor.Suspended
	})
}

