//go:build !tinygo

package hal

import "time"

// hostFrequency mirrors the qemu-virt CLINT timebase (12.5 MHz).
const hostFrequency = 12_500_000

const hostTickNanos = uint64(time.Second) / hostFrequency

type hostClock struct {
	start time.Time
}

func newHostClock() *hostClock {
	return &hostClock{start: time.Now()}
}

func (c *hostClock) Now() uint64 {
	return uint64(time.Since(c.start)) / hostTickNanos
}

func (c *hostClock) Frequency() uint64 { return hostFrequency }

func (c *hostClock) Idle(until uint64) {
	now := c.Now()
	if until <= now {
		return
	}
	d := time.Duration((until - now) * hostTickNanos)
	// Keep idles short so external interrupts are noticed promptly.
	if d > 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	time.Sleep(d)
}
