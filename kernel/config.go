package kernel

import (
	"fmt"

	"hartos/kernel/executor"
)

// Config holds the scheduler tunables.
type Config struct {
	// Levels is the number of MLFQ levels. Level 0 is the I/O level.
	Levels int
	// BaseSlice is the time slice, in clock ticks, before the level multiplier.
	BaseSlice uint64
	// SliceMultipliers scales BaseSlice per level; lower levels get more time.
	SliceMultipliers []uint64
	// StackSize is the per-thread stack allocation. It must be a power of two.
	StackSize uintptr
	// QueueCapacity bounds every executor's ready queue.
	QueueCapacity int
	// NetIRQ is the PLIC line of the network device.
	NetIRQ uint32
	// NetRing is the number of received frames buffered by the driver.
	NetRing int
	// BootIOTask starts task 0: an I/O task whose coroutine yields forever.
	// It is the designated target of redirected APPEND_TASK calls.
	BootIOTask bool
}

// DefaultConfig returns the qemu-virt defaults: two levels, a 1ms base slice
// at 12.5MHz and 32KiB stacks.
func DefaultConfig() Config {
	return Config{
		Levels:           2,
		BaseSlice:        12_500,
		SliceMultipliers: []uint64{1, 4},
		StackSize:        0x8000,
		QueueCapacity:    executor.DefaultCapacity,
		NetIRQ:           33,
		NetRing:          32,
	}
}

// WithDefaults fills zero fields from DefaultConfig. Missing slice multipliers
// become 4^level.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Levels == 0 {
		c.Levels = d.Levels
	}
	if c.BaseSlice == 0 {
		c.BaseSlice = d.BaseSlice
	}
	if len(c.SliceMultipliers) == 0 {
		c.SliceMultipliers = make([]uint64, c.Levels)
		for i := range c.SliceMultipliers {
			c.SliceMultipliers[i] = uint64(1) << (2 * i)
		}
	}
	if c.StackSize == 0 {
		c.StackSize = d.StackSize
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = d.QueueCapacity
	}
	if c.NetIRQ == 0 {
		c.NetIRQ = d.NetIRQ
	}
	if c.NetRing == 0 {
		c.NetRing = d.NetRing
	}
	return c
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch {
	case c.Levels < 1:
		return fmt.Errorf("%w: levels = %d, want >= 1", ErrInvalidConfig, c.Levels)
	case len(c.SliceMultipliers) < c.Levels:
		return fmt.Errorf("%w: %d slice multipliers for %d levels", ErrInvalidConfig, len(c.SliceMultipliers), c.Levels)
	case c.BaseSlice == 0:
		return fmt.Errorf("%w: base slice is zero", ErrInvalidConfig)
	case c.StackSize == 0 || c.StackSize&(c.StackSize-1) != 0:
		return fmt.Errorf("%w: stack size %#x is not a power of two", ErrInvalidConfig, c.StackSize)
	case c.QueueCapacity < 1:
		return fmt.Errorf("%w: queue capacity = %d", ErrInvalidConfig, c.QueueCapacity)
	case c.NetIRQ == 0:
		return fmt.Errorf("%w: net irq line 0 is reserved", ErrInvalidConfig)
	}
	for i, m := range c.SliceMultipliers[:c.Levels] {
		if m == 0 {
			return fmt.Errorf("%w: slice multiplier %d is zero", ErrInvalidConfig, i)
		}
	}
	return nil
}

func (c Config) slice(level int) uint64 {
	if level < 0 {
		level = 0
	}
	if level >= len(c.SliceMultipliers) {
		level = len(c.SliceMultipliers) - 1
	}
	return c.BaseSlice * c.SliceMultipliers[level]
}

// computeLevel is where compute-classified tasks start.
func (c Config) computeLevel() int {
	if c.Levels > 1 {
		return 1
	}
	return 0
}
