package kernel

import (
	"errors"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	c := Config{Levels: 3}.WithDefaults()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if got := c.slice(2); got != 12_500*16 {
		t.Fatalf("slice(2) = %d, want %d", got, 12_500*16)
	}
	if got := c.slice(9); got != 12_500*16 {
		t.Fatalf("slice(9) = %d, want last level slice", got)
	}
	if c.computeLevel() != 1 {
		t.Fatalf("computeLevel() = %d, want 1", c.computeLevel())
	}
	if one := (Config{Levels: 1}).WithDefaults(); one.computeLevel() != 0 {
		t.Fatalf("computeLevel() with one level = %d, want 0", one.computeLevel())
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"no levels", func(c *Config) { c.Levels = -1 }},
		{"short multipliers", func(c *Config) { c.Levels = 3 }},
		{"zero multiplier", func(c *Config) { c.SliceMultipliers = []uint64{1, 0} }},
		{"odd stack", func(c *Config) { c.StackSize = 0x3000 }},
		{"zero queue", func(c *Config) { c.QueueCapacity = -1 }},
	}
	for _, tc := range cases {
		c := DefaultConfig()
		tc.mut(&c)
		if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: Validate() = %v, want ErrInvalidConfig", tc.name, err)
		}
	}
}
