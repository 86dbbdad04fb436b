// Package config loads the HCL boot file: logging, scheduler tunables, the
// simulated machine and the applications to start.
package config

import (
	"fmt"

	"hartos/kernel"
)

// Config is the resolved boot configuration.
type Config struct {
	LogLevel  string
	LogFormat string

	Kernel kernel.Config

	HeapBase uint64
	HeapSize uint64
	// Width and Height size the framebuffer console; zero disables it.
	Width    int
	Height   int
	Loopback bool

	Apps []App
}

// App selects an example application.
type App struct {
	Name string
	// Instances is the number of echo coroutine pairs.
	Instances int
	// Fib is the argument of the compute coroutine; 0 disables it.
	Fib int
	// Frames is the number of frames netecho handles before exiting.
	Frames int
}

// Default returns the configuration used when no boot file is given.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Kernel:    kernel.DefaultConfig(),
		HeapBase:  0x8040_0000,
		HeapSize:  8 << 20,
		Apps:      []App{{Name: "echo", Instances: 3, Fib: 25}},
	}
}

// Validate checks the settings the kernel does not check itself.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
	}
	if err := c.Kernel.Validate(); err != nil {
		return err
	}
	if c.HeapSize < uint64(c.Kernel.StackSize) {
		return fmt.Errorf("heap of %d bytes cannot hold one %d byte stack", c.HeapSize, c.Kernel.StackSize)
	}
	if c.Width < 0 || c.Height < 0 || (c.Width == 0) != (c.Height == 0) {
		return fmt.Errorf("invalid display size %dx%d", c.Width, c.Height)
	}
	seen := make(map[string]bool)
	for _, a := range c.Apps {
		switch a.Name {
		case "echo", "netecho", "console":
		default:
			return fmt.Errorf("unknown app %q", a.Name)
		}
		if seen[a.Name] {
			return fmt.Errorf("app %q declared twice", a.Name)
		}
		seen[a.Name] = true
		if a.Instances < 0 || a.Fib < 0 || a.Frames < 0 {
			return fmt.Errorf("app %q: negative setting", a.Name)
		}
	}
	return nil
}
