package app

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hartos/hal"
	"hartos/internal/config"
	"hartos/kernel"
	"hartos/kernel/executor"
)

func testConfig(apps ...config.App) *config.Config {
	cfg := config.Default()
	cfg.LogLevel = "debug"
	cfg.Kernel.BaseSlice = 10
	cfg.Loopback = true
	cfg.Width, cfg.Height = 160, 120
	cfg.Apps = apps
	return cfg
}

func newHost(cfg *config.Config, out *bytes.Buffer) *hal.Host {
	return hal.NewHost(hal.HostOptions{
		Out:      out,
		Clock:    hal.NewStepClock(1000, 1),
		NetIRQ:   cfg.Kernel.NetIRQ,
		Loopback: cfg.Loopback,
		Width:    cfg.Width,
		Height:   cfg.Height,
	})
}

func TestBootRunsAppsAndDrains(t *testing.T) {
	cfg := testConfig(
		config.App{Name: "echo", Instances: 2, Fib: 10},
		config.App{Name: "netecho", Frames: 2},
	)
	var out bytes.Buffer
	h := newHost(cfg, &out)
	s, err := New(h, cfg)
	require.NoError(t, err)

	require.NoError(t, s.Run(context.Background()))

	down, failure := h.ShutdownState()
	require.True(t, down)
	require.False(t, failure)

	text := out.String()
	require.Contains(t, text, "hartos ")
	require.Contains(t, text, "hi 1\n")
	require.Contains(t, text, "fib(10) = 55\n")
	require.Contains(t, text, "netecho: received 11 bytes")
	require.Contains(t, text, "boot complete")

	frames, _ := s.NetEcho().Handled()
	require.Equal(t, 2, frames)
	require.Equal(t, -1, s.ConsoleTID())

	require.NotNil(t, s.Terminal())
	var shown bool
	for _, line := range s.Terminal().Lines() {
		if strings.TrimSpace(line) != "" {
			shown = true
		}
	}
	require.True(t, shown, "console output should be mirrored on the framebuffer")
}

func TestNoDisplayNoTerminal(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 0, 0
	var out bytes.Buffer
	s, err := New(newHost(cfg, &out), cfg)
	require.NoError(t, err)
	require.Nil(t, s.Terminal())
	require.NoError(t, s.Run(context.Background()))
}

func TestConsoleEcho(t *testing.T) {
	cfg := testConfig(config.App{Name: "console"})
	var out bytes.Buffer
	h := newHost(cfg, &out)
	s, err := New(h, cfg)
	require.NoError(t, err)
	t.Cleanup(s.Kernel().Close)
	require.GreaterOrEqual(t, s.ConsoleTID(), 0)

	h.BufferedConsole().Feed([]byte("ok\r"))
	for i := 0; i < 50 && !strings.Contains(out.String(), "ok\n"); i++ {
		require.True(t, s.Kernel().Step())
	}
	require.Contains(t, out.String(), "ok\n")
}

func TestPanicScreen(t *testing.T) {
	cfg := testConfig()
	var out bytes.Buffer
	h := newHost(cfg, &out)
	s, err := New(h, cfg)
	require.NoError(t, err)

	s.Kernel().Spawn(executor.Ready(func(*executor.Context) { panic("boom") }), true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = s.Run(ctx)
	require.ErrorIs(t, err, kernel.ErrKernelPanic)

	_, failure := h.ShutdownState()
	require.True(t, failure)
	require.Contains(t, out.String(), "hartos panic:")
	require.Contains(t, out.String(), "panic: boom")

	fb := h.Framebuffer()
	r, g, b := fb.Pixel(fb.Width()-1, fb.Height()-1)
	require.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b}, "panic screen background")
}

func TestBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Kernel.StackSize = 3
	_, err := New(newHost(cfg, &bytes.Buffer{}), cfg)
	require.ErrorIs(t, err, kernel.ErrInvalidConfig)
}
