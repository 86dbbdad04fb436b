// Package app boots a machine: it wires the HAL, the kernel and the
// configured applications together.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"hartos/apps/echo"
	"hartos/apps/netecho"
	"hartos/hal"
	"hartos/internal/buildinfo"
	"hartos/internal/config"
	"hartos/internal/fbterm"
	"hartos/internal/klog"
	"hartos/kernel"
)

// bootFrame is injected into an injectable NIC so netecho has traffic.
var bootFrame = []byte("hartos ping")

type mirrorer interface {
	Mirror(fn func(byte))
}

type injector interface {
	Inject(frame []byte) error
}

// System is a booted machine.
type System struct {
	hal  hal.HAL
	cfg  *config.Config
	k    *kernel.Kernel
	log  *slog.Logger
	logw *klog.LineWriter
	term *fbterm.Terminal

	echo    *echo.Echo
	netecho *netecho.Server
	console int
}

// New boots cfg on h. A nil cfg selects config.Default. opts are passed to
// the kernel after the logger option.
func New(h hal.HAL, cfg *config.Config, opts ...kernel.Option) (*System, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &System{hal: h, cfg: cfg, console: -1}
	s.logw = klog.NewLineWriter(h.Logger())
	s.log = klog.New(cfg.LogLevel, cfg.LogFormat, s.logw)
	s.attachTerminal()
	installPanicHandler(h)

	kopts := append([]kernel.Option{kernel.WithLogger(s.log)}, opts...)
	k, err := kernel.New(h, cfg.Kernel, kopts...)
	if err != nil {
		return nil, fmt.Errorf("boot kernel: %w", err)
	}
	s.k = k
	h.Logger().WriteLineString("hartos " + buildinfo.Short())

	for _, a := range cfg.Apps {
		if err := s.start(a); err != nil {
			k.Close()
			return nil, fmt.Errorf("start %s: %w", a.Name, err)
		}
	}
	s.log.Info("boot complete", "levels", k.Config().Levels, "apps", len(cfg.Apps))
	return s, nil
}

func (s *System) start(a config.App) error {
	switch a.Name {
	case "echo":
		s.echo = echo.Start(s.k, s.hal.Logger(), echo.Options{Instances: a.Instances, Fib: a.Fib})
	case "netecho":
		srv, err := netecho.Start(s.k, s.hal.Logger(), a.Frames)
		if err != nil {
			return err
		}
		s.netecho = srv
		if nic, ok := s.hal.Network().(injector); ok {
			if err := nic.Inject(bootFrame); err != nil {
				s.log.Warn("boot frame not injected", "err", err)
			}
		}
	case "console":
		s.console = s.k.Spawn(consoleEcho(s.hal.Console()), true)
	default:
		return fmt.Errorf("unknown app %q", a.Name)
	}
	return nil
}

// attachTerminal mirrors console output onto the framebuffer, if there is one.
func (s *System) attachTerminal() {
	d := displayer(s.hal)
	if d == nil {
		return
	}
	m, ok := s.hal.Console().(mirrorer)
	if !ok {
		return
	}
	term, err := fbterm.New(d)
	if err != nil {
		s.log.Warn("framebuffer console disabled", "err", err)
		return
	}
	s.term = term
	m.Mirror(func(b byte) { _ = term.WriteByte(b) })
}

// Run schedules until the system drains, ctx ends or the kernel panics.
func (s *System) Run(ctx context.Context) error {
	defer s.logw.Flush()
	ctx = klog.WithLogger(ctx, s.log)
	err := s.k.Run(ctx)
	if s.term != nil {
		_ = s.term.Flush()
	}
	return err
}

// Kernel returns the booted kernel.
func (s *System) Kernel() *kernel.Kernel { return s.k }

// Logger returns the system logger.
func (s *System) Logger() *slog.Logger { return s.log }

// Terminal returns the framebuffer console, or nil.
func (s *System) Terminal() *fbterm.Terminal { return s.term }

// Echo returns the echo workload, or nil when it was not configured.
func (s *System) Echo() *echo.Echo { return s.echo }

// NetEcho returns the network echo server, or nil when it was not configured.
func (s *System) NetEcho() *netecho.Server { return s.netecho }

// ConsoleTID returns the console echo task, or -1.
func (s *System) ConsoleTID() int { return s.console }

// Run boots the default configuration on h and schedules until the machine
// powers off.
func Run(h hal.HAL) error {
	s, err := New(h, nil)
	if err != nil {
		h.Logger().WriteLineString(err.Error())
		h.Shutdown(true)
		return err
	}
	return s.Run(context.Background())
}
