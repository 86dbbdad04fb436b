//go:build !tinygo

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"hartos/app"
	"hartos/hal"
	"hartos/internal/cli"
)

func main() {
	code, err := run(os.Stdout, os.Args[1:])
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

func run(out io.Writer, args []string) (int, error) {
	inv, exit, err := cli.Parse(args, out)
	if err != nil || exit {
		return 0, err
	}
	cfg := inv.Config

	h := hal.NewHost(hal.HostOptions{
		Out:      out,
		NetIRQ:   cfg.Kernel.NetIRQ,
		Loopback: cfg.Loopback,
		HeapBase: uintptr(cfg.HeapBase),
		HeapSize: uintptr(cfg.HeapSize),
		Width:    cfg.Width,
		Height:   cfg.Height,
	})
	sys, err := app.New(h, cfg)
	if err != nil {
		return 1, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		err := sys.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if inv.Console {
		g.Go(func() error {
			err := hal.PumpConsole(gctx, h.BufferedConsole())
			if errors.Is(err, hal.ErrInterrupt) {
				cancel()
				return nil
			}
			return err
		})
	}
	if inv.Window {
		// ebiten needs the main goroutine.
		if err := hal.RunWindow(gctx, h); err != nil {
			cancel()
			_ = g.Wait()
			return 1, err
		}
		cancel()
	}

	if err := g.Wait(); err != nil {
		return 1, err
	}
	if _, failure := h.ShutdownState(); failure {
		return 1, nil
	}
	return 0, nil
}
