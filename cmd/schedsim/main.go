// Command schedsim runs the scheduler headless on a simulated clock and
// prints every dispatch plus a per-task summary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"hartos/app"
	"hartos/hal"
	"hartos/internal/cli"
	"hartos/internal/config"
	"hartos/kernel"
	"hartos/kernel/executor"
)

type options struct {
	cfg     *config.Config
	compute int
	io      int
	work    int
	limit   int
	freq    uint64
	trace   bool
}

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parse(args []string, output io.Writer) (*options, bool, error) {
	fs := flag.NewFlagSet("schedsim", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
schedsim - run the hartos scheduler on a simulated clock.

Usage:
  schedsim [options] [BOOT_FILE]

Options:
`)
		fs.PrintDefaults()
	}

	configFlag := fs.String("config", "", "Path to the HCL boot file.")
	computeFlag := fs.Int("compute", 2, "Extra compute-bound tasks.")
	ioFlag := fs.Int("io", 2, "Extra I/O-bound tasks.")
	workFlag := fs.Int("work", 200, "Checkpoints per compute task, and sleeps per I/O task.")
	limitFlag := fs.Int("dispatches", 10000, "Stop after this many dispatches.")
	freqFlag := fs.Uint64("freq", 1000, "Simulated clock frequency in ticks per second. Each clock read advances one tick.")
	traceFlag := fs.Bool("trace", true, "Print every dispatch.")
	logLevelFlag := fs.String("log-level", "warn", "Log level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &cli.ExitError{Code: 2, Message: err.Error()}
	}

	cfg := config.Default()
	path := *configFlag
	if path == "" && fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, false, &cli.ExitError{Code: 2, Message: err.Error()}
		}
	} else {
		cfg.Kernel.BaseSlice = 10
	}
	cfg.LogLevel = strings.ToLower(*logLevelFlag)
	cfg.Width, cfg.Height = 0, 0
	if err := cfg.Validate(); err != nil {
		return nil, false, &cli.ExitError{Code: 2, Message: err.Error()}
	}
	if *computeFlag < 0 || *ioFlag < 0 || *workFlag < 0 || *limitFlag < 1 || *freqFlag == 0 {
		return nil, false, &cli.ExitError{Code: 2, Message: "task counts must be >= 0, dispatches >= 1 and freq > 0"}
	}

	return &options{
		cfg:     cfg,
		compute: *computeFlag,
		io:      *ioFlag,
		work:    *workFlag,
		limit:   *limitFlag,
		freq:    *freqFlag,
		trace:   *traceFlag,
	}, false, nil
}

func run(out io.Writer, args []string) error {
	opts, exit, err := parse(args, out)
	if err != nil || exit {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	h := hal.NewHost(hal.HostOptions{
		Out:      out,
		Clock:    hal.NewStepClock(opts.freq, 1),
		NetIRQ:   opts.cfg.Kernel.NetIRQ,
		Loopback: opts.cfg.Loopback,
		HeapBase: uintptr(opts.cfg.HeapBase),
		HeapSize: uintptr(opts.cfg.HeapSize),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if opts.trace {
		fmt.Fprintln(tw, "SEQ\tTID\tLEVEL\tIO\tTRANSIENT\tCAUSE\tSYSCALL\tSTART\tTICKS\tPOLLS")
	}
	dispatches := 0
	trace := kernel.WithTrace(func(ev kernel.TraceEvent) {
		dispatches++
		if dispatches >= opts.limit {
			cancel()
		}
		if !opts.trace {
			return
		}
		syscall := "-"
		if ev.Syscall != 0 {
			syscall = fmt.Sprint(ev.Syscall)
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%t\t%t\t%s\t%s\t%d\t%d\t%d\n",
			ev.Seq, ev.TID, ev.Level, ev.IO, ev.Transient, ev.Cause, syscall, ev.Start, ev.Duration(), ev.Polls)
	})

	sys, err := app.New(h, opts.cfg, trace)
	if err != nil {
		return err
	}
	k := sys.Kernel()
	for i := 0; i < opts.compute; i++ {
		k.Spawn(grind(opts.work), false)
	}
	for i := 0; i < opts.io; i++ {
		k.Spawn(nap(opts.work), true)
	}

	err = sys.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	tw.Flush()
	summary(out, k, dispatches)
	return err
}

func grind(n int) executor.Future {
	return executor.Ready(func(cx *executor.Context) {
		for i := 0; i < n; i++ {
			cx.Checkpoint()
		}
	})
}

func nap(n int) executor.Future {
	i := 0
	return executor.FutureFunc(func(cx *executor.Context) executor.State {
		if i == n {
			return executor.Done
		}
		i++
		if th := kernel.ThreadOf(cx); th != nil {
			th.Sleep(time.Millisecond)
		}
		cx.Waker().Wake()
		return executor.Suspended
	})
}

func summary(out io.Writer, k *kernel.Kernel, dispatches int) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintf(tw, "\n%d dispatches, %s\n", dispatches, k)
	fmt.Fprintln(tw, "TID\tIO\tLEVEL\tSTATUS\tDISPATCH\tTIMER\tIRQ\tSYSCALL\tDEMOTE\tPROMOTE\tSTEAL\tPOLLS\tEXIT")
	for _, st := range k.Tasks() {
		exit := "-"
		if st.Exited {
			exit = fmt.Sprint(st.ExitCode)
		}
		fmt.Fprintf(tw, "%d\t%t\t%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			st.TID, st.IO, st.Level, st.Status, st.Dispatches, st.TimerTraps, st.IRQTraps,
			st.Syscalls, st.Demotions, st.Promotions, st.Steals, st.Polls, exit)
	}
}
