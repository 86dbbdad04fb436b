// Package cli parses the hartos command line.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"hartos/internal/buildinfo"
	"hartos/internal/config"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Invocation is a parsed command line.
type Invocation struct {
	Config *config.Config
	// Window opens the desktop window instead of running headless.
	Window bool
	// Console pumps the host terminal into the machine console.
	Console bool
}

// Parse processes command-line arguments. It returns the invocation, whether
// the program should exit cleanly right away, or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	fs := flag.NewFlagSet("hartos", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
hartos - a two-level scheduler on a simulated RISC-V hart.

Usage:
  hartos [options] [BOOT_FILE]

Arguments:
  BOOT_FILE
    HCL boot file. The built-in defaults are used when omitted.

Options:
`)
		fs.PrintDefaults()
	}

	configFlag := fs.String("config", "", "Path to the HCL boot file.")
	windowFlag := fs.Bool("window", false, "Present the framebuffer console in a window.")
	consoleFlag := fs.Bool("console", true, "Forward terminal input to the machine console.")
	logFormatFlag := fs.String("log-format", "", "Override the log format. Options: 'text' or 'json'.")
	logLevelFlag := fs.String("log-level", "", "Override the log level. Options: 'debug', 'info', 'warn', 'error'.")
	bootIOFlag := fs.Bool("boot-io", false, "Start the boot I/O task.")
	versionFlag := fs.Bool("version", false, "Print the build version and exit.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if *versionFlag {
		fmt.Fprintln(output, buildinfo.String())
		return nil, true, nil
	}

	path := *configFlag
	if path == "" && fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
	}
	if *logFormatFlag != "" {
		cfg.LogFormat = strings.ToLower(*logFormatFlag)
	}
	if *logLevelFlag != "" {
		cfg.LogLevel = strings.ToLower(*logLevelFlag)
	}
	if *bootIOFlag {
		cfg.Kernel.BootIOTask = true
	}
	if *windowFlag && cfg.Width == 0 {
		cfg.Width, cfg.Height = 320, 240
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return &Invocation{Config: cfg, Window: *windowFlag, Console: *consoleFlag}, false, nil
}
