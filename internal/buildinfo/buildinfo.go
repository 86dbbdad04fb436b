// Package buildinfo identifies the running build.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X hartos/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns a compact build identifier for banners and window titles.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if c := commit(); c != "unknown" {
		if len(c) > 12 {
			c = c[:12]
		}
		return c
	}
	return "dev"
}

// String returns version, commit and date on one line.
func String() string {
	return fmt.Sprintf("hartos %s (commit %s, built %s)", Version, commit(), Date)
}

// commit falls back to the VCS revision the go command stamped into the binary.
func commit() string {
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return "unknown"
}
