package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	inv, exit, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	require.False(t, inv.Window)
	require.True(t, inv.Console)
	require.Equal(t, "info", inv.Config.LogLevel)
	require.Zero(t, inv.Config.Width)
}

func TestParseHelp(t *testing.T) {
	var out bytes.Buffer
	inv, exit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	require.True(t, exit)
	require.Nil(t, inv)
	require.Contains(t, out.String(), "BOOT_FILE")
}

func TestParseVersion(t *testing.T) {
	var out bytes.Buffer
	_, exit, err := Parse([]string{"-version"}, &out)
	require.NoError(t, err)
	require.True(t, exit)
	require.Contains(t, out.String(), "hartos ")
}

func TestParseOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boot.hcl")
	require.NoError(t, os.WriteFile(path, []byte("log {\n  level = \"warn\"\n}\n"), 0o644))

	inv, _, err := Parse([]string{"-window", "-log-format", "JSON", "-boot-io", path}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "warn", inv.Config.LogLevel)
	require.Equal(t, "json", inv.Config.LogFormat)
	require.True(t, inv.Config.Kernel.BootIOTask)
	require.Equal(t, 320, inv.Config.Width, "window mode needs a framebuffer")
}

func TestParseErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-nope"},
		{"-log-level", "loud"},
		{"-config", "does-not-exist.hcl"},
	} {
		_, _, err := Parse(args, &bytes.Buffer{})
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr), "args %v: %v", args, err)
		require.Equal(t, 2, exitErr.Code)
	}
}
