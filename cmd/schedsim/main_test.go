package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hartos/internal/cli"
)

func TestRunPrintsTraceAndSummary(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-compute", "1", "-io", "1", "-work", "20"})
	require.NoError(t, err)

	text := out.String()
	require.Contains(t, text, "SEQ")
	require.Contains(t, text, "dispatches, kernel(")
	require.Contains(t, text, "hi 0")

	// header plus at least the echo task and the two extra tasks
	i := strings.LastIndex(text, "TID  ")
	require.GreaterOrEqual(t, i, 0)
	rows := strings.Count(strings.TrimSpace(text[i:]), "\n")
	require.GreaterOrEqual(t, rows, 3)
}

func TestRunDispatchLimit(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-trace=false", "-dispatches", "5", "-compute", "3"})
	require.NoError(t, err)
	require.Contains(t, out.String(), "\n5 dispatches")
	require.NotContains(t, out.String(), "SEQ")
}

func TestParseErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-compute", "-1"},
		{"-dispatches", "0"},
		{"-bogus"},
	} {
		err := run(&bytes.Buffer{}, args)
		var exitErr *cli.ExitError
		require.True(t, errors.As(err, &exitErr), "args %v: %v", args, err)
		require.Equal(t, 2, exitErr.Code)
	}
}

func TestHelp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&out, []string{"-help"}))
	require.Contains(t, out.String(), "schedsim")
}
