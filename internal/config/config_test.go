package config

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoadBootFile(t *testing.T) {
	cfg, err := Load("testdata/boot.hcl")
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 3, cfg.Kernel.Levels)
	require.Equal(t, uint64(25000), cfg.Kernel.BaseSlice)
	require.Equal(t, 64, cfg.Kernel.QueueCapacity)
	require.True(t, cfg.Kernel.BootIOTask)
	require.Equal(t, uint32(8), cfg.Kernel.NetIRQ)
	require.Equal(t, uintptr(0x8000), cfg.Kernel.StackSize, "unset fields keep defaults")
	require.Equal(t, uint64(4<<20), cfg.HeapSize)
	require.True(t, cfg.Loopback)
	require.Equal(t, 320, cfg.Width)

	want := []App{
		{Name: "echo", Instances: 2, Fib: 20, Frames: 1},
		{Name: "netecho", Instances: 1, Frames: 4},
	}
	if diff := cmp.Diff(want, cfg.Apps); diff != "" {
		t.Fatalf("Apps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint64{1, 2, 8}, cfg.Kernel.SliceMultipliers); diff != "" {
		t.Fatalf("SliceMultipliers mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil, "empty.hcl")
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLevelsScalesMultipliers(t *testing.T) {
	cfg, err := Parse([]byte(`scheduler { levels = 3 }`), "levels.hcl")
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Kernel.Levels)
	if diff := cmp.Diff([]uint64{1, 4, 16}, cfg.Kernel.SliceMultipliers); diff != "" {
		t.Fatalf("SliceMultipliers mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `log {`, "failed to parse"},
		{"unknown attribute", `log { colour = "red" }`, "failed to decode"},
		{"bad format", `log { format = "xml" }`, "invalid log format"},
		{"bad level", `log { level = "loud" }`, "invalid log level"},
		{"kernel", "scheduler {\n  levels            = 3\n  slice_multipliers = [1, 2]\n}", "slice multipliers"},
		{"unknown app", `app "doom" {}`, "unknown app"},
		{"duplicate app", "app \"echo\" {}\napp \"echo\" {}", "declared twice"},
		{"display", "machine {\n  display {\n    width  = 10\n    height = 0\n  }\n}", "invalid display"},
	}
	for _, tc := range cases {
		_, err := Parse([]byte(tc.src), tc.name+".hcl")
		require.Error(t, err, tc.name)
		require.True(t, strings.Contains(err.Error(), tc.want), "%s: error %q does not mention %q", tc.name, err, tc.want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/missing.hcl")
	require.ErrorContains(t, err, "read boot file")
}
