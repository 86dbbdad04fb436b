package echo

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hartos/hal"
	"hartos/kernel"
)

func newKernel(t *testing.T, cfg kernel.Config) (*kernel.Kernel, *hal.Host, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	h := hal.NewHost(hal.HostOptions{Out: &out, Clock: hal.NewStepClock(1000, 1)})
	k, err := kernel.New(h, cfg)
	require.NoError(t, err)
	t.Cleanup(k.Close)
	return k, h, &out
}

func TestEchoWithoutIOTaskRunsLocally(t *testing.T) {
	k, h, out := newKernel(t, kernel.Config{BaseSlice: 10})
	e := Start(k, h.Logger(), Options{Instances: 3, Fib: 15})

	require.NoError(t, k.Run(context.Background()))

	for i := 0; i < 3; i++ {
		require.Contains(t, out.String(), fmt.Sprintf("hi %d\n", i))
		require.Contains(t, out.String(), fmt.Sprintf("goodbye %d\n", i))
	}
	require.Contains(t, out.String(), "fib(15) = 610\n")
	for _, tid := range e.Targets() {
		require.Equal(t, e.TID(), tid)
	}
	v, ok := e.Fib()
	require.True(t, ok)
	require.Equal(t, uint64(610), v)
}

func TestEchoRedirectsToBootIOTask(t *testing.T) {
	k, h, out := newKernel(t, kernel.Config{BaseSlice: 10, BootIOTask: true})
	e := Start(k, h.Logger(), Options{Instances: 2})

	for i := 0; i < 500 && strings.Count(out.String(), "\n") < 4; i++ {
		require.True(t, k.Step())
	}
	require.Equal(t, []int{0, 0, 0, 0}, e.Targets())
	require.Contains(t, out.String(), "goodbye 1\n")

	_, ok := e.Fib()
	require.False(t, ok, "fib disabled")
}
