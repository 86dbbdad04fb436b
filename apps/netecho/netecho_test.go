package netecho

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hartos/hal"
	"hartos/kernel"
)

func TestEchoLoopsFramesBack(t *testing.T) {
	var out bytes.Buffer
	h := hal.NewHost(hal.HostOptions{Out: &out, Clock: hal.NewStepClock(1000, 1), Loopback: true})
	k, err := kernel.New(h, kernel.Config{BaseSlice: 10})
	require.NoError(t, err)
	t.Cleanup(k.Close)

	s, err := Start(k, h.Logger(), 3)
	require.NoError(t, err)

	// On a loopback link every echo comes back as the next frame.
	nic, ok := h.Network().(*hal.Loopback)
	require.True(t, ok)
	require.NoError(t, nic.Inject([]byte("ping")))

	require.NoError(t, k.Run(context.Background()))

	frames, failed := s.Handled()
	require.Equal(t, 3, frames)
	require.Zero(t, failed)
	require.Equal(t, 3, strings.Count(out.String(), "netecho: received 4 bytes"))
	require.Contains(t, out.String(), "netecho: stopped")

	st, ok := k.Stats(s.TID())
	require.True(t, ok)
	require.Equal(t, kernel.StatusFinished, st.Status)
	require.NotZero(t, st.IRQTraps)
}

type noNIC struct{ *hal.Host }

func (noNIC) Network() hal.Network { return nil }

func TestStartWithoutDevice(t *testing.T) {
	h := hal.NewHost(hal.HostOptions{Out: &bytes.Buffer{}, Clock: hal.NewManualClock(1000)})
	k, err := kernel.New(noNIC{h}, kernel.Config{})
	require.NoError(t, err)
	t.Cleanup(k.Close)

	_, err = Start(k, h.Logger(), 1)
	require.ErrorIs(t, err, ErrNoDevice)
}
