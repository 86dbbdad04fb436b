package hal

import (
	"bytes"
	"errors"
	"testing"
)

func TestLoopbackRaisesLine(t *testing.T) {
	p := NewPLIC()
	nic := NewLoopback(p, 33, 2)

	if nic.CanRecv() {
		t.Fatalf("CanRecv() = true on empty link, want false")
	}
	if err := nic.Transmit([]byte("ping")); err != nil {
		t.Fatalf("Transmit() err = %v", err)
	}
	if line, ok := p.Claim(); !ok || line != 33 {
		t.Fatalf("Claim() = %d, %v, want 33, true", line, ok)
	}

	buf := make([]byte, MaxFrameSize)
	n, err := nic.Receive(buf)
	if err != nil {
		t.Fatalf("Receive() err = %v", err)
	}
	if !bytes.Equal(buf[:n], []byte("ping")) {
		t.Fatalf("Receive() = %q, want %q", buf[:n], "ping")
	}
	if _, err := nic.Receive(buf); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("Receive() on empty err = %v, want ErrWouldBlock", err)
	}
}

func TestLoopbackFull(t *testing.T) {
	nic := NewLoopback(nil, 1, 1)
	_ = nic.Transmit([]byte{1})
	if nic.CanSend() {
		t.Fatalf("CanSend() = true when full, want false")
	}
	if err := nic.Transmit([]byte{2}); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("Transmit() err = %v, want ErrWouldBlock", err)
	}
}

func TestNullNetwork(t *testing.T) {
	n := NullNetwork()
	if err := n.Transmit(nil); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("Transmit() err = %v, want ErrNotImplemented", err)
	}
	if n.CanSend() || n.CanRecv() {
		t.Fatalf("CanSend/CanRecv = true, want false")
	}
}
