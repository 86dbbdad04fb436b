//go:build !tinygo

package hal

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestPumpReaderFeedsUntilEOF(t *testing.T) {
	c := NewBufferedConsole(io.Discard, 16)
	if err := pumpReader(context.Background(), c, strings.NewReader("ab")); err != nil {
		t.Fatalf("pumpReader() = %v, want nil", err)
	}
	for _, want := range []byte("ab") {
		if b, ok := c.Getchar(); !ok || b != want {
			t.Fatalf("Getchar() = %q, %v, want %q", b, ok, want)
		}
	}
}

func TestPumpReaderCtrlC(t *testing.T) {
	c := NewBufferedConsole(io.Discard, 16)
	err := pumpReader(context.Background(), c, strings.NewReader("x\x03y"))
	if err != ErrInterrupt {
		t.Fatalf("pumpReader() = %v, want ErrInterrupt", err)
	}
	if b, ok := c.Getchar(); !ok || b != 'x' {
		t.Fatalf("Getchar() = %q, %v, want 'x'", b, ok)
	}
	if _, ok := c.Getchar(); ok {
		t.Fatal("bytes after Ctrl-C should be dropped")
	}
}
