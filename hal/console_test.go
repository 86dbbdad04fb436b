package hal

import (
	"bytes"
	"testing"
)

func TestBufferedConsole(t *testing.T) {
	var out bytes.Buffer
	var mirrored []byte
	c := NewBufferedConsole(&out, 2)
	c.Mirror(func(b byte) { mirrored = append(mirrored, b) })

	if n := c.Feed([]byte("abc")); n != 2 {
		t.Fatalf("Feed() = %d, want 2", n)
	}
	if b, ok := c.Getchar(); !ok || b != 'a' {
		t.Fatalf("Getchar() = %q, %v, want 'a', true", b, ok)
	}
	_, _ = c.Getchar()
	if _, ok := c.Getchar(); ok {
		t.Fatalf("Getchar() ok = true on empty input, want false")
	}

	ConsoleLogger(c).WriteLineString("hi")
	if out.String() != "hi\n" {
		t.Fatalf("output = %q, want %q", out.String(), "hi\n")
	}
	if string(mirrored) != "hi\n" {
		t.Fatalf("mirror = %q, want %q", mirrored, "hi\n")
	}
}
