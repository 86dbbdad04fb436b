package klog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

type lines struct{ got []string }

func (l *lines) WriteLineString(s string) { l.got = append(l.got, s) }
func (l *lines) WriteLineBytes(b []byte)  { l.got = append(l.got, string(b)) }

func TestLineWriterSplitsLines(t *testing.T) {
	var l lines
	w := NewLineWriter(&l)
	_, _ = w.Write([]byte("one\ntw"))
	_, _ = w.Write([]byte("o\nthree"))
	w.Flush()

	want := []string{"one", "two", "three"}
	if strings.Join(l.got, ",") != strings.Join(want, ",") {
		t.Fatalf("lines = %q, want %q", l.got, want)
	}
}

func TestNewLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "json", &buf)
	log.Info("hidden")
	log.Warn("shown", "tid", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"tid":3`) {
		t.Fatalf("output = %s, want json attribute tid", out)
	}
}

func TestContextCarriage(t *testing.T) {
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Fatalf("FromContext() without logger != slog.Default()")
	}
	l := Discard()
	ctx := WithLogger(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Fatalf("FromContext() = %p, want %p", got, l)
	}
}
