package timerq

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSweepOrder(t *testing.T) {
	var q Queue[string]
	q.Push(30, "c")
	q.Push(10, "a")
	q.Push(20, "b1")
	q.Push(20, "b2")
	q.Push(40, "d")

	got := q.Sweep(30)
	if diff := cmp.Diff([]string{"a", "b1", "b2", "c"}, got); diff != "" {
		t.Fatalf("Sweep(30) mismatch (-want +got):\n%s", diff)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
	if d, ok := q.Peek(); !ok || d != 40 {
		t.Fatalf("Peek() = %d, %v, want 40, true", d, ok)
	}
}

func TestSweepIdempotent(t *testing.T) {
	var q Queue[int]
	q.Push(5, 1)
	_ = q.Sweep(5)
	if got := q.Sweep(5); len(got) != 0 {
		t.Fatalf("second Sweep(5) = %v, want empty", got)
	}
	if got := q.Sweep(4); got != nil {
		t.Fatalf("Sweep on empty queue = %v, want nil", got)
	}
}

func TestSweepStopsAtFuture(t *testing.T) {
	var q Queue[int]
	q.Push(100, 1)
	if got := q.Sweep(99); len(got) != 0 {
		t.Fatalf("Sweep(99) = %v, want empty", got)
	}
	if _, ok := q.Peek(); !ok {
		t.Fatalf("Peek() ok = false, want true")
	}
}

func TestFind(t *testing.T) {
	var q Queue[int]
	q.Push(1, 10)
	q.Push(2, 20)
	if v, ok := q.Find(func(v int) bool { return v == 20 }); !ok || v != 20 {
		t.Fatalf("Find() = %d, %v, want 20, true", v, ok)
	}
	if _, ok := q.Find(func(v int) bool { return v == 30 }); ok {
		t.Fatalf("Find() ok = true for missing value")
	}
}
