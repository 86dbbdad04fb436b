// Package timerq is a min-heap of values keyed by millisecond deadlines.
package timerq

import "container/heap"

type entry[T any] struct {
	deadline uint64
	seq      uint64
	v        T
}

type entries[T any] []entry[T]

func (e entries[T]) Len() int { return len(e) }

func (e entries[T]) Less(i, j int) bool {
	if e[i].deadline != e[j].deadline {
		return e[i].deadline < e[j].deadline
	}
	return e[i].seq < e[j].seq
}

func (e entries[T]) Swap(i, j int) { e[i], e[j] = e[j], e[i] }
func (e *entries[T]) Push(x any)   { *e = append(*e, x.(entry[T])) }

func (e *entries[T]) Pop() any {
	old := *e
	n := len(old)
	x := old[n-1]
	old[n-1] = entry[T]{}
	*e = old[:n-1]
	return x
}

// Queue orders values by deadline. Equal deadlines come out in insertion order.
// The zero value is ready to use. Queue is not safe for concurrent use.
type Queue[T any] struct {
	h   entries[T]
	seq uint64
}

// Push schedules v for deadline.
func (q *Queue[T]) Push(deadline uint64, v T) {
	q.seq++
	heap.Push(&q.h, entry[T]{deadline: deadline, seq: q.seq, v: v})
}

// Sweep removes and returns, in non-decreasing deadline order, every value
// whose deadline is <= now.
func (q *Queue[T]) Sweep(now uint64) []T {
	var out []T
	for len(q.h) > 0 && q.h[0].deadline <= now {
		out = append(out, heap.Pop(&q.h).(entry[T]).v)
	}
	return out
}

// Peek returns the earliest deadline.
func (q *Queue[T]) Peek() (deadline uint64, ok bool) {
	if len(q.h) == 0 {
		return 0, false
	}
	return q.h[0].deadline, true
}

func (q *Queue[T]) Len() int { return len(q.h) }

// Find returns the first value (in heap order) matching fn without removing it.
func (q *Queue[T]) Find(fn func(T) bool) (T, bool) {
	for _, e := range q.h {
		if fn(e.v) {
			return e.v, true
		}
	}
	var zero T
	return zero, false
}
