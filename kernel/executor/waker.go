package executor

import (
	"fmt"
	"sync/atomic"
)

// Waker re-enqueues one coroutine on the ready queue of the executor that
// currently owns it. It is safe to call from interrupt handlers and after the
// coroutine has completed (the stale id is dropped when popped).
type Waker struct {
	id ID
	q  atomic.Pointer[readyQueue]
}

func newWaker(id ID, q *readyQueue) *Waker {
	w := &Waker{id: id}
	w.q.Store(q)
	return w
}

// ID returns the coroutine this waker belongs to.
func (w *Waker) ID() ID { return w.id }

// Wake schedules the coroutine for another poll.
func (w *Waker) Wake() {
	if !w.q.Load().push(w.id) {
		panic(fmt.Errorf("wake coroutine %d: %w", w.id, ErrQueueFull))
	}
}
