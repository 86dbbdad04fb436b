package executor

import "sync"

// readyQueue is a bounded FIFO of coroutine ids.
//
// An id that is already queued is not queued twice, so repeated wakes between
// two polls cost nothing.
type readyQueue struct {
	mu     sync.Mutex
	head   uint64
	tail   uint64
	slots  []ID
	queued map[ID]struct{}
}

func newReadyQueue(capacity int) *readyQueue {
	return &readyQueue{
		slots:  make([]ID, capacity),
		queued: make(map[ID]struct{}, capacity),
	}
}

func (q *readyQueue) push(id ID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.queued[id]; ok {
		return true
	}
	if q.head-q.tail >= uint64(len(q.slots)) {
		return false
	}
	q.slots[q.head%uint64(len(q.slots))] = id
	q.head++
	q.queued[id] = struct{}{}
	return true
}

func (q *readyQueue) pop() (ID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tail == q.head {
		return 0, false
	}
	id := q.slots[q.tail%uint64(len(q.slots))]
	q.tail++
	delete(q.queued, id)
	return id, true
}

func (q *readyQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int(q.head - q.tail)
}

// drain empties the queue and returns its ids in FIFO order.
func (q *readyQueue) drain() []ID {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]ID, 0, q.head-q.tail)
	for q.tail != q.head {
		out = append(out, q.slots[q.tail%uint64(len(q.slots))])
		q.tail++
	}
	clear(q.queued)
	return out
}
