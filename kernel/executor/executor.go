// Package executor runs cooperative coroutines on top of a kernel thread.
//
// Coroutines are Futures polled from a bounded FIFO ready queue. A coroutine
// that suspends is polled again only after its Waker fires. Every completed
// poll bumps a tick counter that the scheduler reads to tell whether the
// thread made progress during its slice.
package executor

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the default bound of the ready queue.
const DefaultCapacity = 300

// ErrQueueFull is raised when a spawn or wake finds the ready queue full.
var ErrQueueFull = errors.New("executor: ready queue full")

// ID identifies a coroutine. IDs are unique for the life of the process.
type ID uint64

var lastID atomic.Uint64

func nextID() ID { return ID(lastID.Add(1)) }

type coroutine struct {
	id ID
	f  Future
	// io is set once a poll has suspended: the coroutine waits on wakeups.
	io bool
}

// Executor owns a set of coroutines and the ready queue that schedules them.
type Executor struct {
	mu       sync.Mutex
	capacity int
	tasks    map[ID]*coroutine
	wakers   map[ID]*Waker
	queue    *readyQueue
	current  ID

	ticks       atomic.Uint64
	suspensions atomic.Uint64
}

// New returns an empty executor whose ready queue holds capacity ids.
// capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Executor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Executor{
		capacity: capacity,
		tasks:    make(map[ID]*coroutine),
		wakers:   make(map[ID]*Waker),
		queue:    newReadyQueue(capacity),
	}
}

// Spawn adds f as a new coroutine and queues it for its first poll.
// It panics with ErrQueueFull when the ready queue is full.
func (e *Executor) Spawn(f Future) ID {
	id := nextID()
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.queue.push(id) {
		panic(fmt.Errorf("spawn coroutine %d: %w", id, ErrQueueFull))
	}
	e.tasks[id] = &coroutine{id: id, f: f}
	return id
}

// RunReady polls queued coroutines until the ready queue is empty. After
// every poll it opens an interrupt window on host.
func (e *Executor) RunReady(host Host) {
	for {
		id, ok := e.queue.pop()
		if !ok {
			return
		}
		e.mu.Lock()
		co, ok := e.tasks[id]
		if !ok {
			e.mu.Unlock()
			continue
		}
		w, ok := e.wakers[id]
		if !ok {
			w = newWaker(id, e.queue)
			e.wakers[id] = w
		}
		e.current = id
		e.mu.Unlock()

		st := co.f.Poll(&Context{waker: w, host: host})

		e.mu.Lock()
		e.current = 0
		if st == Done {
			delete(e.tasks, id)
			delete(e.wakers, id)
		} else {
			co.io = true
			e.suspensions.Add(1)
		}
		e.mu.Unlock()
		e.ticks.Add(1)

		if host != nil {
			host.Preempt()
		}
	}
}

// Run drives the executor until every coroutine has completed, yielding the
// thread whenever nothing is ready.
func (e *Executor) Run(host Host) {
	for {
		e.RunReady(host)
		if e.Len() == 0 {
			return
		}
		if host != nil {
			host.Yield()
		}
	}
}

// Steal moves every queued coroutine, except the one being polled, into a new
// executor and returns it. Wakers of moved coroutines follow them. It returns
// nil when the ready queue holds at most one id, when the coroutine being
// polled has suspended before (it is I/O-bound), or when nothing can be moved.
func (e *Executor) Steal() *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue.len() <= 1 {
		return nil
	}
	if cur, ok := e.tasks[e.current]; ok && cur.io {
		return nil
	}
	ids := e.queue.drain()
	var keep, move []ID
	for _, id := range ids {
		if _, live := e.tasks[id]; !live {
			continue
		}
		if id == e.current {
			keep = append(keep, id)
			continue
		}
		move = append(move, id)
	}
	for _, id := range keep {
		e.queue.push(id)
	}
	if len(move) == 0 {
		return nil
	}

	n := New(e.capacity)
	for _, id := range move {
		n.tasks[id] = e.tasks[id]
		delete(e.tasks, id)
		if w, ok := e.wakers[id]; ok {
			w.q.Store(n.queue)
			n.wakers[id] = w
			delete(e.wakers, id)
		}
		n.queue.push(id)
	}
	return n
}

// Ticks returns the number of completed polls.
func (e *Executor) Ticks() uint64 { return e.ticks.Load() }

// Suspensions returns the number of polls that ended Suspended.
func (e *Executor) Suspensions() uint64 { return e.suspensions.Load() }

// Len returns the number of live coroutines.
func (e *Executor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

// Queued returns the number of ids in the ready queue, stale ones included.
func (e *Executor) Queued() int { return e.queue.len() }

// Current returns the coroutine being polled, or 0.
func (e *Executor) Current() ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}
