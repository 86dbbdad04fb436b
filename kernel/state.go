package kernel

import (
	"sync"

	"hartos/kernel/executor"
	"hartos/kernel/timerq"
)

// State is the scheduler's shared state: the MLFQ level queues, the transient
// slot, the timer queue and the APPEND_TASK staging table. Every Kernel owns
// its own State.
type State struct {
	mu sync.Mutex

	queues    [][]*Task
	transient *Task
	cursor    int

	timers timerq.Queue[*Task]

	staging map[uint64]executor.Future
	token   uint64

	lastTID int
	// designated is the task redirected appends go to first.
	designated *Task
}

// NewState returns an empty scheduler state with the given number of levels.
func NewState(levels int) *State {
	if levels < 1 {
		levels = 1
	}
	return &State{
		queues:  make([][]*Task, levels),
		staging: make(map[uint64]executor.Future),
		lastTID: -1,
	}
}

// Levels returns the number of MLFQ levels.
func (s *State) Levels() int { return len(s.queues) }

func (s *State) newTID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTID++
	return s.lastTID
}

// push queues t at the back of its level: level 0 for I/O tasks, the task's
// own level otherwise.
func (s *State) push(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushLocked(t)
}

func (s *State) pushLocked(t *Task) {
	l := 0
	if !t.io {
		l = t.level
	}
	if l >= len(s.queues) {
		l = len(s.queues) - 1
	}
	t.transient = false
	s.queues[l] = append(s.queues[l], t)
}

// pushTransient puts t in the transient slot. A previous occupant goes back
// to its level queue as Blocking.
func (s *State) pushTransient(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old := s.transient; old != nil && old != t {
		old.SetStatus(StatusBlocking)
		s.pushLocked(old)
	}
	t.transient = true
	s.transient = t
}

// next pops the task to run: the transient slot first, then the next non-empty
// level in rotation. fromTransient reports where the task came from.
func (s *State) next() (t *Task, fromTransient bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.transient; t != nil {
		s.transient = nil
		t.transient = false
		return t, true
	}
	n := len(s.queues)
	for i := 0; i < n; i++ {
		l := (s.cursor + i) % n
		q := s.queues[l]
		if len(q) == 0 {
			continue
		}
		t := q[0]
		q[0] = nil
		s.queues[l] = q[1:]
		s.cursor = (l + 1) % n
		return t, false
	}
	return nil, false
}

// runnable reports whether any task is queued or transient.
func (s *State) runnable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transient != nil {
		return true
	}
	for _, q := range s.queues {
		if len(q) > 0 {
			return true
		}
	}
	return false
}

// QueueLens returns the number of tasks waiting at each level.
func (s *State) QueueLens() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.queues))
	for i, q := range s.queues {
		out[i] = len(q)
	}
	return out
}

// sleep blocks t until deadline (milliseconds).
func (s *State) sleep(t *Task, deadline uint64) {
	t.SetStatus(StatusBlocking)
	s.mu.Lock()
	s.timers.Push(deadline, t)
	s.mu.Unlock()
}

// sweep requeues every task whose deadline is <= now and returns them.
func (s *State) sweep(now uint64) []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	woken := s.timers.Sweep(now)
	for _, t := range woken {
		s.pushLocked(t)
	}
	return woken
}

// nextDeadline returns the earliest timer deadline.
func (s *State) nextDeadline() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers.Peek()
}

// Sleeping returns the number of tasks in the timer queue.
func (s *State) Sleeping() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers.Len()
}

// stage parks f under a fresh token for an APPEND_TASK syscall.
func (s *State) stage(f executor.Future) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.staging[s.token] = f
	return s.token
}

// take removes the future staged under token.
func (s *State) take(token uint64) (executor.Future, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.staging[token]
	delete(s.staging, token)
	return f, ok
}

// findIO locates the task that receives redirected appends: the designated
// task when one is alive, otherwise the first I/O-classified task in level
// order, then the transient slot, then the timer queue. exclude is skipped.
// The search does not reorder anything.
func (s *State) findIO(exclude *Task) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := s.designated; d != nil && d != exclude && d.Status() != StatusFinished {
		return d
	}
	match := func(t *Task) bool { return t != exclude && t.io }
	for _, q := range s.queues {
		for _, t := range q {
			if match(t) {
				return t
			}
		}
	}
	if t := s.transient; t != nil && match(t) {
		return t
	}
	if t, ok := s.timers.Find(match); ok {
		return t
	}
	return nil
}

// drain removes and returns every task held by the state.
func (s *State) drain() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*Task
	for i, q := range s.queues {
		all = append(all, q...)
		s.queues[i] = nil
	}
	if s.transient != nil {
		all = append(all, s.transient)
		s.transient = nil
	}
	all = append(all, s.timers.Sweep(^uint64(0))...)
	return all
}
