package kernel

import (
	"hartos/kernel/executor"
	"hartos/kernel/hart"
)

// Task couples one kernel thread with one coroutine executor.
type Task struct {
	id     int
	tcb    *TCB
	exec   *executor.Executor
	thread *Thread

	// io is the scheduler's current classification.
	io    bool
	level int

	// baseline is the executor tick count when the current slice was armed.
	baseline uint64
	// transient is set while the task sits in the transient slot.
	transient bool

	stats TaskStats
}

func (t *Task) ID() int                      { return t.id }
func (t *Task) IO() bool                     { return t.io }
func (t *Task) Level() int                   { return t.level }
func (t *Task) Status() Status               { return t.tcb.Status() }
func (t *Task) SetStatus(s Status)           { t.tcb.SetStatus(s) }
func (t *Task) Executor() *executor.Executor { return t.exec }

// Ticks returns the number of completed polls in the task's executor.
func (t *Task) Ticks() uint64 { return t.exec.Ticks() }

// Run resumes the task's thread on h until its next trap.
func (t *Task) Run(h *hart.Hart) hart.Trap {
	return h.Execute(t.tcb.Context())
}

// Append installs f into the task's executor.
func (t *Task) Append(f executor.Future) executor.ID {
	return t.exec.Spawn(f)
}

// Steal splits the task's queued coroutines into a new I/O-classified task.
// It returns nil when the executor has nothing to give.
func (t *Task) Steal(k *Kernel) *Task {
	n := t.exec.Steal()
	if n == nil {
		return nil
	}
	return k.newTask(n, true)
}

// promote classifies the task as I/O-bound and moves it to level 0.
func (t *Task) promote() {
	if !t.io || t.level != 0 {
		t.stats.Promotions++
	}
	t.io = true
	t.level = 0
}

// demote classifies the task as compute-bound and moves it one level down,
// bounded by the last level.
func (t *Task) demote(levels int) {
	t.stats.Demotions++
	t.io = false
	if t.level < levels-1 {
		t.level++
	}
}

func (t *Task) snapshot() TaskStats {
	s := t.stats
	s.TID = t.id
	s.IO = t.io
	s.Level = t.level
	s.Status = t.tcb.Status()
	s.Polls = t.exec.Ticks()
	s.Suspensions = t.exec.Suspensions()
	s.Coroutines = t.exec.Len()
	if code, ok := t.tcb.ExitCode(); ok {
		s.ExitCode = code
		s.Exited = true
	}
	return s
}
