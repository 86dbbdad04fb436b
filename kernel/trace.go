package kernel

import "hartos/kernel/hart"

// TraceEvent describes one dispatch of a task.
type TraceEvent struct {
	Seq   uint64
	TID   int
	Level int
	IO    bool
	// Transient is set when the task came from the transient slot.
	Transient bool
	Cause     hart.Cause
	// Syscall is the id in a7 for CauseSyscall traps.
	Syscall uint64
	// Start and End are clock ticks around the resume.
	Start uint64
	End   uint64
	// Polls is the number of coroutine polls completed during the dispatch.
	Polls uint64
}

// Duration returns the ticks spent in the task.
func (e TraceEvent) Duration() uint64 { return e.End - e.Start }

// TaskStats is a snapshot of a task's scheduling history.
type TaskStats struct {
	TID    int
	IO     bool
	Level  int
	Status Status

	Dispatches uint64
	TimerTraps uint64
	IRQTraps   uint64
	Syscalls   uint64
	Demotions  uint64
	Promotions uint64
	Steals     uint64

	Polls       uint64
	Suspensions uint64
	Coroutines  int

	Exited   bool
	ExitCode int
}
