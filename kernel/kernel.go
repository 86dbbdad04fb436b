// Package kernel is the two-level scheduler: a preemptive multi-level
// feedback queue of tasks, each task a kernel thread running a cooperative
// coroutine executor, plus the syscall and interrupt paths that connect them.
package kernel

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"hartos/hal"
	"hartos/internal/klog"
	"hartos/kernel/executor"
	"hartos/kernel/hart"
	"hartos/kernel/netdev"
)

// Option configures a Kernel.
type Option func(*Kernel)

// WithLogger sets the kernel logger.
func WithLogger(l *slog.Logger) Option {
	return func(k *Kernel) { k.log = l }
}

// WithTrace installs a hook called after every dispatch.
func WithTrace(fn func(TraceEvent)) Option {
	return func(k *Kernel) { k.trace = fn }
}

// Kernel schedules tasks on one hart.
type Kernel struct {
	hal   hal.HAL
	cfg   Config
	hart  *hart.Hart
	state *State
	irq   *IRQRouter
	net   *netdev.Device
	log   *slog.Logger
	trace func(TraceEvent)

	mu       sync.Mutex
	tasks    map[int]*Task
	finished map[int]TaskStats
	retired  []int
	seq      uint64

	panicOnce sync.Once
	closed    bool
}

// New builds a kernel over h. Zero fields of cfg take their defaults.
func New(h hal.HAL, cfg Config, opts ...Option) (*Kernel, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	k := &Kernel{
		hal:   h,
		cfg:   cfg,
		hart:  hart.New(h.Clock(), h.IRQ()),
		state: NewState(cfg.Levels),
		tasks:    make(map[int]*Task),
		finished: make(map[int]TaskStats),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.log == nil {
		k.log = klog.Discard()
	}
	k.irq = NewIRQRouter(h.IRQ(), k.log)
	if nic := h.Network(); nic != nil {
		k.net = netdev.New(nic, cfg.NetRing)
		k.irq.Register(cfg.NetIRQ, func(uint32) { k.net.HandleInterrupt() })
	}
	if cfg.BootIOTask {
		k.state.designated = k.spawnBoot()
	}
	return k, nil
}

// Config returns the effective configuration.
func (k *Kernel) Config() Config { return k.cfg }

// State exposes the scheduler state.
func (k *Kernel) State() *State { return k.state }

// IRQ returns the interrupt router, for binding extra lines.
func (k *Kernel) IRQ() *IRQRouter { return k.irq }

// Net returns the network device, or nil when the HAL has no NIC.
func (k *Kernel) Net() *netdev.Device { return k.net }

// Hart returns the hart tasks run on.
func (k *Kernel) Hart() *hart.Hart { return k.hart }

// Spawn creates a task running f and queues it. io is the initial
// classification hint: I/O tasks start at level 0, compute tasks below it.
func (k *Kernel) Spawn(f executor.Future, io bool) int {
	exec := executor.New(k.cfg.QueueCapacity)
	exec.Spawn(f)
	t := k.newTask(exec, io)
	k.state.push(t)
	return t.id
}

// finishedHistory bounds the number of finished tasks Stats still reports.
const finishedHistory = 256

// Stats returns a snapshot of task tid. The last finishedHistory finished
// tasks are still reported.
func (k *Kernel) Stats(tid int) (TaskStats, bool) {
	k.mu.Lock()
	t, ok := k.tasks[tid]
	if !ok {
		st, done := k.finished[tid]
		k.mu.Unlock()
		return st, done
	}
	k.mu.Unlock()
	return t.snapshot(), true
}

// Tasks returns snapshots of every live task and of the retained finished
// ones, ordered by tid.
func (k *Kernel) Tasks() []TaskStats {
	k.mu.Lock()
	live := make([]*Task, 0, len(k.tasks))
	for _, t := range k.tasks {
		live = append(live, t)
	}
	out := make([]TaskStats, 0, len(k.tasks)+len(k.finished))
	for _, st := range k.finished {
		out = append(out, st)
	}
	k.mu.Unlock()

	for _, t := range live {
		out = append(out, t.snapshot())
	}
	slices.SortFunc(out, func(a, b TaskStats) int { return cmp.Compare(a.TID, b.TID) })
	return out
}

// newTask wraps exec in a fresh thread whose entry runs the executor to
// completion and then exits.
func (k *Kernel) newTask(exec *executor.Executor, io bool) *Task {
	tcb := NewTCB(k.hal.Heap(), k.cfg.StackSize)
	th := &Thread{exec: exec, state: k.state}
	tcb.Init(func(*hart.Context) {
		th.exec.Run(th)
		th.Exit(0)
	})
	th.ctx = tcb.Context()

	t := &Task{
		id:     k.state.newTID(),
		tcb:    tcb,
		exec:   exec,
		thread: th,
		io:     io,
	}
	if !io {
		t.level = k.cfg.computeLevel()
	}
	k.mu.Lock()
	k.tasks[t.id] = t
	k.mu.Unlock()
	k.log.Debug("task created", "tid", t.id, "io", io, "level", t.level)
	return t
}

// spawnBoot starts the boot I/O task. Its only coroutine reschedules itself
// inside the executor forever, so the task spins until its slice expires.
func (k *Kernel) spawnBoot() *Task {
	exec := executor.New(k.cfg.QueueCapacity)
	exec.Spawn(executor.FutureFunc(func(cx *executor.Context) executor.State {
		cx.Waker().Wake()
		return executor.Suspended
	}))
	t := k.newTask(exec, true)
	k.state.push(t)
	return t
}

// drop releases a task that will never run again and keeps only its final
// stats.
func (k *Kernel) drop(t *Task) {
	t.tcb.Release()
	st := t.snapshot()

	k.mu.Lock()
	delete(k.tasks, t.id)
	k.finished[t.id] = st
	k.retired = append(k.retired, t.id)
	if n := len(k.retired) - finishedHistory; n > 0 {
		for _, tid := range k.retired[:n] {
			delete(k.finished, tid)
		}
		k.retired = append(k.retired[:0], k.retired[n:]...)
	}
	k.mu.Unlock()

	k.log.Debug("task dropped", "tid", t.id)
}

// Close releases every task that has not finished, queued or not.
func (k *Kernel) Close() {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return
	}
	k.closed = true
	live := make([]*Task, 0, len(k.tasks))
	for _, t := range k.tasks {
		live = append(live, t)
	}
	k.mu.Unlock()

	k.state.drain()
	for _, t := range live {
		if t.Status() != StatusFinished {
			k.drop(t)
		}
	}
}

func (k *Kernel) String() string {
	return fmt.Sprintf("kernel(levels=%d, queues=%v, sleeping=%d)",
		k.state.Levels(), k.state.QueueLens(), k.state.Sleeping())
}
