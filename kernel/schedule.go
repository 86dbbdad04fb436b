package kernel

import (
	"context"

	"hartos/hal"
	"hartos/kernel/hart"
)

// Step runs one scheduling iteration: dispatch the next task and handle its
// trap, or idle when nothing is runnable. It returns false once every queue
// and the timer queue are empty.
func (k *Kernel) Step() bool {
	k.sweep()
	t, fromTransient := k.state.next()
	if t == nil {
		return k.idle()
	}
	k.dispatch(t, fromTransient)
	return true
}

// Run schedules until the system drains, ctx is cancelled or the kernel
// panics. On drain the HAL is shut down cleanly; on panic the panic handler
// runs, the HAL is shut down with failure and the error wraps ErrKernelPanic.
func (k *Kernel) Run(ctx context.Context) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		info := panicInfo(r)
		k.log.Error("kernel panic", "tid", info.TID, "cause", info.Cause.String(),
			"pc", info.PC, "value", info.Value)
		k.panicOnce.Do(func() { triggerPanic(info) })
		k.Close()
		k.hal.Shutdown(true)
		err = panicError(r)
	}()

	for {
		if err := ctx.Err(); err != nil {
			k.Close()
			return err
		}
		if !k.Step() {
			k.log.Info("no tasks left, shutting down")
			k.hal.Shutdown(false)
			return nil
		}
	}
}

func (k *Kernel) dispatch(t *Task, fromTransient bool) {
	clock := k.hal.Clock()
	if !(fromTransient && t.Status() == StatusRunning) {
		t.SetStatus(StatusRunning)
		k.hart.SetTimer(clock.Now() + k.cfg.slice(t.level))
		t.baseline = t.Ticks()
	}
	t.stats.Dispatches++

	ev := TraceEvent{TID: t.id, Level: t.level, IO: t.io, Transient: fromTransient}
	before := t.Ticks()
	ev.Start = clock.Now()
	tr := t.Run(k.hart)
	ev.End = clock.Now()
	ev.Cause = tr.Cause
	ev.Polls = t.Ticks() - before
	if tr.Cause == hart.CauseSyscall {
		ev.Syscall = t.tcb.Context().X(hart.RegA7)
	}

	k.handleTrap(t, tr)

	if k.trace != nil {
		k.mu.Lock()
		k.seq++
		ev.Seq = k.seq
		k.mu.Unlock()
		k.trace(ev)
	}
}

func (k *Kernel) handleTrap(t *Task, tr hart.Trap) {
	switch tr.Cause {
	case hart.CauseTimer:
		t.stats.TimerTraps++
		k.hart.ClearTimer()
		k.sweep()
		if t.Ticks() == t.baseline {
			if t.io {
				if n := t.Steal(k); n != nil {
					t.stats.Steals++
					k.state.push(n)
					k.log.Debug("coroutines stolen", "from", t.id, "to", n.id, "moved", n.exec.Len())
				}
			}
			t.demote(k.state.Levels())
			if floor := k.cfg.computeLevel(); t.level < floor {
				t.level = floor
			}
		} else {
			t.promote()
		}
		t.SetStatus(StatusBlocking)
		k.state.push(t)

	case hart.CauseExternal:
		t.stats.IRQTraps++
		k.irq.Handle()
		k.state.pushTransient(t)

	case hart.CauseSyscall:
		t.stats.Syscalls++
		if n := k.syscall(t); n != nil {
			if n.Status() == StatusRunning {
				k.state.pushTransient(n)
			} else {
				k.state.push(n)
			}
		}

	case hart.CauseBreakpoint:
		t.tcb.Context().MoveNext()
		t.SetStatus(StatusBlocking)
		k.state.push(t)

	case hart.CausePanic:
		panic(&Fault{TID: t.id, Cause: tr.Cause, PC: tr.PC, Value: tr.Value, Stack: tr.Stack})

	default:
		k.log.Warn("dropping task after unexpected trap", "tid", t.id, "cause", tr.Cause.String(), "pc", tr.PC)
		k.drop(t)
	}
}

// sweep moves expired sleepers back to their level queues.
func (k *Kernel) sweep() {
	now := hal.NowMillis(k.hal.Clock())
	for _, t := range k.state.sweep(now) {
		k.log.Debug("task woken", "tid", t.id, "now_ms", now)
	}
}

// idle waits for the next timer deadline or interrupt. It returns false when
// there is nothing left to wait for.
func (k *Kernel) idle() bool {
	if k.irq.Pending() {
		k.irq.Handle()
	}
	k.sweep()
	if k.state.runnable() {
		return true
	}
	deadline, ok := k.state.nextDeadline()
	if !ok {
		return false
	}
	clock := k.hal.Clock()
	if idler, ok := clock.(hal.Idler); ok && !k.irq.Pending() {
		idler.Idle(hal.TicksForMillis(clock, deadline))
	}
	return true
}
