package kernel

import (
	"fmt"

	"hartos/hal"
	"hartos/kernel/hart"
)

// syscall serves the ecall t just trapped with. It returns the task to
// requeue, or nil when the task sleeps or has exited.
func (k *Kernel) syscall(t *Task) *Task {
	c := t.tcb.Context()
	id := c.X(hart.RegA7)
	c.MoveNext()

	switch id {
	case SysSleep:
		ms := c.A(0)
		deadline := hal.NowMillis(k.hal.Clock()) + ms
		c.SetA(0, 0)
		k.state.sleep(t, deadline)
		return nil

	case SysGetTID:
		c.SetA(0, uint64(t.id))
		return t

	case SysAppendTask:
		token := c.A(0)
		f, ok := k.state.take(token)
		if !ok {
			panic(&Fault{TID: t.id, Cause: hart.CauseSyscall, PC: c.PC(),
				Value: fmt.Errorf("append token %d: %w", token, ErrUnknownToken)})
		}
		target := t
		if !t.io && t != k.state.designated {
			if io := k.state.findIO(t); io != nil {
				target = io
			}
		}
		target.Append(f)
		c.SetA(0, uint64(target.id))
		return t

	case SysYield:
		t.SetStatus(StatusBlocking)
		return t

	case SysExit:
		t.tcb.SetExit(int(int64(c.A(0))))
		k.drop(t)
		return nil

	default:
		panic(&Fault{TID: t.id, Cause: hart.CauseSyscall, PC: c.PC(),
			Value: fmt.Errorf("syscall %d: %w", id, ErrUnknownSyscall)})
	}
}
