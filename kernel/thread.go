package kernel

import (
	"time"

	"hartos/kernel/executor"
	"hartos/kernel/hart"
)

// Syscall ids, passed in a7.
const (
	SysSleep      = 101
	SysGetTID     = 102
	SysAppendTask = 103
	SysYield      = 104
	SysExit       = 105
)

// Thread is the privileged code of a task as seen from inside it. It drives
// the task's executor and is the executor's Host.
type Thread struct {
	ctx   *hart.Context
	exec  *executor.Executor
	state *State
}

// ThreadOf returns the thread polling cx, or nil when cx is not driven by a
// kernel thread.
func ThreadOf(cx *executor.Context) *Thread {
	th, _ := cx.Host().(*Thread)
	return th
}

// Preempt opens an interrupt window.
func (t *Thread) Preempt() { t.ctx.Preempt() }

func (t *Thread) syscall(id, a0, a1, a2 uint64) uint64 {
	c := t.ctx
	c.PushOff()
	c.SetX(hart.RegA7, id)
	c.SetA(0, a0)
	c.SetA(1, a1)
	c.SetA(2, a2)
	c.Ecall()
	r := c.A(0)
	c.PopOn()
	return r
}

// Sleep blocks the whole thread for at least d.
func (t *Thread) Sleep(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.syscall(SysSleep, uint64(d.Milliseconds()), 0, 0)
}

// TID returns the id of the task running this thread.
func (t *Thread) TID() int {
	return int(t.syscall(SysGetTID, 0, 0, 0))
}

// Append hands f to the kernel, which installs it in this task or, for a
// compute-bound task, in the designated I/O task. It returns the id of the
// task that received it.
func (t *Thread) Append(f executor.Future) int {
	t.ctx.PushOff()
	token := t.state.stage(f)
	tid := t.syscall(SysAppendTask, token, 0, 0)
	t.ctx.PopOn()
	return int(tid)
}

// Yield surrenders the rest of the slice.
func (t *Thread) Yield() {
	t.syscall(SysYield, 0, 0, 0)
}

// Exit ends the task. It does not return.
func (t *Thread) Exit(code int) {
	t.syscall(SysExit, uint64(code), 0, 0)
	panic("kernel: thread resumed after exit")
}

// Spawn adds f to this thread's own executor without a syscall.
func (t *Thread) Spawn(f executor.Future) executor.ID {
	return t.exec.Spawn(f)
}
