// Package echo is the mixed workload demo: a compute task hands short
// printing coroutines to the I/O task and then grinds through a Fibonacci
// number with preemption checkpoints.
package echo

import (
	"fmt"
	"sync"

	"hartos/hal"
	"hartos/kernel"
	"hartos/kernel/executor"
)

// Options configures the workload.
type Options struct {
	// Instances is the number of hi/goodbye pairs.
	Instances int
	// Fib is the Fibonacci index computed by the compute coroutine; 0 skips it.
	Fib int
}

// Echo tracks a running workload.
type Echo struct {
	out  hal.Logger
	opts Options
	tid  int

	mu      sync.Mutex
	targets []int
	fib     uint64
	fibDone bool
}

// Start spawns the workload as a compute task and returns it.
func Start(k *kernel.Kernel, out hal.Logger, opts Options) *Echo {
	e := &Echo{out: out, opts: opts}
	e.tid = k.Spawn(executor.Chain(executor.Ready(e.distribute), e.compute()), false)
	return e
}

// TID is the compute task.
func (e *Echo) TID() int { return e.tid }

// Targets lists the task that received each appended coroutine.
func (e *Echo) Targets() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.targets...)
}

// Fib returns the computed value once the compute coroutine has finished.
func (e *Echo) Fib() (uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fib, e.fibDone
}

func (e *Echo) distribute(cx *executor.Context) {
	th := kernel.ThreadOf(cx)
	for i := 0; i < e.opts.Instances; i++ {
		hi := th.Append(e.say(fmt.Sprintf("hi %d", i)))
		bye := th.Append(e.say(fmt.Sprintf("goodbye %d", i)))
		e.mu.Lock()
		e.targets = append(e.targets, hi, bye)
		e.mu.Unlock()
	}
}

func (e *Echo) say(line string) executor.Future {
	return executor.Ready(func(*executor.Context) { e.out.WriteLineString(line) })
}

func (e *Echo) compute() executor.Future {
	return executor.Ready(func(cx *executor.Context) {
		if e.opts.Fib <= 0 {
			return
		}
		v := fib(cx, e.opts.Fib)
		e.mu.Lock()
		e.fib, e.fibDone = v, true
		e.mu.Unlock()
		e.out.WriteLineString(fmt.Sprintf("fib(%d) = %d", e.opts.Fib, v))
	})
}

func fib(cx *executor.Context, n int) uint64 {
	cx.Checkpoint()
	if n <= 1 {
		return uint64(n)
	}
	return fib(cx, n-1) + fib(cx, n-2)
}
