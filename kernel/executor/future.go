package executor

// State is the outcome of one poll.
type State uint8

const (
	// Suspended means the coroutine is waiting; it runs again once its waker fires.
	Suspended State = iota
	// Done means the coroutine completed and will not be polled again.
	Done
)

func (s State) String() string {
	if s == Done {
		return "done"
	}
	return "suspended"
}

// Future is a resumable computation.
//
// Poll must not block. A future that returns Suspended arranges for
// cx.Waker().Wake() to be called when it can make progress.
type Future interface {
	Poll(cx *Context) State
}

// FutureFunc adapts a function to a Future.
type FutureFunc func(cx *Context) State

func (f FutureFunc) Poll(cx *Context) State { return f(cx) }

// Host is the thread that drives an executor.
type Host interface {
	// Preempt is an interrupt window on the driving thread.
	Preempt()
	// Yield gives up the rest of the thread's time slice.
	Yield()
}

// Context is handed to every poll.
type Context struct {
	waker *Waker
	host  Host
}

// Waker returns the waker of the coroutine being polled.
func (cx *Context) Waker() *Waker { return cx.waker }

// Host returns the thread driving the poll.
func (cx *Context) Host() Host { return cx.host }

// Checkpoint lets a long-running poll be preempted. Compute-bound
// coroutines call it between units of work.
func (cx *Context) Checkpoint() {
	if cx.host != nil {
		cx.host.Preempt()
	}
}

// YieldNow returns a future that suspends once, waking itself, then completes.
func YieldNow() Future {
	yielded := false
	return FutureFunc(func(cx *Context) State {
		if yielded {
			return Done
		}
		yielded = true
		cx.Waker().Wake()
		return Suspended
	})
}

// Ready returns a future that runs fn and completes on the first poll.
func Ready(fn func(cx *Context)) Future {
	return FutureFunc(func(cx *Context) State {
		fn(cx)
		return Done
	})
}

// Chain runs futures one after another as a single coroutine.
func Chain(fs ...Future) Future {
	i := 0
	return FutureFunc(func(cx *Context) State {
		for i < len(fs) {
			if fs[i].Poll(cx) == Suspended {
				return Suspended
			}
			i++
		}
		return Done
	})
}
