package kernel

import (
	"log/slog"
	"sync"

	"hartos/hal"
)

// IRQHandler serves one claimed interrupt line.
type IRQHandler func(line uint32)

// IRQRouter claims lines from the interrupt controller and routes them.
type IRQRouter struct {
	ctl hal.IRQController
	log *slog.Logger

	mu       sync.Mutex
	handlers map[uint32]IRQHandler
	counts   map[uint32]uint64
}

// NewIRQRouter returns a router over ctl.
func NewIRQRouter(ctl hal.IRQController, log *slog.Logger) *IRQRouter {
	return &IRQRouter{
		ctl:      ctl,
		log:      log,
		handlers: make(map[uint32]IRQHandler),
		counts:   make(map[uint32]uint64),
	}
}

// Register binds h to line. A nil handler marks the line as known but ignored.
func (r *IRQRouter) Register(line uint32, h IRQHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		h = func(uint32) {}
	}
	r.handlers[line] = h
}

// Pending reports whether the controller has a deliverable line.
func (r *IRQRouter) Pending() bool {
	return r.ctl != nil && r.ctl.Pending()
}

// Handle claims and serves every pending line, completing each one. Unknown
// lines are logged and completed. It returns the number of lines served.
func (r *IRQRouter) Handle() int {
	if r.ctl == nil {
		return 0
	}
	n := 0
	for {
		line, ok := r.ctl.Claim()
		if !ok {
			return n
		}
		n++
		r.mu.Lock()
		h, known := r.handlers[line]
		r.counts[line]++
		r.mu.Unlock()
		if known {
			h(line)
		} else {
			r.log.Warn("unhandled interrupt", "line", line)
		}
		r.ctl.Complete(line)
	}
}

// Count returns how many times line was claimed.
func (r *IRQRouter) Count(line uint32) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[line]
}
