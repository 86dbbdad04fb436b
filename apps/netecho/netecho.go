// Package netecho sends every received frame straight back out.
package netecho

import (
	"errors"
	"fmt"
	"sync/atomic"

	"hartos/hal"
	"hartos/kernel"
	"hartos/kernel/executor"
	"hartos/kernel/netdev"
)

var ErrNoDevice = errors.New("netecho: kernel has no network device")

// Server is a running echo task.
type Server struct {
	dev   *netdev.Device
	log   hal.Logger
	limit int
	tid   int

	handled atomic.Int64
	failed  atomic.Int64
}

// Start spawns the server as an I/O task. It exits after limit frames, or
// never when limit is 0.
func Start(k *kernel.Kernel, log hal.Logger, limit int) (*Server, error) {
	dev := k.Net()
	if dev == nil {
		return nil, ErrNoDevice
	}
	s := &Server{dev: dev, log: log, limit: limit}
	s.tid = k.Spawn(s.serve(), true)
	return s, nil
}

// TID is the server task.
func (s *Server) TID() int { return s.tid }

// Handled returns the number of frames received and the number that could not be sent back.
func (s *Server) Handled() (frames, failed int) {
	return int(s.handled.Load()), int(s.failed.Load())
}

func (s *Server) serve() executor.Future {
	var frame []byte
	recv := s.dev.RecvFuture(&frame)
	return executor.FutureFunc(func(cx *executor.Context) executor.State {
		for s.limit == 0 || s.handled.Load() < int64(s.limit) {
			if recv.Poll(cx) == executor.Suspended {
				return executor.Suspended
			}
			s.log.WriteLineString(fmt.Sprintf("netecho: received %d bytes", len(frame)))
			if err := s.dev.Send(frame); err != nil {
				s.failed.Add(1)
				s.log.WriteLineString(fmt.Sprintf("netecho: send: %v", err))
			}
			s.handled.Add(1)
		}
		s.log.WriteLineString("netecho: stopped")
		return executor.Done
	})
}
