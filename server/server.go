// File: server/server.go
// Package server runs the poll-mode event loop over a listening socket.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-reqrep/api"
	"github.com/momentics/hioload-reqrep/control"
	"github.com/momentics/hioload-reqrep/internal/conn"
	"github.com/momentics/hioload-reqrep/pool"
	"github.com/momentics/hioload-reqrep/reactor"
)

var (
	ErrAlreadyRunning = errors.New("server already running")
	ErrListenerFailed = errors.New("listener descriptor failed")
)

// Server multiplexes every connection of one listening socket over a
// single readiness-polling loop. All connection state lives on the loop
// goroutine; the only cross-thread surfaces are Close and the stats and
// probe read paths.
type Server struct {
	lnfd    int
	handler api.Handler

	poller reactor.Poller
	sink   api.Sink
	stats  *control.Stats
	probes *control.Probes

	pollTimeoutMs int
	maxConns      int
	pinnedCPU     int
	middleware    []Middleware

	conns   map[int]*conn.Conn
	pending *queue.Queue
	free    *pool.FreeList[*conn.Conn]
	slots   []reactor.Slot

	pendingLen atomic.Int64
	running    atomic.Bool
	stop       atomic.Bool
}

// New builds a Server around an already listening, non-blocking
// descriptor, typically transport.Listen().FD(). The descriptor stays
// owned by the caller and is not closed on teardown.
func New(lnfd int, h api.Handler, opts ...Option) (*Server, error) {
	if lnfd < 0 {
		return nil, fmt.Errorf("%w: listener fd %d", api.ErrInvalidArgument, lnfd)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: nil handler", api.ErrInvalidArgument)
	}

	s := &Server{
		lnfd:          lnfd,
		handler:       h,
		sink:          api.NopSink{},
		stats:         control.NewStats(),
		probes:        control.NewProbes(),
		pollTimeoutMs: defaultPollTimeoutMs,
		pinnedCPU:     -1,
		conns:         make(map[int]*conn.Conn),
		pending:       queue.New(),
	}
	s.free = pool.NewFreeList(func() *conn.Conn { return conn.New(-1, "") })

	for _, opt := range opts {
		opt(s)
	}
	if s.pollTimeoutMs <= 0 {
		return nil, fmt.Errorf("%w: poll timeout must be positive", api.ErrInvalidArgument)
	}
	s.handler = NewHandlerChain(s.handler, s.middleware...)
	if s.poller == nil {
		p, err := reactor.NewPoller()
		if err != nil {
			return nil, err
		}
		s.poller = p
	}

	s.probes.Register("connections", func() any { return s.stats.Active() })
	s.probes.Register("handled", func() any { return s.stats.Handled() })
	s.probes.Register("pending", func() any { return s.pendingLen.Load() })
	return s, nil
}

// Stats returns the server's counter collector.
func (s *Server) Stats() *control.Stats { return s.stats }

// Probes returns the debug probe registry.
func (s *Server) Probes() *control.Probes { return s.probes }

// Close requests an abrupt stop. The loop observes the flag within one
// poll timeout, closes every connection and the poller, and Run returns
// api.ErrServerClosed. Close never blocks and is safe to call from any
// goroutine, any number of times.
func (s *Server) Close() error {
	s.stop.Store(true)
	return nil
}
