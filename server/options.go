// File: server/options.go
// Package server defines functional options for the event loop.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"time"

	"github.com/momentics/hioload-reqrep/api"
	"github.com/momentics/hioload-reqrep/control"
	"github.com/momentics/hioload-reqrep/reactor"
)

const defaultPollTimeoutMs = 1000

// Option customizes server initialization.
type Option func(*Server)

// WithPoller replaces the platform poller, mainly for tests.
func WithPoller(p reactor.Poller) Option {
	return func(s *Server) {
		s.poller = p
	}
}

// WithSink routes per-connection diagnostics to sink.
func WithSink(sink api.Sink) Option {
	return func(s *Server) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithPollTimeout bounds how long one poll cycle may sleep while idle.
// This is the latency ceiling for observing Close; protocol progress
// never depends on it. Default one second.
func WithPollTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.pollTimeoutMs = int(d / time.Millisecond)
	}
}

// WithMaxConns caps concurrently served connections; excess accepts are
// closed immediately. Zero means unlimited.
func WithMaxConns(n int) Option {
	return func(s *Server) {
		s.maxConns = n
	}
}

// WithStats replaces the internal counter collector, letting several
// loops (for example one per reuseport listener) share one collector.
func WithStats(st *control.Stats) Option {
	return func(s *Server) {
		if st != nil {
			s.stats = st
		}
	}
}

// WithMiddleware attaches middleware in FIFO order.
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw...)
	}
}

// WithPinnedCPU pins the loop's OS thread to one logical CPU for the
// lifetime of Run. Pinning failures are reported to the sink and the
// loop runs unpinned. Negative (the default) disables pinning.
func WithPinnedCPU(cpu int) Option {
	return func(s *Server) {
		s.pinnedCPU = cpu
	}
}
