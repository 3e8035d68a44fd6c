// File: facade/reqrep.go
// Unified facade layer for the hioload-reqrep library.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the ReqRep struct, which aggregates the library's
// components behind a single facade. From one immutable configuration it
// binds the listening sockets, builds one event loop per listener, wires
// shared counters and diagnostics into each loop, and exposes Start/Stop
// lifecycle methods plus accessors for the resolved address and runtime
// statistics.

package facade

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/momentics/hioload-reqrep/api"
	"github.com/momentics/hioload-reqrep/control"
	"github.com/momentics/hioload-reqrep/diag"
	"github.com/momentics/hioload-reqrep/server"
	"github.com/momentics/hioload-reqrep/transport"
)

// Config holds parameters immutable per run.
// All fields influence Start; changing them after New has no effect.
type Config struct {
	ListenAddr  string        // TCP address the listeners bind
	Listeners   int           // Number of event loops, each on its own reuseport listener
	Backlog     int           // Listen backlog, 0 for the transport default
	MaxConns    int           // Per-loop connection cap, 0 for unlimited
	PollTimeout time.Duration // Readiness poll timeout per loop iteration
	PinCPUs     bool          // Whether to pin each loop thread to a logical CPU
	Verbosity   int           // Diagnostic level: 0 quiet, 1 normal, 2 verbose, 3 debug
}

// DefaultConfig returns default configuration values.
// These sane defaults support typical use cases without extensive tuning.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:  ":1234",     // Listen on port 1234
		Listeners:   1,           // One event loop
		Backlog:     0,           // Transport default backlog
		MaxConns:    0,           // Unlimited connections
		PollTimeout: time.Second, // 1-second poll timeout
		PinCPUs:     true,        // Pin loop threads by default
		Verbosity:   1,           // Errors and warnings only
	}
}

// ReqRep is the main facade type. It owns the listening sockets and the
// event loops built over them; all loops share one handler and one
// counter collector.
type ReqRep struct {
	handler api.Handler
	config  *Config

	log   *diag.Logger
	stats *control.Stats

	listeners []*transport.Listener
	servers   []*server.Server
	wg        sync.WaitGroup

	mu      sync.Mutex // Protects started flag and the listener/server slices
	started bool       // Indicates whether Start() has been called
}

// New constructs a ReqRep around the given handler. A nil cfg selects
// DefaultConfig. Sockets are not touched until Start.
func New(h api.Handler, cfg *Config) (*ReqRep, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil handler", api.ErrInvalidArgument)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if c.Listeners < 1 {
		c.Listeners = 1
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = time.Second
	}
	return &ReqRep{
		handler: h,
		config:  &c,
		log:     diag.NewLogger(c.Verbosity),
		stats:   control.NewStats(),
	}, nil
}

// Start binds the configured listeners and launches one event loop per
// listener. Subsequent calls to Start() on a started facade have no
// effect.
func (r *ReqRep) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}

	// Listener zero resolves the address; the rest bind the resolved
	// form so that ":0" lands every loop on the same port.
	addr := r.config.ListenAddr
	reuse := r.config.Listeners > 1
	for i := 0; i < r.config.Listeners; i++ {
		ln, err := transport.Listen(transport.ListenConfig{
			Addr:      addr,
			Backlog:   r.config.Backlog,
			ReusePort: reuse,
		})
		if err != nil {
			r.closeLocked()
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		r.listeners = append(r.listeners, ln)
		addr = ln.Addr()
	}

	for i, ln := range r.listeners {
		opts := []server.Option{
			server.WithSink(diag.NewLogSink(r.log)),
			server.WithStats(r.stats),
			server.WithPollTimeout(r.config.PollTimeout),
			server.WithMaxConns(r.config.MaxConns),
		}
		if r.config.PinCPUs {
			opts = append(opts, server.WithPinnedCPU(i%runtime.NumCPU()))
		}
		srv, err := server.New(ln.FD(), r.handler, opts...)
		if err != nil {
			r.closeLocked()
			return fmt.Errorf("loop %d: %w", i, err)
		}
		r.servers = append(r.servers, srv)
	}

	for _, srv := range r.servers {
		r.wg.Add(1)
		go func(srv *server.Server) {
			defer r.wg.Done()
			if err := srv.Run(); err != nil && !errors.Is(err, api.ErrServerClosed) {
				r.log.Error("event loop exit: %v", err)
			}
		}(srv)
	}
	r.log.Info("serving on %s with %d loop(s)", addr, len(r.servers))
	r.started = true
	return nil
}

// Stop closes every event loop, waits for the loop goroutines to drain,
// and releases the listening sockets. Calling Stop() on a non-started
// facade is a no-op. A stopped facade may be started again.
func (r *ReqRep) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return nil
	}
	for _, srv := range r.servers {
		_ = srv.Close()
	}
	r.wg.Wait()
	r.closeLocked()
	r.started = false
	return nil
}

// closeLocked releases sockets and forgets the per-run state. Callers
// hold r.mu.
func (r *ReqRep) closeLocked() {
	for _, ln := range r.listeners {
		_ = ln.Close()
	}
	r.listeners = nil
	r.servers = nil
}

// Addr returns the resolved address of the first listener, or "" before
// Start.
func (r *ReqRep) Addr() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.listeners) == 0 {
		return ""
	}
	return r.listeners[0].Addr()
}

// Stats returns the counter collector shared by every loop.
func (r *ReqRep) Stats() *control.Stats { return r.stats }

// Active returns the number of currently served connections across all
// loops.
func (r *ReqRep) Active() int64 { return r.stats.Active() }
