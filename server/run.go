// File: server/run.go
// Package server implements the loop body: pending drain, readiness poll,
// dispatch, accept and teardown.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/momentics/hioload-reqrep/affinity"
	"github.com/momentics/hioload-reqrep/api"
	"github.com/momentics/hioload-reqrep/internal/conn"
	"github.com/momentics/hioload-reqrep/reactor"
	"github.com/momentics/hioload-reqrep/transport"
)

// Run executes the event loop on the calling goroutine until Close, then
// returns api.ErrServerClosed. The poller is the only place the loop
// blocks; everything else advances exactly as far as the sockets allow.
func (s *Server) Run() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	if s.pinnedCPU >= 0 {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := affinity.SetAffinity(s.pinnedCPU); err != nil {
			s.sink.Event(fmt.Sprintf("cpu pin %d: %v", s.pinnedCPU, err))
		}
	}

	for {
		if s.stop.Load() {
			s.teardown()
			return api.ErrServerClosed
		}

		s.drainPending()
		s.buildSlots()

		timeout := s.pollTimeoutMs
		if s.pending.Length() > 0 {
			// Buffered requests are waiting; peek at the sockets without
			// sleeping and come straight back.
			timeout = 0
		}

		n, err := s.poller.Poll(s.slots, timeout)
		s.stats.PollCycle()
		if err != nil {
			s.teardown()
			return fmt.Errorf("poll: %w", err)
		}
		if n > 0 {
			if err := s.dispatch(); err != nil {
				s.teardown()
				return err
			}
		}
		s.pendingLen.Store(int64(s.pending.Length()))
	}
}

// drainPending drives every connection parked with a complete buffered
// request. Such connections advance without any socket readiness, so
// poll alone would leave them stalled. Only entries present at entry are
// drained; re-parked connections wait for the next cycle.
func (s *Server) drainPending() {
	for n := s.pending.Length(); n > 0; n-- {
		c := s.pending.Remove().(*conn.Conn)
		if cur, ok := s.conns[c.FD()]; !ok || cur != c {
			continue
		}
		if !c.PendingInput() {
			continue
		}
		c.Drive(s.handler, s.sink, s.stats)
		s.afterDrive(c)
	}
}

// buildSlots rebuilds the interest set from scratch: slot zero is the
// listener, every live connection follows with the interest its state
// implies.
func (s *Server) buildSlots() {
	s.slots = s.slots[:0]
	s.slots = append(s.slots, reactor.Slot{FD: s.lnfd, Interest: reactor.Readable})
	for fd, c := range s.conns {
		interest := reactor.Readable
		if c.State() == conn.StateWriting {
			interest = reactor.Writable
		}
		s.slots = append(s.slots, reactor.Slot{FD: fd, Interest: interest})
	}
}

// dispatch drives every ready connection, then serves the accept queue.
func (s *Server) dispatch() error {
	for i := 1; i < len(s.slots); i++ {
		sl := s.slots[i]
		if sl.Ready == 0 {
			continue
		}
		c, ok := s.conns[sl.FD]
		if !ok {
			continue
		}
		c.Drive(s.handler, s.sink, s.stats)
		s.afterDrive(c)
	}

	if s.slots[0].Ready&reactor.ReadyErr != 0 {
		return fmt.Errorf("%w: poll reported error state", ErrListenerFailed)
	}
	if s.slots[0].Ready&reactor.ReadyRead != 0 {
		s.acceptLoop()
	}
	return nil
}

// afterDrive reaps a dead connection or re-parks one that already holds
// its next complete request.
func (s *Server) afterDrive(c *conn.Conn) {
	if c.State() == conn.StateTerminated {
		s.reap(c)
		return
	}
	if c.PendingInput() {
		s.pending.Add(c)
	}
}

// reap closes, deregisters and recycles one connection.
func (s *Server) reap(c *conn.Conn) {
	if fd := c.FD(); fd >= 0 {
		delete(s.conns, fd)
	}
	_ = c.Close()
	s.stats.ConnClosed()
	s.free.Put(c)
}

// acceptLoop drains the accept queue completely. Every failure is
// isolated: the event is reported and the server keeps serving.
func (s *Server) acceptLoop() {
	for {
		nfd, remote, err := transport.Accept(s.lnfd)
		if errors.Is(err, api.ErrWouldBlock) {
			return
		}
		if err != nil {
			s.sink.Event(fmt.Sprintf("accept() error: %v", err))
			s.stats.AcceptFailed()
			return
		}
		if s.maxConns > 0 && len(s.conns) >= s.maxConns {
			s.sink.Event(fmt.Sprintf("accept: at limit %d, dropping %s", s.maxConns, remote))
			_ = transport.CloseFD(nfd)
			continue
		}
		c := s.free.Get()
		c.Open(nfd, remote)
		s.conns[nfd] = c
		s.stats.ConnAccepted()
	}
}

// teardown closes every connection and the poller. The listener stays
// open; its owner created it and its owner closes it.
func (s *Server) teardown() {
	for fd, c := range s.conns {
		delete(s.conns, fd)
		_ = c.Close()
		s.stats.ConnClosed()
	}
	for s.pending.Length() > 0 {
		s.pending.Remove()
	}
	s.pendingLen.Store(0)
	_ = s.poller.Close()
}
