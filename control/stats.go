// control/stats.go
// Author: momentics <momentics@gmail.com>
//
// Runtime counters for one event loop. The loop thread is the only writer;
// observers read from other goroutines, so every field is atomic. A nil
// *Stats is a valid no-op receiver, which keeps the hot path free of
// nil-checks at the call sites.

package control

import (
	"encoding/json"
	"sync/atomic"
)

// Stats accumulates event-loop and per-connection counters.
type Stats struct {
	accepted   atomic.Int64
	acceptErrs atomic.Int64
	active     atomic.Int64
	handled    atomic.Int64
	bytesIn    atomic.Int64
	bytesOut   atomic.Int64
	peerCloses atomic.Int64
	violations atomic.Int64
	ioErrors   atomic.Int64
	pollCycles atomic.Int64
}

// NewStats creates a zeroed collector.
func NewStats() *Stats {
	return &Stats{}
}

// ConnAccepted records one accepted connection.
func (s *Stats) ConnAccepted() {
	if s == nil {
		return
	}
	s.accepted.Add(1)
	s.active.Add(1)
}

// ConnClosed records one closed connection.
func (s *Stats) ConnClosed() {
	if s == nil {
		return
	}
	s.active.Add(-1)
}

// AcceptFailed records one failed accept attempt.
func (s *Stats) AcceptFailed() {
	if s == nil {
		return
	}
	s.acceptErrs.Add(1)
}

// RequestHandled records one request/response exchange.
func (s *Stats) RequestHandled() {
	if s == nil {
		return
	}
	s.handled.Add(1)
}

// AddBytesIn records n bytes read off a socket.
func (s *Stats) AddBytesIn(n int) {
	if s == nil {
		return
	}
	s.bytesIn.Add(int64(n))
}

// AddBytesOut records n bytes written to a socket.
func (s *Stats) AddBytesOut(n int) {
	if s == nil {
		return
	}
	s.bytesOut.Add(int64(n))
}

// PeerClosed records an orderly remote close.
func (s *Stats) PeerClosed() {
	if s == nil {
		return
	}
	s.peerCloses.Add(1)
}

// ProtocolViolated records a framing violation that killed a connection.
func (s *Stats) ProtocolViolated() {
	if s == nil {
		return
	}
	s.violations.Add(1)
}

// IOFailed records a fatal per-connection read or write error.
func (s *Stats) IOFailed() {
	if s == nil {
		return
	}
	s.ioErrors.Add(1)
}

// PollCycle records one completed event-loop iteration.
func (s *Stats) PollCycle() {
	if s == nil {
		return
	}
	s.pollCycles.Add(1)
}

// Active returns the number of currently registered connections.
func (s *Stats) Active() int64 {
	if s == nil {
		return 0
	}
	return s.active.Load()
}

// Handled returns the lifetime request count.
func (s *Stats) Handled() int64 {
	if s == nil {
		return 0
	}
	return s.handled.Load()
}

// StatsSnapshot is a point-in-time copy of all counters.
type StatsSnapshot struct {
	Accepted           int64 `json:"accepted"`
	AcceptErrors       int64 `json:"accept_errors"`
	Active             int64 `json:"active"`
	Handled            int64 `json:"handled"`
	BytesIn            int64 `json:"bytes_in"`
	BytesOut           int64 `json:"bytes_out"`
	PeerCloses         int64 `json:"peer_closes"`
	ProtocolViolations int64 `json:"protocol_violations"`
	IOErrors           int64 `json:"io_errors"`
	PollCycles         int64 `json:"poll_cycles"`
}

// Snapshot returns a copy of all current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	return StatsSnapshot{
		Accepted:           s.accepted.Load(),
		AcceptErrors:       s.acceptErrs.Load(),
		Active:             s.active.Load(),
		Handled:            s.handled.Load(),
		BytesIn:            s.bytesIn.Load(),
		BytesOut:           s.bytesOut.Load(),
		PeerCloses:         s.peerCloses.Load(),
		ProtocolViolations: s.violations.Load(),
		IOErrors:           s.ioErrors.Load(),
		PollCycles:         s.pollCycles.Load(),
	}
}

// JSON returns the snapshot as an indented JSON string.
func (s *Stats) JSON() string {
	data, _ := json.MarshalIndent(s.Snapshot(), "", "  ")
	return string(data)
}
