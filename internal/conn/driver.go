// File: internal/conn/driver.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The I/O driver advances one connection as far as its socket allows
// without blocking. Fatal conditions mark the connection terminated and
// report a one-line event to the sink; the loop reaps it afterwards.

package conn

import (
	"errors"
	"fmt"

	"github.com/momentics/hioload-reqrep/api"
	"github.com/momentics/hioload-reqrep/control"
	"github.com/momentics/hioload-reqrep/protocol"
	"github.com/momentics/hioload-reqrep/transport"
)

// Drive runs the connection state machine once. In StateReading it
// decodes and handles at most one request; the response is then flushed
// until done or until the socket would block. Once the state returns to
// StateReading the call ends, leaving any further pipelined request for
// the next invocation, so one connection cannot monopolize the loop.
//
// st may be nil.
func (c *Conn) Drive(h api.Handler, sink api.Sink, st *control.Stats) {
	if c.state == StateReading {
		c.readStep(h, sink, st)
	}
	for c.state == StateWriting {
		if !c.writeStep(sink, st) {
			return
		}
	}
}

// readStep fills the read buffer and processes at most one request.
// Buffered bytes are decoded before the socket is touched, so requests
// parked by the pending queue advance without any readiness event.
func (c *Conn) readStep(h api.Handler, sink api.Sink, st *control.Stats) {
	for {
		payload, consumed, err := protocol.TryDecodeFrame(c.rbuf)
		if err != nil {
			sink.Event(fmt.Sprintf("fd %d: message too long", c.fd))
			st.ProtocolViolated()
			c.state = StateTerminated
			return
		}
		if consumed > 0 {
			c.respond(h, payload, consumed, sink, st)
			return
		}

		n, err := transport.Read(c.fd, c.rbuf[len(c.rbuf):cap(c.rbuf)])
		if errors.Is(err, api.ErrWouldBlock) {
			return
		}
		if err != nil {
			sink.Event(fmt.Sprintf("fd %d: read() error: %v", c.fd, err))
			st.IOFailed()
			c.state = StateTerminated
			return
		}
		if n == 0 {
			// Peer closed. An incomplete frame means it died mid-request;
			// a complete frame cannot be here because of decode-first order.
			if len(c.rbuf) == 0 {
				sink.Event(fmt.Sprintf("fd %d: EOF", c.fd))
			} else {
				sink.Event(fmt.Sprintf("fd %d: unexpected EOF", c.fd))
			}
			st.PeerClosed()
			c.state = StateTerminated
			return
		}
		c.rbuf = c.rbuf[:len(c.rbuf)+n]
		st.AddBytesIn(n)
	}
}

// respond runs the handler on one decoded request and stages the framed
// response for flushing.
func (c *Conn) respond(h api.Handler, req []byte, consumed int, sink api.Sink, st *control.Stats) {
	resp := h.Handle(req)

	// Frame the response before consuming the request: resp may alias
	// req, which lives in the region about to be shifted away.
	wb, err := protocol.AppendFrame(c.wbuf[:0], resp)
	if err != nil {
		sink.Event(fmt.Sprintf("fd %d: response too long: %d bytes", c.fd, len(resp)))
		st.ProtocolViolated()
		c.state = StateTerminated
		return
	}
	c.wbuf = wb
	c.wsent = 0

	rest := copy(c.rbuf, c.rbuf[consumed:])
	c.rbuf = c.rbuf[:rest]

	st.RequestHandled()
	c.state = StateWriting
}

// writeStep pushes buffered response bytes once. Reports false when the
// socket cannot accept more without blocking or the connection died.
func (c *Conn) writeStep(sink api.Sink, st *control.Stats) bool {
	n, err := transport.Write(c.fd, c.wbuf[c.wsent:])
	if errors.Is(err, api.ErrWouldBlock) {
		return false
	}
	if err != nil {
		sink.Event(fmt.Sprintf("fd %d: write() error: %v", c.fd, err))
		st.IOFailed()
		c.state = StateTerminated
		return false
	}
	c.wsent += n
	st.AddBytesOut(n)

	if c.wsent == len(c.wbuf) {
		c.wbuf = c.wbuf[:0]
		c.wsent = 0
		c.state = StateReading
	}
	return true
}
