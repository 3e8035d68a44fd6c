// File: internal/conn/conn.go
// Package conn holds per-connection state for the poll-mode event loop.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One Conn tracks one accepted descriptor: a read buffer accumulating the
// next request frame, a write buffer flushing the current response, and
// the direction the connection is working in. The loop thread is the sole
// mutator of a live Conn.

package conn

import (
	"fmt"

	"github.com/momentics/hioload-reqrep/protocol"
	"github.com/momentics/hioload-reqrep/transport"
)

// State tracks which direction a connection is working in.
type State uint8

const (
	// StateReading accumulates request bytes until a frame completes.
	StateReading State = iota
	// StateWriting flushes the buffered response.
	StateWriting
	// StateTerminated marks the connection for teardown. A terminated
	// connection is reaped by the loop and never driven again.
	StateTerminated
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateWriting:
		return "writing"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Conn is one client connection multiplexed by the event loop.
//
// Both buffers are sized for exactly one maximum frame, so a full read
// buffer always contains a decodable frame or a violating header. len is
// the filled cursor on each buffer; wsent is the flushed prefix of wbuf.
type Conn struct {
	fd     int
	remote string
	state  State

	rbuf  []byte
	wbuf  []byte
	wsent int
}

// New allocates a connection armed for fd. Pools create idle connections
// with New(-1, "") and arm them later via Open.
func New(fd int, remote string) *Conn {
	c := &Conn{
		rbuf: make([]byte, 0, protocol.MaxFrameBytes),
		wbuf: make([]byte, 0, protocol.MaxFrameBytes),
	}
	c.Open(fd, remote)
	return c
}

// Open arms the connection for a freshly accepted descriptor, clearing
// every cursor. The descriptor must already be non-blocking.
func (c *Conn) Open(fd int, remote string) {
	c.fd = fd
	c.remote = remote
	c.state = StateReading
	c.rbuf = c.rbuf[:0]
	c.wbuf = c.wbuf[:0]
	c.wsent = 0
}

// Reset scrubs the connection for pool reuse, releasing the descriptor if
// it is still held. Implements pool.Resettable.
func (c *Conn) Reset() {
	_ = c.Close()
	c.Open(-1, "")
}

// Close releases the descriptor and terminates the connection. The Conn
// is the descriptor's sole owner. Safe to call twice.
func (c *Conn) Close() error {
	c.state = StateTerminated
	if c.fd < 0 {
		return nil
	}
	fd := c.fd
	c.fd = -1
	return transport.CloseFD(fd)
}

// FD returns the underlying descriptor, -1 after Close.
func (c *Conn) FD() int { return c.fd }

// Remote returns the peer address recorded at accept time.
func (c *Conn) Remote() string { return c.remote }

// State returns the current direction.
func (c *Conn) State() State { return c.state }

// PendingInput reports whether a complete frame is already buffered: the
// connection can make progress without any new socket readiness. The loop
// parks such connections on its pending queue instead of relying on poll,
// which would stay silent while the kernel buffer is empty.
func (c *Conn) PendingInput() bool {
	return c.state == StateReading && protocol.PeekComplete(c.rbuf)
}
