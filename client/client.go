// File: client/client.go
// Package client implements a blocking, framing-aware client for the
// length-prefixed request/response protocol.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/momentics/hioload-reqrep/api"
	"github.com/momentics/hioload-reqrep/pool"
	"github.com/momentics/hioload-reqrep/protocol"
)

// frameScratch recycles encode buffers; every frame fits its capacity,
// so building a request never allocates after warm-up.
var frameScratch = pool.NewSyncPool(func() []byte {
	return make([]byte, 0, protocol.MaxFrameBytes)
})

// Client is a blocking protocol connection. Query exchanges one request
// for one response; the Send/Recv split pipelines several requests over
// the same connection. Not safe for concurrent use.
type Client struct {
	conn    net.Conn
	timeout time.Duration
}

// Option customizes a Client before it connects.
type Option func(*Client)

// WithTimeout bounds the dial and every subsequent Send and Recv.
// Zero (the default) means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Dial connects to a server at addr ("host:port").
func Dial(addr string, opts ...Option) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	var (
		conn net.Conn
		err  error
	)
	if c.timeout > 0 {
		conn, err = net.DialTimeout("tcp", addr, c.timeout)
	} else {
		conn, err = net.Dial("tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c.conn = conn
	return c, nil
}

// Query sends one request and waits for its response.
func (c *Client) Query(req []byte) ([]byte, error) {
	if err := c.Send(req); err != nil {
		return nil, err
	}
	return c.Recv()
}

// Send writes one framed request. Responses arrive in request order via
// Recv, so several Sends may be issued back to back.
func (c *Client) Send(req []byte) error {
	buf := frameScratch.Get()
	defer frameScratch.Put(buf[:0])

	frame, err := protocol.AppendFrame(buf[:0], req)
	if err != nil {
		return err
	}
	if c.timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Recv reads one framed response.
func (c *Client) Recv() ([]byte, error) {
	if c.timeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	}

	var hdr [protocol.HeaderLen]byte
	if _, err := io.ReadFull(c.conn, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("recv header: %w", api.ErrPeerClosed)
		}
		return nil, fmt.Errorf("recv header: %w", err)
	}

	declared := binary.LittleEndian.Uint32(hdr[:])
	if declared > protocol.MaxMsgBytes {
		return nil, fmt.Errorf("%w: declared reply length %d > %d",
			api.ErrProtocolViolation, declared, protocol.MaxMsgBytes)
	}

	payload := make([]byte, declared)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return nil, fmt.Errorf("recv body: %w", err)
	}
	return payload, nil
}

// Close tears the connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}
