// File: transport/listener.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Listening socket construction. The event loop itself never binds or
// listens; it is handed the ready descriptor produced here.

package transport

import (
	"net"
	"os"
)

// ListenConfig holds configuration for the listening socket.
type ListenConfig struct {
	Addr      string // TCP address to bind, e.g. ":1234" or "127.0.0.1:1234"
	Backlog   int    // accept queue length; 0 means SOMAXCONN
	ReusePort bool   // share the port across processes via SO_REUSEPORT
}

// Listener wraps a bound, listening, non-blocking TCP descriptor.
type Listener struct {
	fd   int
	addr string

	// Set only on the ReusePort path, where the descriptor is a dup of a
	// net.Listener created through go-reuseport. Both must stay alive for
	// the fd to remain valid and both are released by Close.
	ln   net.Listener
	file *os.File
}

// Listen creates the listening socket described by cfg.
func Listen(cfg ListenConfig) (*Listener, error) {
	return listenFD(cfg)
}

// FD returns the raw listening descriptor for registration with the
// event loop.
func (l *Listener) FD() int { return l.fd }

// Addr returns the bound address string.
func (l *Listener) Addr() string { return l.addr }

// Close releases the listening socket.
func (l *Listener) Close() error {
	var err error
	if l.file != nil {
		err = l.file.Close()
		if cerr := l.ln.Close(); err == nil {
			err = cerr
		}
		l.file, l.ln = nil, nil
		l.fd = -1
		return err
	}
	if l.fd >= 0 {
		err = CloseFD(l.fd)
		l.fd = -1
	}
	return err
}
