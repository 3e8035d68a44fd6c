//go:build unix

// File: transport/sock_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared Unix socket plumbing. Family-specific socket creation and accept
// live in sock_linux.go / sock_other.go.

package transport

import (
	"fmt"
	"net"
	"strconv"

	"github.com/libp2p/go-reuseport"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-reqrep/api"
)

// Read performs a single non-blocking read into p.
// Returns api.ErrWouldBlock when no data is available, n == 0 with a nil
// error on peer EOF, and retries EINTR internally.
func Read(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, api.ErrWouldBlock
		}
		return 0, fmt.Errorf("read fd %d: %w", fd, err)
	}
}

// Write performs a single non-blocking write of p. Partial writes return
// the count written with a nil error; the caller advances its cursor and
// waits for the next write-readiness.
func Write(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Write(fd, p)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, api.ErrWouldBlock
		}
		return 0, fmt.Errorf("write fd %d: %w", fd, err)
	}
}

// Accept takes one pending connection off the listening descriptor. The
// returned descriptor is non-blocking with TCP_NODELAY applied best-effort.
// api.ErrWouldBlock reports an empty accept queue; ECONNABORTED (peer gone
// before accept) is retried.
func Accept(lnfd int) (int, string, error) {
	for {
		nfd, sa, err := sysAccept(lnfd)
		if err == nil {
			_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
			return nfd, sockaddrString(sa), nil
		}
		if err == unix.EINTR || err == unix.ECONNABORTED {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return -1, "", api.ErrWouldBlock
		}
		return -1, "", fmt.Errorf("accept fd %d: %w", lnfd, err)
	}
}

// CloseFD closes a raw descriptor.
func CloseFD(fd int) error {
	return unix.Close(fd)
}

func listenFD(cfg ListenConfig) (*Listener, error) {
	if cfg.ReusePort {
		return listenReusePort(cfg)
	}
	backlog := cfg.Backlog
	if backlog <= 0 {
		backlog = unix.SOMAXCONN
	}
	sa, family, err := resolveSockaddr(cfg.Addr)
	if err != nil {
		return nil, err
	}
	fd, err := sysSocket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %q: %w", cfg.Addr, err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen %q: %w", cfg.Addr, err)
	}
	// Report the kernel-assigned address so ":0" binds stay usable.
	addr := cfg.Addr
	if bound, err := unix.Getsockname(fd); err == nil {
		addr = sockaddrString(bound)
	}
	return &Listener{fd: fd, addr: addr}, nil
}

// listenReusePort builds the listener through go-reuseport and extracts a
// raw descriptor from it, so several server processes can share one port
// with kernel-side accept balancing.
func listenReusePort(cfg ListenConfig) (*Listener, error) {
	ln, err := reuseport.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("reuseport listen %q: %w", cfg.Addr, err)
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return nil, fmt.Errorf("reuseport listen %q: %w: unexpected listener type %T", cfg.Addr, api.ErrInvalidArgument, ln)
	}
	f, err := tcpLn.File()
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("listener dup: %w", err)
	}
	fd := int(f.Fd())
	// File() hands back a blocking duplicate.
	if err := unix.SetNonblock(fd, true); err != nil {
		f.Close()
		ln.Close()
		return nil, fmt.Errorf("set nonblock: %w", err)
	}
	return &Listener{fd: fd, addr: ln.Addr().String(), ln: ln, file: f}, nil
}

func resolveSockaddr(addr string) (unix.Sockaddr, int, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve %q: %w", addr, err)
	}
	if ip4 := tcpAddr.IP.To4(); ip4 != nil || tcpAddr.IP == nil {
		sa := &unix.SockaddrInet4{Port: tcpAddr.Port}
		if ip4 != nil {
			copy(sa.Addr[:], ip4)
		}
		return sa, unix.AF_INET, nil
	}
	sa := &unix.SockaddrInet6{Port: tcpAddr.Port}
	copy(sa.Addr[:], tcpAddr.IP.To16())
	return sa, unix.AF_INET6, nil
}

func sockaddrString(sa unix.Sockaddr) string {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(v.Addr[:]).String(), strconv.Itoa(v.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(v.Addr[:]).String(), strconv.Itoa(v.Port))
	default:
		return "?"
	}
}
