//go:build unix

// File: reactor/poll_unix.go
// Author: momentics <momentics@gmail.com>
//
// poll(2)-based Poller implementation for Unix-like targets.

package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// pollPoller adapts a Slot list to poll(2). The pollfd array is reused
// across iterations; only its length tracks the submitted set.
type pollPoller struct {
	fds []unix.PollFd
}

// NewPoller constructs the platform Poller.
func NewPoller() (Poller, error) {
	return &pollPoller{}, nil
}

// Poll implements Poller.
func (p *pollPoller) Poll(set []Slot, timeoutMs int) (int, error) {
	if cap(p.fds) < len(set) {
		p.fds = make([]unix.PollFd, len(set))
	}
	fds := p.fds[:len(set)]
	for i := range set {
		var events int16
		if set[i].Interest&Readable != 0 {
			events |= unix.POLLIN
		}
		if set[i].Interest&Writable != 0 {
			events |= unix.POLLOUT
		}
		fds[i] = unix.PollFd{Fd: int32(set[i].FD), Events: events}
		set[i].Ready = 0
	}

	n, err := unix.Poll(fds, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("poll: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	ready := 0
	for i := range fds {
		revents := fds[i].Revents
		if revents == 0 {
			continue
		}
		var r Readiness
		if revents&unix.POLLIN != 0 {
			r |= ReadyRead
		}
		if revents&unix.POLLOUT != 0 {
			r |= ReadyWrite
		}
		// POLLERR, POLLHUP and POLLNVAL are reported unconditionally by
		// the kernel.
		if revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			r |= ReadyErr
		}
		set[i].Ready = r
		ready++
	}
	return ready, nil
}

// Close implements Poller. poll(2) holds no kernel object.
func (p *pollPoller) Close() error {
	p.fds = nil
	return nil
}
