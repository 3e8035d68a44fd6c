//go:build unix && !linux

// File: transport/sock_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable Unix fallback without SOCK_NONBLOCK/accept4.

package transport

import "golang.org/x/sys/unix"

func sysSocket(family, sotype, proto int) (int, error) {
	fd, err := unix.Socket(family, sotype, proto)
	if err != nil {
		return -1, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, err
	}
	unix.CloseOnExec(fd)
	return fd, nil
}

func sysAccept(lnfd int) (int, unix.Sockaddr, error) {
	nfd, sa, err := unix.Accept(lnfd)
	if err != nil {
		return -1, nil, err
	}
	if err := unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd)
		return -1, nil, err
	}
	unix.CloseOnExec(nfd)
	return nfd, sa, nil
}
