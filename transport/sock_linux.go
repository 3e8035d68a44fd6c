//go:build linux

// File: transport/sock_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux fast paths: descriptors arrive non-blocking straight from the
// kernel, no extra fcntl round-trips.

package transport

import "golang.org/x/sys/unix"

func sysSocket(family, sotype, proto int) (int, error) {
	return unix.Socket(family, sotype|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, proto)
}

func sysAccept(lnfd int) (int, unix.Sockaddr, error) {
	return unix.Accept4(lnfd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
}
