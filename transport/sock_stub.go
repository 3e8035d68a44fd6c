//go:build !unix

// File: transport/sock_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stubs for platforms without poll-mode socket support.

package transport

import "github.com/momentics/hioload-reqrep/api"

func Read(fd int, p []byte) (int, error)  { return 0, api.ErrNotSupported }
func Write(fd int, p []byte) (int, error) { return 0, api.ErrNotSupported }

func Accept(lnfd int) (int, string, error) { return -1, "", api.ErrNotSupported }

func CloseFD(fd int) error { return api.ErrNotSupported }

func listenFD(cfg ListenConfig) (*Listener, error) { return nil, api.ErrNotSupported }
