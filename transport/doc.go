// Package transport
// Author: momentics <momentics@gmail.com>
//
// Raw non-blocking socket operations and listener setup for hioload-reqrep.
//
// The package owns every syscall the server performs against a socket:
// creating and binding the listening descriptor, accepting clients, and the
// single-shot non-blocking reads and writes issued by the I/O driver.
// Errno handling is normalized here so the layers above never inspect
// platform error values: EAGAIN and EWOULDBLOCK surface as
// api.ErrWouldBlock, EINTR is retried internally, everything else passes
// through wrapped.
//
// Only Unix-like targets are supported; constructors on other platforms
// return api.ErrNotSupported.
package transport
