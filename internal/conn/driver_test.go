//go:build unix

package conn_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-reqrep/api"
	"github.com/momentics/hioload-reqrep/control"
	"github.com/momentics/hioload-reqrep/fake"
	"github.com/momentics/hioload-reqrep/internal/conn"
	"github.com/momentics/hioload-reqrep/protocol"
	"github.com/momentics/hioload-reqrep/transport"
)

// socketPair returns both ends of a non-blocking AF_UNIX stream pair.
func socketPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			t.Fatalf("set nonblock: %v", err)
		}
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func frame(t *testing.T, payload []byte) []byte {
	t.Helper()
	f, err := protocol.EncodeFrame(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return f
}

func mustWrite(t *testing.T, fd int, p []byte) {
	t.Helper()
	n, err := unix.Write(fd, p)
	if err != nil || n != len(p) {
		t.Fatalf("write %d bytes: n=%d err=%v", len(p), n, err)
	}
}

// wireReader accumulates peer-side bytes and decodes reply frames.
type wireReader struct {
	fd  int
	buf []byte
}

func (w *wireReader) next(t *testing.T) []byte {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		payload, consumed, err := protocol.TryDecodeFrame(w.buf)
		if err != nil {
			t.Fatalf("decode reply: %v", err)
		}
		if consumed > 0 {
			out := append([]byte(nil), payload...)
			w.buf = append(w.buf[:0], w.buf[consumed:]...)
			return out
		}
		tmp := make([]byte, 512)
		n, err := unix.Read(w.fd, tmp)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			if time.Now().After(deadline) {
				t.Fatal("reply never arrived")
			}
			time.Sleep(time.Millisecond)
			continue
		}
		if err != nil {
			t.Fatalf("read reply: %v", err)
		}
		if n == 0 {
			t.Fatal("peer closed before reply completed")
		}
		w.buf = append(w.buf, tmp[:n]...)
	}
}

func TestDriveIdleWouldBlock(t *testing.T) {
	a, _ := socketPair(t)
	c := conn.New(a, "peer")
	rec := &fake.Recorder{}

	c.Drive(&fake.Handler{}, rec, nil)

	if c.State() != conn.StateReading {
		t.Fatalf("state = %v, want reading", c.State())
	}
	if rec.Len() != 0 {
		t.Fatalf("idle drive produced events: %v", rec.Events())
	}
}

func TestDriveEchoRoundTrip(t *testing.T) {
	a, b := socketPair(t)
	c := conn.New(a, "peer")
	h := &fake.Handler{}
	rec := &fake.Recorder{}
	st := control.NewStats()

	req := frame(t, []byte("hello"))
	mustWrite(t, b, req)

	c.Drive(h, rec, st)

	if c.State() != conn.StateReading {
		t.Fatalf("state = %v, want reading after full flush", c.State())
	}
	if h.Count() != 1 || string(h.Requests()[0]) != "hello" {
		t.Fatalf("handler saw %q", h.Requests())
	}
	wr := &wireReader{fd: b}
	if got := wr.next(t); string(got) != "hello" {
		t.Fatalf("reply = %q, want hello", got)
	}

	snap := st.Snapshot()
	if snap.Handled != 1 {
		t.Errorf("Handled = %d, want 1", snap.Handled)
	}
	if snap.BytesIn != int64(len(req)) {
		t.Errorf("BytesIn = %d, want %d", snap.BytesIn, len(req))
	}
	if snap.BytesOut != int64(len(req)) {
		t.Errorf("BytesOut = %d, want %d", snap.BytesOut, len(req))
	}
	if c.PendingInput() {
		t.Errorf("no pipelined data, but PendingInput is true")
	}
}

func TestDriveZeroLengthPayload(t *testing.T) {
	a, b := socketPair(t)
	c := conn.New(a, "peer")
	h := &fake.Handler{}

	mustWrite(t, b, frame(t, nil))
	c.Drive(h, &fake.Recorder{}, nil)

	if h.Count() != 1 || len(h.Requests()[0]) != 0 {
		t.Fatalf("handler saw %q", h.Requests())
	}
	wr := &wireReader{fd: b}
	if got := wr.next(t); len(got) != 0 {
		t.Fatalf("reply = %q, want empty", got)
	}
}

func TestDrivePipelinedOnePerDrive(t *testing.T) {
	a, b := socketPair(t)
	c := conn.New(a, "peer")
	h := &fake.Handler{}
	rec := &fake.Recorder{}

	// Both requests arrive in one segment.
	mustWrite(t, b, append(frame(t, []byte("hello1")), frame(t, []byte("hello2"))...))

	c.Drive(h, rec, nil)
	if h.Count() != 1 {
		t.Fatalf("first drive handled %d requests, want 1", h.Count())
	}
	if !c.PendingInput() {
		t.Fatalf("second request buffered but PendingInput is false")
	}

	c.Drive(h, rec, nil)
	if h.Count() != 2 {
		t.Fatalf("second drive handled %d requests total, want 2", h.Count())
	}
	if c.PendingInput() {
		t.Fatalf("all requests consumed but PendingInput is true")
	}

	reqs := h.Requests()
	if string(reqs[0]) != "hello1" || string(reqs[1]) != "hello2" {
		t.Fatalf("request order = %q", reqs)
	}
	wr := &wireReader{fd: b}
	if got := wr.next(t); string(got) != "hello1" {
		t.Fatalf("first reply = %q", got)
	}
	if got := wr.next(t); string(got) != "hello2" {
		t.Fatalf("second reply = %q", got)
	}
}

func TestDriveEOFCleanClose(t *testing.T) {
	a, b := socketPair(t)
	c := conn.New(a, "peer")
	rec := &fake.Recorder{}
	st := control.NewStats()

	unix.Close(b)
	c.Drive(&fake.Handler{}, rec, st)

	if c.State() != conn.StateTerminated {
		t.Fatalf("state = %v, want terminated", c.State())
	}
	if !rec.Contains("EOF") || rec.Contains("unexpected EOF") {
		t.Fatalf("events = %v", rec.Events())
	}
	if st.Snapshot().PeerCloses != 1 {
		t.Fatalf("PeerCloses = %d, want 1", st.Snapshot().PeerCloses)
	}
}

func TestDriveEOFMidFrame(t *testing.T) {
	a, b := socketPair(t)
	c := conn.New(a, "peer")
	rec := &fake.Recorder{}
	st := control.NewStats()

	// Header promises more than the peer ever sends.
	mustWrite(t, b, frame(t, []byte("hello"))[:6])
	unix.Close(b)

	c.Drive(&fake.Handler{}, rec, st)

	if c.State() != conn.StateTerminated {
		t.Fatalf("state = %v, want terminated", c.State())
	}
	if !rec.Contains("unexpected EOF") {
		t.Fatalf("events = %v", rec.Events())
	}
	if st.Snapshot().PeerCloses != 1 {
		t.Fatalf("PeerCloses = %d, want 1", st.Snapshot().PeerCloses)
	}
}

// A request followed immediately by shutdown still gets its response; the
// re-reported EOF then closes the connection.
func TestDriveEOFAfterCompleteFrame(t *testing.T) {
	a, b := socketPair(t)
	c := conn.New(a, "peer")
	h := &fake.Handler{}
	rec := &fake.Recorder{}
	st := control.NewStats()

	mustWrite(t, b, frame(t, []byte("bye")))
	if err := unix.Shutdown(b, unix.SHUT_WR); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	c.Drive(h, rec, st)
	if c.State() != conn.StateReading {
		t.Fatalf("state after answered request = %v, want reading", c.State())
	}
	wr := &wireReader{fd: b}
	if got := wr.next(t); string(got) != "bye" {
		t.Fatalf("reply = %q, want bye", got)
	}

	c.Drive(h, rec, st)
	if c.State() != conn.StateTerminated {
		t.Fatalf("state after EOF = %v, want terminated", c.State())
	}
	if !rec.Contains("EOF") || rec.Contains("unexpected EOF") {
		t.Fatalf("events = %v", rec.Events())
	}
	if snap := st.Snapshot(); snap.Handled != 1 || snap.PeerCloses != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestDriveOversizedDeclaration(t *testing.T) {
	a, b := socketPair(t)
	c := conn.New(a, "peer")
	h := &fake.Handler{}
	rec := &fake.Recorder{}
	st := control.NewStats()

	var hdr [protocol.HeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[:], 5000)
	mustWrite(t, b, hdr[:])

	c.Drive(h, rec, st)

	if c.State() != conn.StateTerminated {
		t.Fatalf("state = %v, want terminated", c.State())
	}
	if h.Count() != 0 {
		t.Fatalf("handler ran on a violating frame")
	}
	if !rec.Contains("message too long") {
		t.Fatalf("events = %v", rec.Events())
	}
	if st.Snapshot().ProtocolViolations != 1 {
		t.Fatalf("ProtocolViolations = %d, want 1", st.Snapshot().ProtocolViolations)
	}
	// No partial response may leak out.
	tmp := make([]byte, 16)
	if _, err := unix.Read(b, tmp); err != unix.EAGAIN && err != unix.EWOULDBLOCK {
		t.Fatalf("peer read: %v, want EAGAIN", err)
	}
}

func TestDriveResponseTooLong(t *testing.T) {
	a, b := socketPair(t)
	c := conn.New(a, "peer")
	h := &fake.Handler{Fn: func([]byte) []byte {
		return make([]byte, protocol.MaxMsgBytes+1)
	}}
	rec := &fake.Recorder{}
	st := control.NewStats()

	mustWrite(t, b, frame(t, []byte("hi")))
	c.Drive(h, rec, st)

	if c.State() != conn.StateTerminated {
		t.Fatalf("state = %v, want terminated", c.State())
	}
	if !rec.Contains("response too long") {
		t.Fatalf("events = %v", rec.Events())
	}
	if st.Snapshot().ProtocolViolations != 1 {
		t.Fatalf("ProtocolViolations = %d, want 1", st.Snapshot().ProtocolViolations)
	}
	tmp := make([]byte, 16)
	if _, err := unix.Read(b, tmp); err != unix.EAGAIN && err != unix.EWOULDBLOCK {
		t.Fatalf("peer read: %v, want EAGAIN", err)
	}
}

func TestDriveReadErrorTerminates(t *testing.T) {
	a, _ := socketPair(t)
	c := conn.New(a, "peer")
	rec := &fake.Recorder{}
	st := control.NewStats()

	// Closing the descriptor out from under the driver forces EBADF.
	unix.Close(a)
	c.Drive(&fake.Handler{}, rec, st)

	if c.State() != conn.StateTerminated {
		t.Fatalf("state = %v, want terminated", c.State())
	}
	if !rec.Contains("read() error") {
		t.Fatalf("events = %v", rec.Events())
	}
	if st.Snapshot().IOErrors != 1 {
		t.Fatalf("IOErrors = %d, want 1", st.Snapshot().IOErrors)
	}
}

func TestDriveWriteErrorTerminates(t *testing.T) {
	a, b := socketPair(t)
	c := conn.New(a, "peer")
	rec := &fake.Recorder{}
	st := control.NewStats()

	// Request lands, then the peer vanishes before the response flush.
	mustWrite(t, b, frame(t, []byte("hi")))
	unix.Close(b)

	c.Drive(&fake.Handler{}, rec, st)

	if c.State() != conn.StateTerminated {
		t.Fatalf("state = %v, want terminated", c.State())
	}
	if !rec.Contains("write() error") {
		t.Fatalf("events = %v", rec.Events())
	}
	if snap := st.Snapshot(); snap.Handled != 1 || snap.IOErrors != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

// TestDrivePartialWriteResumes forces response backpressure and checks the
// flush cursor never loses or reorders bytes.
func TestDrivePartialWriteResumes(t *testing.T) {
	a, b := socketPair(t)
	c := conn.New(a, "peer")
	h := &fake.Handler{}
	rec := &fake.Recorder{}
	st := control.NewStats()

	// Fill the a->b direction until the kernel pushes back.
	junk := bytes.Repeat([]byte{'j'}, 4096)
	junkTotal := 0
	for {
		n, err := transport.Write(a, junk)
		if errors.Is(err, api.ErrWouldBlock) {
			break
		}
		if err != nil {
			t.Fatalf("junk write: %v", err)
		}
		junkTotal += n
		if junkTotal > 1<<24 {
			t.Fatal("kernel never applied backpressure")
		}
	}

	payload := bytes.Repeat([]byte{'p'}, protocol.MaxMsgBytes)
	want := frame(t, payload)
	mustWrite(t, b, want)

	c.Drive(h, rec, st)
	if c.State() != conn.StateWriting {
		t.Fatalf("state = %v, want writing under backpressure", c.State())
	}
	if h.Count() != 1 {
		t.Fatalf("handler ran %d times, want 1", h.Count())
	}

	// Drain the peer side while re-driving until the flush completes.
	var got []byte
	deadline := time.Now().Add(5 * time.Second)
	for c.State() == conn.StateWriting {
		if time.Now().After(deadline) {
			t.Fatal("flush never completed")
		}
		tmp := make([]byte, 1<<16)
		n, err := unix.Read(b, tmp)
		if err == nil && n > 0 {
			got = append(got, tmp[:n]...)
		} else if err != nil && err != unix.EAGAIN && err != unix.EWOULDBLOCK && err != unix.EINTR {
			t.Fatalf("drain read: %v", err)
		}
		c.Drive(h, rec, st)
	}
	if c.State() != conn.StateReading {
		t.Fatalf("state after flush = %v, want reading", c.State())
	}

	// Collect whatever is still queued.
	for {
		tmp := make([]byte, 1<<16)
		n, err := unix.Read(b, tmp)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			break
		}
		if err != nil {
			t.Fatalf("final drain: %v", err)
		}
		if n == 0 {
			break
		}
		got = append(got, tmp[:n]...)
	}

	if len(got) != junkTotal+len(want) {
		t.Fatalf("received %d bytes, want %d", len(got), junkTotal+len(want))
	}
	for i := 0; i < junkTotal; i++ {
		if got[i] != 'j' {
			t.Fatalf("junk prefix corrupted at %d: %q", i, got[i])
		}
	}
	if !bytes.Equal(got[junkTotal:], want) {
		t.Fatalf("response frame corrupted after backpressure")
	}
	if h.Count() != 1 {
		t.Fatalf("handler re-ran during flush: count = %d", h.Count())
	}
}
