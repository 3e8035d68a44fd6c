//go:build unix

package conn_test

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-reqrep/fake"
	"github.com/momentics/hioload-reqrep/internal/conn"
)

func TestStateString(t *testing.T) {
	cases := map[conn.State]string{
		conn.StateReading:    "reading",
		conn.StateWriting:    "writing",
		conn.StateTerminated: "terminated",
		conn.State(9):        "state(9)",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", st, got, want)
		}
	}
}

func TestNewConnAccessors(t *testing.T) {
	a, _ := socketPair(t)
	c := conn.New(a, "10.0.0.1:5555")
	if c.FD() != a {
		t.Errorf("FD() = %d, want %d", c.FD(), a)
	}
	if c.Remote() != "10.0.0.1:5555" {
		t.Errorf("Remote() = %q", c.Remote())
	}
	if c.State() != conn.StateReading {
		t.Errorf("State() = %v, want reading", c.State())
	}
	if c.PendingInput() {
		t.Errorf("fresh connection reports pending input")
	}
}

func TestCloseReleasesDescriptor(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	defer unix.Close(fds[1])

	c := conn.New(fds[0], "peer")
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if c.State() != conn.StateTerminated {
		t.Errorf("State after Close = %v", c.State())
	}
	if c.FD() != -1 {
		t.Errorf("FD after Close = %d, want -1", c.FD())
	}
	// Descriptor must really be gone.
	if _, err := unix.FcntlInt(uintptr(fds[0]), unix.F_GETFD, 0); err == nil {
		t.Errorf("descriptor still open after Close")
	}
	// Second Close is a no-op.
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

// TestResetScrubs checks that pool reuse cannot leak bytes from a previous
// connection into the next one's frame decoding.
func TestResetScrubs(t *testing.T) {
	a, b := socketPair(t)
	c := conn.New(a, "first")

	// Park a partial header in the read buffer.
	mustWrite(t, b, []byte{0x05, 0x00})
	c.Drive(&fake.Handler{}, &fake.Recorder{}, nil)
	if c.State() != conn.StateReading {
		t.Fatalf("state after partial read = %v", c.State())
	}

	c.Reset()
	if c.FD() != -1 || c.Remote() != "" || c.PendingInput() {
		t.Fatalf("Reset left state behind: fd=%d remote=%q", c.FD(), c.Remote())
	}

	// Re-arm on a fresh pair; the stale partial header must not corrupt
	// the next request.
	a2, b2 := socketPair(t)
	c.Open(a2, "second")
	mustWrite(t, b2, frame(t, []byte("clean")))

	h := &fake.Handler{}
	c.Drive(h, &fake.Recorder{}, nil)
	reqs := h.Requests()
	if len(reqs) != 1 || string(reqs[0]) != "clean" {
		t.Fatalf("requests after reuse = %q", reqs)
	}
	wr := &wireReader{fd: b2}
	if got := wr.next(t); string(got) != "clean" {
		t.Fatalf("reply after reuse = %q", got)
	}
}
