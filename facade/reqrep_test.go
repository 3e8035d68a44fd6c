//go:build unix

package facade_test

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-reqrep/api"
	"github.com/momentics/hioload-reqrep/client"
	"github.com/momentics/hioload-reqrep/facade"
)

var echo = api.HandlerFunc(func(req []byte) []byte { return req })

func quietConfig() *facade.Config {
	cfg := facade.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.PollTimeout = 20 * time.Millisecond
	cfg.PinCPUs = false
	cfg.Verbosity = 0
	return cfg
}

// Test the full lifecycle: start, serve, stop, restart, stop.
func TestReqRepLifecycle(t *testing.T) {
	svc, err := facade.New(echo, quietConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop()

	if svc.Addr() == "" {
		t.Fatal("Addr empty after Start")
	}
	query(t, svc.Addr(), "hello")
	if got := svc.Stats().Handled(); got != 1 {
		t.Errorf("Handled = %d, want 1", got)
	}

	// Start on a started facade is a no-op.
	if err := svc.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("repeated Stop: %v", err)
	}

	// A stopped facade starts again on a fresh port.
	if err := svc.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	query(t, svc.Addr(), "again")
}

func TestReqRepMultipleLoops(t *testing.T) {
	cfg := quietConfig()
	cfg.Listeners = 2
	svc, err := facade.New(echo, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop()

	const clients = 20
	var wg sync.WaitGroup
	errs := make(chan error, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cl, err := client.Dial(svc.Addr(), client.WithTimeout(5*time.Second))
			if err != nil {
				errs <- fmt.Errorf("client %d dial: %w", i, err)
				return
			}
			defer cl.Close()
			msg := []byte(fmt.Sprintf("client-%d", i))
			resp, err := cl.Query(msg)
			if err != nil {
				errs <- fmt.Errorf("client %d query: %w", i, err)
				return
			}
			if !bytes.Equal(resp, msg) {
				errs <- fmt.Errorf("client %d got %q", i, resp)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if got := svc.Stats().Handled(); got != clients {
		t.Errorf("Handled = %d, want %d", got, clients)
	}
}

func TestReqRepNilHandler(t *testing.T) {
	if _, err := facade.New(nil, nil); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("nil handler: err = %v", err)
	}
}

func TestReqRepDefaultsApplied(t *testing.T) {
	cfg := quietConfig()
	cfg.Listeners = 0
	cfg.PollTimeout = 0
	svc, err := facade.New(echo, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Start(); err != nil {
		t.Fatalf("Start with zeroed knobs: %v", err)
	}
	defer svc.Stop()
	query(t, svc.Addr(), "normalized")
}

func query(t *testing.T, addr, msg string) {
	t.Helper()
	cl, err := client.Dial(addr, client.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	defer cl.Close()
	resp, err := cl.Query([]byte(msg))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if string(resp) != msg {
		t.Fatalf("response = %q, want %q", resp, msg)
	}
}
