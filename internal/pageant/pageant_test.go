package pageant

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"net"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/ssh/agent"

	bridgeerr "gpgbridge/internal/errors"
	"gpgbridge/internal/frame"
	"gpgbridge/internal/locator"
	"gpgbridge/internal/shm"
	"gpgbridge/internal/window"
	"gpgbridge/internal/window/windowtest"
	"gpgbridge/util"
)

func newRelay(t *testing.T, bus *windowtest.Bus) *Relay {
	t.Helper()
	prefix := "gpgbridge-test-" + strings.ReplaceAll(t.Name(), "/", "_") + "-"
	log := util.NewLogger(0)
	return &Relay{
		Window: "Pageant",
		Class:  "Pageant",
		Namer:  shm.NewNamer(prefix, os.Getpid()),
		Locator: &locator.Locator{
			Bus:    bus,
			Settle: time.Millisecond,
			Logger: log,
		},
		Bus:    bus,
		Logger: log,
	}
}

func TestExecute_Echo(t *testing.T) {
	bus := windowtest.New()
	bus.Register("Pageant", "Pageant")
	bus.Handler = windowtest.Echo()
	r := newRelay(t, bus)

	req := frame.Frame{0, 0, 0, 6, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	resp, err := r.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !bytes.Equal(resp, req) {
		t.Errorf("response = % x, want % x", resp, req)
	}

	env := bus.LastEnvelope()
	if env == nil {
		t.Fatal("no notification sent")
	}
	if env.Magic != window.AgentCopyDataID {
		t.Errorf("magic = %#x", env.Magic)
	}
	if !strings.HasPrefix(env.Name(), "gpgbridge-test-") {
		t.Errorf("map name = %q", env.Name())
	}
}

// TestExecute_ResponseLongerThanRequest verifies the response length is
// taken from the region, not from the request that was written.
func TestExecute_ResponseLongerThanRequest(t *testing.T) {
	bus := windowtest.New()
	bus.Register("Pageant", "Pageant")
	want := frame.New(bytes.Repeat([]byte{7}, 300))
	bus.Handler = windowtest.Respond(func(frame.Frame) frame.Frame { return want })
	r := newRelay(t, bus)

	resp, err := r.Execute(context.Background(), frame.New([]byte{11}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !bytes.Equal(resp, want) {
		t.Errorf("got %d bytes, want %d", len(resp), len(want))
	}
}

func TestExecute_ResponseOverflow(t *testing.T) {
	bus := windowtest.New()
	bus.Register("Pageant", "Pageant")
	bus.Handler = func(_ window.Handle, env *window.Envelope) error {
		ch, err := shm.Open(env.Name())
		if err != nil {
			return err
		}
		defer ch.Close()
		binary.BigEndian.PutUint32(ch.Bytes(), shm.Capacity)
		return nil
	}
	r := newRelay(t, bus)

	_, err := r.Execute(context.Background(), frame.New([]byte{11}))
	if !errors.Is(err, bridgeerr.ErrResponseOverflow) {
		t.Errorf("err = %v, want ErrResponseOverflow", err)
	}
}

func TestExecute_RequestTooLarge(t *testing.T) {
	bus := windowtest.New()
	bus.Register("Pageant", "Pageant")
	r := newRelay(t, bus)

	_, err := r.Execute(context.Background(), frame.New(make([]byte, shm.Capacity)))
	if !errors.Is(err, bridgeerr.ErrRequestTooLarge) {
		t.Errorf("err = %v, want ErrRequestTooLarge", err)
	}
	if bus.Sends() != 0 {
		t.Errorf("sends = %d, want 0", bus.Sends())
	}
}

func TestExecute_TargetNotFound(t *testing.T) {
	bus := windowtest.New()
	r := newRelay(t, bus)

	_, err := r.Execute(context.Background(), frame.New([]byte{11}))
	if !errors.Is(err, bridgeerr.ErrTargetNotFound) {
		t.Errorf("err = %v, want ErrTargetNotFound", err)
	}
}

func TestExecute_NotifyRejected(t *testing.T) {
	bus := windowtest.New()
	bus.Register("Pageant", "Pageant")
	bus.Handler = func(window.Handle, *window.Envelope) error { return errors.New("access denied") }
	r := newRelay(t, bus)

	_, err := r.Execute(context.Background(), frame.New([]byte{11}))
	if !errors.Is(err, bridgeerr.ErrNotifyRejected) {
		t.Errorf("err = %v, want ErrNotifyRejected", err)
	}
}

// TestExecute_RegionReleased verifies each transaction uses a fresh region
// that is gone once Execute returns.
func TestExecute_RegionReleased(t *testing.T) {
	bus := windowtest.New()
	bus.Register("Pageant", "Pageant")
	bus.Handler = windowtest.Echo()
	r := newRelay(t, bus)

	var names []string
	for i := 0; i < 3; i++ {
		if _, err := r.Execute(context.Background(), frame.New([]byte{11})); err != nil {
			t.Fatalf("Execute #%d: %v", i, err)
		}
		names = append(names, bus.LastEnvelope().Name())
	}
	if names[0] == names[1] || names[1] == names[2] {
		t.Errorf("region names reused: %v", names)
	}
	if runtime.GOOS == "windows" {
		return // opening a missing mapping creates it there
	}
	for _, n := range names {
		if ch, err := shm.Open(n); err == nil {
			ch.Close()
			t.Errorf("region %q still exists", n)
		}
	}
}

// keyringAgent answers requests with an in-memory ssh-agent keyring.
func keyringAgent(t *testing.T, kr agent.Agent) windowtest.Handler {
	return windowtest.Respond(func(req frame.Frame) frame.Frame {
		client, server := net.Pipe()
		defer client.Close()
		go agent.ServeAgent(kr, server) //nolint:errcheck

		if err := frame.Write(client, req); err != nil {
			t.Errorf("write to agent: %v", err)
			return frame.AgentFailure
		}
		resp, err := frame.Read(client)
		if err != nil {
			t.Errorf("read from agent: %v", err)
			return frame.AgentFailure
		}
		return resp
	})
}

func TestExecute_Keyring(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	kr := agent.NewKeyring()
	if err := kr.Add(agent.AddedKey{PrivateKey: priv, Comment: "test"}); err != nil {
		t.Fatal(err)
	}

	bus := windowtest.New()
	bus.Register("Pageant", "Pageant")
	bus.Handler = keyringAgent(t, kr)
	r := newRelay(t, bus)

	// SSH_AGENTC_REQUEST_IDENTITIES
	resp, err := r.Execute(context.Background(), frame.New([]byte{11}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	payload := resp.Payload()
	if len(payload) < 5 || payload[0] != 12 {
		t.Fatalf("unexpected reply % x", payload)
	}
	if n := binary.BigEndian.Uint32(payload[1:5]); n != 1 {
		t.Errorf("identities = %d, want 1", n)
	}
}
