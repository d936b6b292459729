package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	bridgeerr "gpgbridge/internal/errors"
	"gpgbridge/internal/metrics"
	"gpgbridge/internal/transport"
	"gpgbridge/util"
)

var testNonce = []byte{0xde, 0xad, 0xbe, 0xef, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

func writeAuthFile(t *testing.T, port int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "S.gpg-agent")
	data := append([]byte(fmt.Sprintf("%d\n", port)), testNonce...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newGPGMode(path string, d transport.Dialer, in io.Reader, out io.Writer) *GPGMode {
	m := &GPGMode{
		AuthPath: path,
		Host:     "localhost",
		Dialer:   d,
		Logger:   util.NewLogger(0),
		Metrics:  metrics.New(),
	}
	m.Stdin = in
	m.Stdout = out
	return m
}

// TestGPGMode_NonceFirst verifies a 20-byte auth file "9999\n"+nonce
// makes the bridge dial localhost:9999 and send exactly the nonce first.
func TestGPGMode_NonceFirst(t *testing.T) {
	path := writeAuthFile(t, 9999)
	if fi, err := os.Stat(path); err != nil || fi.Size() != 20 {
		t.Fatalf("auth file size: %v %v", fi, err)
	}

	d := newPipeDialer()
	got := make(chan []byte, 1)
	go func() {
		agent := <-d.agent
		b, _ := io.ReadAll(agent)
		got <- b
	}()

	m := newGPGMode(path, d, bytes.NewReader([]byte("GETINFO pid\n")), io.Discard)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if d.Address() != "localhost:9999" {
		t.Errorf("dialed %q, want localhost:9999", d.Address())
	}
	b := <-got
	if len(b) < len(testNonce) || !bytes.Equal(b[:len(testNonce)], testNonce) {
		t.Fatalf("agent got % x, want nonce first", b)
	}
	if rest := string(b[len(testNonce):]); rest != "GETINFO pid\n" {
		t.Errorf("after nonce: %q", rest)
	}
	if !d.closed {
		t.Error("dialer not closed")
	}
}

// TestGPGMode_TCP runs a full session against a loopback agent that
// checks the nonce, answers and hangs up.
func TestGPGMode_TCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		nonce := make([]byte, len(testNonce))
		if _, err := io.ReadFull(conn, nonce); err != nil || !bytes.Equal(nonce, testNonce) {
			return
		}
		conn.Write([]byte("OK Pleased to meet you\n")) //nolint:errcheck
	}()

	path := writeAuthFile(t, ln.Addr().(*net.TCPAddr).Port)
	stdin := newBlockingReader()
	defer stdin.release()
	out := &bytes.Buffer{}

	m := newGPGMode(path, &transport.TCPDialer{Timeout: 2 * time.Second}, stdin, out)
	m.Host = "127.0.0.1"

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "OK Pleased to meet you\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestGPGMode_MissingAuthFile(t *testing.T) {
	d := newPipeDialer()
	m := newGPGMode(filepath.Join(t.TempDir(), "absent"), d, bytes.NewReader(nil), io.Discard)
	err := m.Run(context.Background())
	if !errors.Is(err, bridgeerr.ErrAuthConfig) {
		t.Errorf("err = %v, want ErrAuthConfig", err)
	}
	if d.Address() != "" {
		t.Errorf("dialed %q despite bad auth file", d.Address())
	}
}

func TestGPGMode_ConnectFailed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	m := newGPGMode(writeAuthFile(t, port), &transport.TCPDialer{Timeout: time.Second}, bytes.NewReader(nil), io.Discard)
	m.Host = "127.0.0.1"
	err = m.Run(context.Background())
	if !errors.Is(err, bridgeerr.ErrConnectFailed) {
		t.Errorf("err = %v, want ErrConnectFailed", err)
	}
}
