package core

import (
	"context"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/ssh/agent"

	"gpgbridge/internal/frame"
)

// blockingReader never returns until released, like an idle terminal.
type blockingReader struct{ ch chan struct{} }

func newBlockingReader() blockingReader { return blockingReader{ch: make(chan struct{})} }

func (b blockingReader) Read([]byte) (int, error) {
	<-b.ch
	return 0, io.EOF
}

func (b blockingReader) release() { close(b.ch) }

// transactorFunc adapts a function to Transactor.
type transactorFunc func(ctx context.Context, req frame.Frame) (frame.Frame, error)

func (f transactorFunc) Execute(ctx context.Context, req frame.Frame) (frame.Frame, error) {
	return f(ctx, req)
}

// keyringTransactor answers requests from an in-memory ssh-agent.
func keyringTransactor(kr agent.Agent) Transactor {
	var mu sync.Mutex
	return transactorFunc(func(_ context.Context, req frame.Frame) (frame.Frame, error) {
		mu.Lock()
		defer mu.Unlock()
		client, server := net.Pipe()
		defer client.Close()
		go agent.ServeAgent(kr, server) //nolint:errcheck
		if err := frame.Write(client, req); err != nil {
			return nil, err
		}
		return frame.Read(client)
	})
}

// pipeDialer hands out the client end of a net.Pipe and records the
// address it was asked for.
type pipeDialer struct {
	mu      sync.Mutex
	address string
	agent   chan net.Conn
	closed  bool
}

func newPipeDialer() *pipeDialer { return &pipeDialer{agent: make(chan net.Conn, 1)} }

func (d *pipeDialer) Dial(_ context.Context, _, address string) (net.Conn, error) {
	d.mu.Lock()
	d.address = address
	d.mu.Unlock()
	client, server := net.Pipe()
	d.agent <- server
	return client, nil
}

func (d *pipeDialer) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *pipeDialer) Address() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.address
}
