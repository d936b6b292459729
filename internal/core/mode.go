// Package core is the orchestration layer. It composes the transports,
// capabilities and relays into complete bridging modes and provides a
// builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	frame, shm, window  →  locator  →  pageant  ┐
//	transport  →  capability  →  session        ├→  core  →  cmd (CLI)
//	auth                                        ┘
package core

import (
	"context"
	"io"
	"os"

	"gpgbridge/internal/frame"
)

// Mode is a complete bridging mode (ssh, gpg, or the key listing
// diagnostic). Each mode owns its full lifecycle.
type Mode interface {
	Run(ctx context.Context) error
}

// Transactor runs one agent request/response cycle.
type Transactor interface {
	Execute(ctx context.Context, request frame.Frame) (frame.Frame, error)
}

// stdio holds the client side of a mode. Stdin/Stdout default to
// os.Stdin/os.Stdout when nil; tests override them.
type stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
}

func (s *stdio) stdin() io.Reader {
	if s.Stdin != nil {
		return s.Stdin
	}
	return os.Stdin
}

func (s *stdio) stdout() io.Writer {
	if s.Stdout != nil {
		return s.Stdout
	}
	return os.Stdout
}
