// Package pageant relays one agent request at a time to a Pageant-style
// agent: the request is placed in a fresh named shared memory region, the
// agent's window is told the region's name, and the agent's reply is read
// back from the same region once the synchronous notification returns.
package pageant

import (
	"context"
	"fmt"

	bridgeerr "gpgbridge/internal/errors"
	"gpgbridge/internal/frame"
	"gpgbridge/internal/shm"
	"gpgbridge/internal/window"
	"gpgbridge/util"
)

// Locator finds the agent window.
type Locator interface {
	Locate(ctx context.Context, windowName, className string) (window.Handle, error)
}

// Relay performs transactions against one agent window. A Relay runs one
// transaction at a time.
type Relay struct {
	Window string
	Class  string

	Namer   *shm.Namer
	Locator Locator
	Bus     window.Bus
	Logger  *util.Logger
}

// Execute runs one request/response cycle. The region is released on
// every path out of Execute.
func (r *Relay) Execute(ctx context.Context, request frame.Frame) (frame.Frame, error) {
	name := r.Namer.Next()
	log := r.Logger.With("map", name)

	ch, err := shm.Create(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ch.Close(); err != nil {
			log.Warn("release region: %v", err)
		}
	}()

	region := ch.Bytes()
	if len(request) > len(region) {
		return nil, fmt.Errorf("request of %d bytes, region holds %d: %w",
			len(request), len(region), bridgeerr.ErrRequestTooLarge)
	}
	copy(region, request)
	log.Debug("wrote %d-byte request", len(request))

	target, err := r.Locator.Locate(ctx, r.Window, r.Class)
	if err != nil {
		return nil, err
	}

	env, err := window.NewEnvelope(name)
	if err != nil {
		return nil, bridgeerr.Mapping(name, bridgeerr.ErrMappingFailed, err)
	}
	if err := r.Bus.Send(target, env); err != nil {
		return nil, &bridgeerr.NotifyError{Handle: uintptr(target), MapName: name, Err: err}
	}

	response, err := frame.FromRegion(region)
	if err != nil {
		return nil, err
	}
	log.Debug("read %d-byte response", len(response))
	return response, nil
}
