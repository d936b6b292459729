// Package windowtest provides an in-process window bus that stands in
// for a GUI agent in tests. Its agents service requests through the same
// named shared memory regions the real one would.
package windowtest

import (
	"context"
	"fmt"
	"sync"

	"gpgbridge/internal/frame"
	"gpgbridge/internal/shm"
	"gpgbridge/internal/window"
)

// Handler services one notification.
type Handler func(h window.Handle, env *window.Envelope) error

type key struct{ window, class string }

// Bus is a fake window.Bus.
type Bus struct {
	mu      sync.Mutex
	next    window.Handle
	windows map[key]window.Handle
	finds   int
	sends   int
	last    *window.Envelope

	// Handler runs for every Send to a registered window. A nil Handler
	// accepts the notification and leaves the region untouched.
	Handler Handler
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{next: 0x1000, windows: make(map[key]window.Handle)}
}

// Register makes a window findable and returns its handle.
func (b *Bus) Register(windowName, className string) window.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.windows[key{windowName, className}] = b.next
	return b.next
}

// FindWindow implements window.Bus.
func (b *Bus) FindWindow(windowName, className string) (window.Handle, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finds++
	h, ok := b.windows[key{windowName, className}]
	return h, ok, nil
}

// Send implements window.Bus.
func (b *Bus) Send(h window.Handle, env *window.Envelope) error {
	b.mu.Lock()
	b.sends++
	b.last = env
	registered := false
	for _, w := range b.windows {
		if w == h {
			registered = true
		}
	}
	handler := b.Handler
	b.mu.Unlock()

	if !registered {
		return fmt.Errorf("no window %#x", uintptr(h))
	}
	if handler == nil {
		return nil
	}
	return handler(h, env)
}

// Finds returns the number of FindWindow calls.
func (b *Bus) Finds() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finds
}

// Sends returns the number of Send calls.
func (b *Bus) Sends() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sends
}

// LastEnvelope returns the most recent envelope sent.
func (b *Bus) LastEnvelope() *window.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Respond returns a Handler that opens the announced region, reads the
// request frame, and writes fn's reply back in its place.
func Respond(fn func(req frame.Frame) frame.Frame) Handler {
	return func(_ window.Handle, env *window.Envelope) error {
		ch, err := shm.Open(env.Name())
		if err != nil {
			return err
		}
		defer ch.Close()

		req, err := frame.FromRegion(ch.Bytes())
		if err != nil {
			return err
		}
		copy(ch.Bytes(), fn(req))
		return nil
	}
}

// Echo answers every request with the request itself.
func Echo() Handler {
	return Respond(func(req frame.Frame) frame.Frame { return req })
}

// Provoker registers a window when provoked, like an agent launcher
// bringing up Pageant. With Fail set it only counts calls.
type Provoker struct {
	Bus    *Bus
	Window string
	Class  string
	Fail   bool

	mu    sync.Mutex
	calls int
}

// Provoke implements locator.Provoker.
func (p *Provoker) Provoke(context.Context) error {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.Fail {
		return fmt.Errorf("agent launch failed")
	}
	p.Bus.Register(p.Window, p.Class)
	return nil
}

// Calls returns how many times Provoke ran.
func (p *Provoker) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
