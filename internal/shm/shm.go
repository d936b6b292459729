// Package shm owns named shared memory regions used to hand agent
// frames to a process that can only be reached by name.
//
// A Channel exclusively owns the mapping and the OS object behind it.
// Callers acquire one with Create, defer Close, and touch the memory only
// through Bytes; Close releases both the view and the handle and is safe
// to call on every exit path.
package shm

import (
	"sync"
)

// Capacity is the fixed size of every region (the Pageant protocol's
// AGENT_MAX_MSGLEN).
const Capacity = 8192

// Channel is a mapped, named shared memory region of Capacity bytes.
// It is not safe for concurrent use.
type Channel struct {
	name    string
	view    []byte
	release func() error

	once   sync.Once
	err    error
	closed bool
}

// Create allocates (or attaches to) the region called name.
//
// It fails with ErrMappingNameCollision when the name is held by an OS
// object that is not a compatible mapping, and with ErrMappingFailed for
// any other allocation error.
func Create(name string) (*Channel, error) {
	return mapRegion(name, true)
}

// Open attaches to an existing region created by another party. Closing
// an opened Channel unmaps it without destroying the region.
func Open(name string) (*Channel, error) {
	return mapRegion(name, false)
}

func newChannel(name string, view []byte, release func() error) *Channel {
	return &Channel{name: name, view: view, release: release}
}

// Name returns the region name the peer uses to open it.
func (c *Channel) Name() string { return c.name }

// Bytes returns the full Capacity-sized view. Bytes past the logical
// frame keep whatever an earlier exchange left there. The slice must not
// be used after Close. Panics if the channel has been closed.
func (c *Channel) Bytes() []byte {
	if c.closed {
		panic("shm: access to closed channel " + c.name)
	}
	return c.view
}

// Close unmaps the view and closes the underlying handle. Close is
// idempotent.
func (c *Channel) Close() error {
	c.once.Do(func() {
		c.closed = true
		c.view = nil
		c.err = c.release()
	})
	return c.err
}
