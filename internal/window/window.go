// Package window reaches a GUI-owned agent through the host's window
// message bus: look a window up by name and class, then hand it a
// WM_COPYDATA envelope naming the shared memory region to service.
package window

import (
	"fmt"
	"strings"
)

// AgentCopyDataID is the magic identifier Pageant expects in the
// envelope's data field.
const AgentCopyDataID int64 = 0x804e50ba

// Handle is an opaque reference to a located window. It is only valid for
// the lookup-and-notify cycle that produced it; the agent may restart and
// re-register at any time.
type Handle uintptr

// Envelope is the out-of-band notification: a magic identifier and the
// NUL-terminated name of the region the target should open. It carries
// no payload.
type Envelope struct {
	Magic int64
	name  []byte
}

// NewEnvelope builds an envelope announcing mapName.
func NewEnvelope(mapName string) (*Envelope, error) {
	if strings.IndexByte(mapName, 0) >= 0 {
		return nil, fmt.Errorf("map name %q contains NUL", mapName)
	}
	name := make([]byte, len(mapName)+1)
	copy(name, mapName)
	return &Envelope{Magic: AgentCopyDataID, name: name}, nil
}

// Len is the byte count of the name including its terminator.
func (e *Envelope) Len() uint32 { return uint32(len(e.name)) }

// Name returns the region name without the terminator.
func (e *Envelope) Name() string { return string(e.name[:len(e.name)-1]) }

// Bus is the host's window message bus.
type Bus interface {
	// FindWindow looks up a top-level window. ok is false when no window
	// matches.
	FindWindow(windowName, className string) (h Handle, ok bool, err error)

	// Send delivers env to h and blocks until the target has processed
	// it. There is no timeout: the call is exactly as responsive as the
	// target agent.
	Send(h Handle, env *Envelope) error
}
