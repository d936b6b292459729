package shm

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// Namer derives region names from a fixed prefix and a process id, with
// a monotonic suffix so that back-to-back transactions in one process and
// concurrent bridge processes never reuse a live name.
type Namer struct {
	Prefix string
	PID    int
}

// NewNamer returns a Namer for prefix and pid.
func NewNamer(prefix string, pid int) *Namer {
	return &Namer{Prefix: prefix, PID: pid}
}

// Next returns a fresh name such as "WSLPageantRequest4242-01J9Z...".
func (n *Namer) Next() string {
	return fmt.Sprintf("%s%d-%s", n.Prefix, n.PID, ulid.Make())
}
