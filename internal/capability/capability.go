// Package capability defines what happens over an established agent
// connection. Each Capability operates on a Session rather than a raw
// net.Conn, which keeps it testable without a live agent.
package capability

import (
	"context"

	"gpgbridge/internal/session"
)

// Capability handles a single connection. Implementations include the
// stdio relay (Relay) and the nonce handshake that precedes it
// (Authenticated).
type Capability interface {
	// Handle runs the capability against the given session. It blocks
	// until the connection is done or the context is cancelled.
	Handle(ctx context.Context, sess *session.Session) error
}
