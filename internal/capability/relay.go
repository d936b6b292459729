package capability

import (
	"context"
	"errors"
	"fmt"

	bridgeerr "gpgbridge/internal/errors"
	"gpgbridge/internal/session"
	"gpgbridge/util"
)

// Relay copies bytes between the connection and the session's stdio
// until the first direction ends.
type Relay struct{}

// Handle splices the session. A failed socket read is logged and treated
// as end of stream because agents drop connections as part of their
// normal lifecycle. A failed stdout write and any failure on the stdin
// side are returned.
func (r *Relay) Handle(ctx context.Context, sess *session.Session) error {
	res := util.Splice(ctx, sess.Conn, sess.Stdin, sess.Stdout)
	sess.Logger.Debug("%s direction ended after %d bytes", res.Direction, res.Bytes)

	switch res.Direction {
	case util.Inbound:
		sess.Metrics.BytesSent(res.Bytes)
		var werr *util.WriteError
		if errors.As(res.Err, &werr) {
			return fmt.Errorf("relay to client: %w", werr)
		}
		if !util.IsHarmless(res.Err) {
			sess.Logger.Warn("failed to read from socket: %v", res.Err)
		}
		return nil
	case util.Outbound:
		sess.Metrics.BytesReceived(res.Bytes)
		if !util.IsHarmless(res.Err) {
			return fmt.Errorf("relay to agent: %w",
				bridgeerr.Wrap("relay", sess.Conn.RemoteAddr().String(), res.Err))
		}
		return nil
	default:
		sess.Logger.Verbose("relay stopped: %v", res.Err)
		return nil
	}
}

// Authenticated writes Nonce as the first bytes on the connection and
// then hands the session to Next.
type Authenticated struct {
	Nonce []byte
	Next  Capability
}

// Handle performs the handshake and runs Next.
func (a *Authenticated) Handle(ctx context.Context, sess *session.Session) error {
	if _, err := sess.Conn.Write(a.Nonce); err != nil {
		return bridgeerr.Wrap("handshake", sess.Conn.RemoteAddr().String(), err)
	}
	sess.Logger.Debug("sent %d-byte nonce", len(a.Nonce))
	return a.Next.Handle(ctx, sess)
}
