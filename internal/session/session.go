// Package session binds one agent connection to the stdio pair of the
// client it serves, so capabilities never touch os.Stdin or os.Stdout
// directly.
package session

import (
	"io"
	"net"

	"gpgbridge/internal/metrics"
	"gpgbridge/util"
)

// Session is the runtime context for a single connection.
type Session struct {
	Conn    net.Conn
	Stdin   io.Reader
	Stdout  io.Writer
	Logger  *util.Logger
	Metrics *metrics.Collector
}

// New creates a Session bound to conn and the given I/O pair. The logger
// is tagged with the remote address.
func New(conn net.Conn, stdin io.Reader, stdout io.Writer, logger *util.Logger, m *metrics.Collector) *Session {
	return &Session{
		Conn:    conn,
		Stdin:   stdin,
		Stdout:  stdout,
		Logger:  logger.With("remote", conn.RemoteAddr().String()),
		Metrics: m,
	}
}
