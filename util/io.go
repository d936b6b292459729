package util

import (
	"context"
	"errors"
	"io"
	"net"
)

// DefaultBufSize is the standard buffer size for network I/O (32 KiB).
const DefaultBufSize = 32 * 1024

// Direction names one half of a spliced session.
type Direction string

const (
	// Inbound is conn → writer (agent to client).
	Inbound Direction = "inbound"
	// Outbound is reader → conn (client to agent).
	Outbound Direction = "outbound"
	// Cancelled means the context ended before either direction did.
	Cancelled Direction = "cancelled"
)

// CopyResult reports the direction that finished first.
type CopyResult struct {
	Direction Direction
	Bytes     int64
	Err       error
}

// WriteError marks a failure on the destination side of a copy, as
// opposed to a failed read from its source.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "write: " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

// taggedWriter reports its own failures as *WriteError.
type taggedWriter struct {
	w io.Writer
}

func (t taggedWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		err = &WriteError{Err: err}
	}
	return n, err
}

// Splice shuffles data between a network connection and a reader/writer
// pair (typically stdin/stdout) and returns as soon as EITHER direction
// ends or the context is cancelled.  The connection is closed before
// returning, which unblocks the inbound copy.  The outbound copy may stay
// blocked on a read from r; it is abandoned, not waited on, and dies with
// the process.  Errors raised by the destination of either direction are
// *WriteError values.
func Splice(ctx context.Context, conn net.Conn, r io.Reader, w io.Writer) CopyResult {
	done := make(chan CopyResult, 2)

	// network → writer
	go func() {
		n, err := copyPooled(taggedWriter{w}, conn)
		done <- CopyResult{Direction: Inbound, Bytes: n, Err: err}
	}()

	// reader → network
	go func() {
		n, err := copyPooled(taggedWriter{conn}, r)
		done <- CopyResult{Direction: Outbound, Bytes: n, Err: err}
	}()

	var res CopyResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = CopyResult{Direction: Cancelled, Err: ctx.Err()}
	}
	conn.Close() //nolint:errcheck
	return res
}

func copyPooled(dst io.Writer, src io.Reader) (int64, error) {
	buf := GetBuf()
	defer PutBuf(buf)
	return io.CopyBuffer(dst, src, *buf)
}

// IsHarmless returns true for errors that are expected during shutdown.
func IsHarmless(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	// net.OpError wrapping "use of closed network connection"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}
