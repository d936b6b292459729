// Package frame implements the length-prefixed framing shared by the
// stdio boundary and the shared memory region: a 4-byte big-endian
// payload length followed by that many payload bytes.
//
// A Frame always includes its own length prefix so that it can be
// re-emitted verbatim.
package frame

import (
	"encoding/binary"
	"fmt"
	"io"

	bridgeerr "gpgbridge/internal/errors"
)

const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
	// MaxPayloadSize bounds the declared length accepted by Read (16 MiB)
	// so a corrupt prefix cannot force a huge allocation.
	MaxPayloadSize = 16 * 1024 * 1024
)

// AgentFailure is the agent protocol's generic failure reply
// (SSH_AGENT_FAILURE, a single byte 5).
var AgentFailure = Frame{0, 0, 0, 1, 5}

// Frame is a complete length-prefixed message, prefix included.
type Frame []byte

// PayloadLen returns the length declared by the prefix.
func (f Frame) PayloadLen() uint32 {
	if len(f) < LengthPrefixSize {
		return 0
	}
	return binary.BigEndian.Uint32(f[:LengthPrefixSize])
}

// Payload returns the bytes after the prefix.
func (f Frame) Payload() []byte {
	if len(f) < LengthPrefixSize {
		return nil
	}
	return f[LengthPrefixSize:]
}

// New builds a frame around payload.
func New(payload []byte) Frame {
	f := make(Frame, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(f, uint32(len(payload)))
	copy(f[LengthPrefixSize:], payload)
	return f
}

// Read reads exactly one frame from r.
//
// Errors:
//   - io.EOF: the stream ended cleanly on a frame boundary
//   - ErrIoTruncated: the stream ended inside a frame
//   - ErrFrameTooLarge: the declared length exceeds MaxPayloadSize
func Read(r io.Reader) (Frame, error) {
	var prefix [LengthPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read length prefix: %w", bridgeerr.Join(bridgeerr.ErrIoTruncated, err))
	}

	n := binary.BigEndian.Uint32(prefix[:])
	if n > MaxPayloadSize {
		return nil, fmt.Errorf("declared payload %d > %d: %w", n, MaxPayloadSize, bridgeerr.ErrFrameTooLarge)
	}

	f := make(Frame, LengthPrefixSize+int(n))
	copy(f, prefix[:])
	if _, err := io.ReadFull(r, f[LengthPrefixSize:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read %d-byte payload: %w", n, bridgeerr.Join(bridgeerr.ErrIoTruncated, err))
	}
	return f, nil
}

// flusher is satisfied by bufio.Writer and similar buffered sinks.
type flusher interface {
	Flush() error
}

// Write writes f in full and flushes w if it buffers, so the peer sees
// the bytes without delay.
func Write(w io.Writer, f Frame) error {
	if _, err := w.Write(f); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if fl, ok := w.(flusher); ok {
		if err := fl.Flush(); err != nil {
			return fmt.Errorf("flush frame: %w", err)
		}
	}
	return nil
}

// FromRegion copies the frame that starts at region[0] out of a fixed
// capacity buffer. The prefix is trusted only as far as the buffer
// reaches: a length that would read past the end is rejected with
// ErrResponseOverflow instead of being truncated. Bytes beyond the
// declared length are ignored; they may be left over from an earlier,
// longer exchange.
func FromRegion(region []byte) (Frame, error) {
	if len(region) < LengthPrefixSize {
		return nil, fmt.Errorf("region of %d bytes has no length prefix: %w", len(region), bridgeerr.ErrResponseOverflow)
	}
	n := binary.BigEndian.Uint32(region[:LengthPrefixSize])
	if uint64(n) > uint64(len(region)-LengthPrefixSize) {
		return nil, fmt.Errorf("declared payload %d > %d: %w", n, len(region)-LengthPrefixSize, bridgeerr.ErrResponseOverflow)
	}
	f := make(Frame, LengthPrefixSize+int(n))
	copy(f, region)
	return f, nil
}
