// Package errors provides domain-specific error types for gpgbridge.
//
// Every structured type carries the stage context a log reader needs
// (which map name, which window, which address) and unwraps to both a
// kind sentinel and the underlying cause, so callers can branch with
// errors.Is(err, ErrTargetNotFound) while logs keep the full chain.
package errors

import (
	"errors"
	"fmt"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrIoTruncated          = errors.New("frame truncated")
	ErrFrameTooLarge        = errors.New("frame exceeds maximum size")
	ErrAuthConfig           = errors.New("invalid agent authentication file")
	ErrMappingFailed        = errors.New("shared memory mapping failed")
	ErrMappingNameCollision = errors.New("shared memory name held by another object")
	ErrTargetNotFound       = errors.New("agent window not found")
	ErrNotifyRejected       = errors.New("agent rejected notification")
	ErrConnectFailed        = errors.New("agent connection failed")
	ErrRequestTooLarge      = errors.New("request does not fit shared memory")
	ErrResponseOverflow     = errors.New("response length exceeds shared memory")
	ErrUnsupported          = errors.New("not supported on this platform")
)

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op   string // operation: "dial", "handshake", "relay"
	Addr string // network address involved
	Err  error  // underlying error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

// Unwrap exposes ErrConnectFailed for dial and handshake failures.
func (e *NetworkError) Unwrap() []error {
	if e.Op == "dial" || e.Op == "handshake" {
		return []error{ErrConnectFailed, e.Err}
	}
	return []error{e.Err}
}

// MappingError describes a failure to create or open a named shared
// memory region.
type MappingError struct {
	Name string // region name
	Kind error  // ErrMappingFailed or ErrMappingNameCollision
	Err  error
}

func (e *MappingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("mapping %q: %v", e.Name, e.Kind)
	}
	return fmt.Sprintf("mapping %q: %v: %v", e.Name, e.Kind, e.Err)
}

func (e *MappingError) Unwrap() []error { return nonNil(e.Kind, e.Err) }

// TargetError reports that no agent window answered to window/class.
type TargetError struct {
	Window string
	Class  string
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("window %q class %q: %v", e.Window, e.Class, ErrTargetNotFound)
}

func (e *TargetError) Unwrap() error { return ErrTargetNotFound }

// NotifyError reports a failed synchronous notification.
type NotifyError struct {
	Handle  uintptr // target window handle
	MapName string
	Err     error
}

func (e *NotifyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("notify window %#x of %q: %v", e.Handle, e.MapName, ErrNotifyRejected)
	}
	return fmt.Sprintf("notify window %#x of %q: %v: %v", e.Handle, e.MapName, ErrNotifyRejected, e.Err)
}

func (e *NotifyError) Unwrap() []error { return nonNil(ErrNotifyRejected, e.Err) }

// AuthError describes an unreadable or malformed agent socket file.
type AuthError struct {
	Path    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("auth file %s: %s", e.Path, e.Message)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *AuthError) Unwrap() []error { return nonNil(ErrAuthConfig, e.Err) }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err}
}

// Mapping creates a MappingError of the given kind.
func Mapping(name string, kind, err error) *MappingError {
	return &MappingError{Name: name, Kind: kind, Err: err}
}

func nonNil(errs ...error) []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
