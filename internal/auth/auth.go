// Package auth reads the gpg-agent's socket emulation file: a decimal TCP
// port on the first line followed by the 16-byte nonce the agent expects
// as the first bytes on every connection.
package auth

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	bridgeerr "gpgbridge/internal/errors"
	"gpgbridge/util"
)

// NonceSize is the exact nonce length the agent accepts.
const NonceSize = 16

// Endpoint is a parsed authentication file.
type Endpoint struct {
	Port  int
	Nonce []byte
}

// Address returns host:port for dialing.
func (e *Endpoint) Address(host string) string {
	return util.FormatAddr(host, e.Port)
}

// Load reads and parses the file at path.
func Load(path string) (*Endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &bridgeerr.AuthError{Path: path, Message: "unreadable", Err: err}
	}
	ep, err := Parse(data)
	if err != nil {
		return nil, &bridgeerr.AuthError{Path: path, Message: err.Error()}
	}
	return ep, nil
}

// Parse splits data at the first \n or \r. Everything after that single
// terminator byte is the nonce.
func Parse(data []byte) (*Endpoint, error) {
	line := bytes.IndexAny(data, "\n\r")
	if line < 0 {
		return nil, fmt.Errorf("no line terminator after port")
	}

	port, err := strconv.Atoi(string(data[:line]))
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid port %q", data[:line])
	}

	nonce := data[line+1:]
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("nonce is %d bytes, want %d", len(nonce), NonceSize)
	}
	return &Endpoint{Port: port, Nonce: append([]byte(nil), nonce...)}, nil
}
