package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	bridgeerr "gpgbridge/internal/errors"
)

var nonce = []byte("0123456789abcdef")

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "S.gpg-agent")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, append([]byte("9999\n"), nonce...))

	ep, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ep.Port != 9999 {
		t.Errorf("port = %d, want 9999", ep.Port)
	}
	if !bytes.Equal(ep.Nonce, nonce) {
		t.Errorf("nonce = %q", ep.Nonce)
	}
	if got := ep.Address("localhost"); got != "localhost:9999" {
		t.Errorf("Address = %q", got)
	}
}

func TestParse_CarriageReturn(t *testing.T) {
	ep, err := Parse(append([]byte("41234\r"), nonce...))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ep.Port != 41234 {
		t.Errorf("port = %d", ep.Port)
	}
}

// TestParse_NonceWithNewline verifies the nonce is raw bytes that may
// themselves contain line terminators.
func TestParse_NonceWithNewline(t *testing.T) {
	raw := []byte("\n\r23456789abcdef")
	ep, err := Parse(append([]byte("9999\n"), raw...))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(ep.Nonce, raw) {
		t.Errorf("nonce = %q", ep.Nonce)
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"no terminator", []byte("9999")},
		{"short nonce", append([]byte("9999\n"), nonce[:15]...)},
		{"long nonce", append([]byte("9999\n"), append(nonce, 'x')...)},
		{"crlf shifts nonce", append([]byte("9999\r\n"), nonce...)},
		{"no nonce", []byte("9999\n")},
		{"port not numeric", append([]byte("port\n"), nonce...)},
		{"port zero", append([]byte("0\n"), nonce...)},
		{"port too large", append([]byte("70000\n"), nonce...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.data))
			if !errors.Is(err, bridgeerr.ErrAuthConfig) {
				t.Errorf("err = %v, want ErrAuthConfig", err)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, bridgeerr.ErrAuthConfig) {
		t.Errorf("err = %v, want ErrAuthConfig", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want to wrap os.ErrNotExist", err)
	}
}
