package transport

import (
	"context"
	"net"
	"time"

	bridgeerr "gpgbridge/internal/errors"
)

// TCPDialer establishes plain TCP connections. A zero Timeout leaves the
// dial bounded only by the context and the operating system.
type TCPDialer struct {
	Timeout time.Duration
}

// Dial connects to address. Failures are *errors.NetworkError values that
// match ErrConnectFailed.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, bridgeerr.Wrap("dial", address, err)
	}
	return conn, nil
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }
