//go:build !windows

package window

import (
	bridgeerr "gpgbridge/internal/errors"
)

type unsupportedBus struct{}

// System returns a bus that fails every call: only Windows has a window
// message bus.
func System() Bus { return unsupportedBus{} }

func (unsupportedBus) FindWindow(string, string) (Handle, bool, error) {
	return 0, false, bridgeerr.ErrUnsupported
}

func (unsupportedBus) Send(Handle, *Envelope) error {
	return bridgeerr.ErrUnsupported
}
