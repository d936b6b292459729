//go:build !unix && !windows

package shm

import (
	bridgeerr "gpgbridge/internal/errors"
)

func mapRegion(name string, _ bool) (*Channel, error) {
	return nil, bridgeerr.Mapping(name, bridgeerr.ErrMappingFailed, bridgeerr.ErrUnsupported)
}
