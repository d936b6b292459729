//go:build unix

package shm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	bridgeerr "gpgbridge/internal/errors"
)

// Dir is where regions live on hosts without a window bus. It defaults to
// /dev/shm when present.
var Dir = defaultDir()

func defaultDir() string {
	if fi, err := os.Stat("/dev/shm"); err == nil && fi.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

// mapRegion backs the region with a file under Dir mapped MAP_SHARED.
// Anything at that path other than a regular file is a name collision.
// The creator removes the file on Close.
func mapRegion(name string, create bool) (*Channel, error) {
	if name == "" || strings.ContainsAny(name, "/\x00") {
		return nil, bridgeerr.Mapping(name, bridgeerr.ErrMappingFailed, fmt.Errorf("invalid region name"))
	}
	path := filepath.Join(Dir, name)

	if fi, err := os.Lstat(path); err == nil && !fi.Mode().IsRegular() {
		return nil, bridgeerr.Mapping(name, bridgeerr.ErrMappingNameCollision,
			fmt.Errorf("%s is a %s", path, fi.Mode().Type()))
	}

	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return nil, bridgeerr.Mapping(name, bridgeerr.ErrMappingFailed, err)
	}

	cleanup := func() error {
		err := f.Close()
		if create {
			err = errors.Join(err, os.Remove(path))
		}
		return err
	}

	if create {
		err = f.Truncate(Capacity)
	} else if fi, serr := f.Stat(); serr != nil {
		err = serr
	} else if fi.Size() < Capacity {
		err = fmt.Errorf("region is %d bytes, want %d", fi.Size(), Capacity)
	}
	if err != nil {
		cleanup() //nolint:errcheck
		return nil, bridgeerr.Mapping(name, bridgeerr.ErrMappingFailed, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, Capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		cleanup() //nolint:errcheck
		return nil, bridgeerr.Mapping(name, bridgeerr.ErrMappingFailed, err)
	}

	return newChannel(name, data, func() error {
		return errors.Join(unix.Munmap(data), cleanup())
	}), nil
}
