//go:build windows

package shm

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/windows"

	bridgeerr "gpgbridge/internal/errors"
)

// mapRegion creates a pagefile-backed section. CreateFileMapping hands
// back the existing section (with ERROR_ALREADY_EXISTS) when the name is
// taken by another mapping, which is what the agent side relies on; a
// name taken by a mutex, event or semaphore yields ERROR_INVALID_HANDLE.
func mapRegion(name string, _ bool) (*Channel, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, bridgeerr.Mapping(name, bridgeerr.ErrMappingFailed, err)
	}

	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, 0, Capacity, namep)
	if h == 0 {
		if errors.Is(err, windows.ERROR_INVALID_HANDLE) {
			return nil, bridgeerr.Mapping(name, bridgeerr.ErrMappingNameCollision, err)
		}
		return nil, bridgeerr.Mapping(name, bridgeerr.ErrMappingFailed, err)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, Capacity)
	if err != nil {
		windows.CloseHandle(h) //nolint:errcheck
		return nil, bridgeerr.Mapping(name, bridgeerr.ErrMappingFailed, err)
	}

	view := unsafe.Slice((*byte)(unsafe.Pointer(addr)), Capacity)
	return newChannel(name, view, func() error {
		return errors.Join(windows.UnmapViewOfFile(addr), windows.CloseHandle(h))
	}), nil
}
