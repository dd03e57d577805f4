//go:build linux

package process

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// invalidFd is the sentinel "no native handle" value, distinguishable from
// any valid, positive file descriptor.
const invalidFd = -1

// Handle owns a single OS file descriptor obtained via from_raw or
// duplicate. At most one live owner exists for the descriptor it wraps
// unless Duplicate was used; Close guarantees the descriptor is released
// exactly once, even if Close is called more than once.
type Handle struct {
	fd     int
	file   *os.File
	once   sync.Once
	closed error
}

// invalidHandle returns a Handle that is_valid() reports false for.
func invalidHandle() Handle {
	return Handle{fd: invalidFd}
}

// handleFromFile takes ownership of an already-open *os.File.
func handleFromFile(f *os.File) Handle {
	if f == nil {
		return invalidHandle()
	}
	return Handle{fd: int(f.Fd()), file: f}
}

// FromRaw wraps an already-owned raw file descriptor. The caller
// transfers ownership to the returned Handle.
func FromRaw(fd int) Handle {
	if fd < 0 {
		return invalidHandle()
	}
	return Handle{fd: fd, file: os.NewFile(uintptr(fd), "")}
}

// IsValid reports whether h refers to a live OS resource.
func (h Handle) IsValid() bool {
	return h.fd != invalidFd
}

// Raw returns the underlying file descriptor, or invalidFd if h is not
// valid.
func (h Handle) Raw() int {
	return h.fd
}

// Duplicate returns a new Handle that is an independent owner of the same
// underlying file description. It remains usable after the original Handle
// is closed.
func (h Handle) Duplicate() (Handle, error) {
	if !h.IsValid() {
		return invalidHandle(), nil
	}
	dupFd, err := unix.Dup(h.fd)
	if err != nil {
		return Handle{}, newOsError("dup", 0, err)
	}
	return FromRaw(dupFd), nil
}

// Close releases the underlying descriptor. Calling Close more than once is
// safe; only the first call has an effect.
func (h *Handle) Close() error {
	h.once.Do(func() {
		if h.file != nil {
			h.closed = h.file.Close()
		}
		h.fd = invalidFd
	})
	return h.closed
}
