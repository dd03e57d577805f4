//go:build windows

package process

import (
	"sync"

	"golang.org/x/sys/windows"
)

// Handle owns a single Win32 kernel handle obtained via from_raw or
// duplicate. Close guarantees the handle is released exactly once, even if
// Close is called more than once.
type Handle struct {
	h      windows.Handle
	once   sync.Once
	closed error
}

// invalidHandle returns a Handle that is_valid() reports false for.
func invalidHandle() Handle {
	return Handle{h: windows.InvalidHandle}
}

// FromRaw wraps an already-owned raw kernel handle. The caller transfers
// ownership to the returned Handle.
func FromRaw(h windows.Handle) Handle {
	if h == 0 {
		return invalidHandle()
	}
	return Handle{h: h}
}

// IsValid reports whether h refers to a live kernel object.
func (h Handle) IsValid() bool {
	return h.h != windows.InvalidHandle && h.h != 0
}

// Raw returns the underlying kernel handle, or windows.InvalidHandle if h
// is not valid.
func (h Handle) Raw() windows.Handle {
	return h.h
}

// Duplicate returns a new Handle that is an independent owner referring to
// the same underlying kernel object. It remains usable after the original
// Handle is closed.
func (h Handle) Duplicate() (Handle, error) {
	if !h.IsValid() {
		return invalidHandle(), nil
	}
	cur, err := windows.GetCurrentProcess()
	if err != nil {
		return Handle{}, newOsError("GetCurrentProcess", 0, err)
	}
	var dup windows.Handle
	err = windows.DuplicateHandle(cur, h.h, cur, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return Handle{}, newOsError("DuplicateHandle", 0, err)
	}
	return FromRaw(dup), nil
}

// Close releases the underlying kernel handle. Calling Close more than once
// is safe; only the first call has an effect.
func (h *Handle) Close() error {
	h.once.Do(func() {
		if h.IsValid() {
			h.closed = windows.CloseHandle(h.h)
		}
		h.h = windows.InvalidHandle
	})
	return h.closed
}
