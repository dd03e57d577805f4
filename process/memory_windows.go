//go:build windows

package process

import (
	"golang.org/x/sys/windows"
)

// Read reads len(buf) bytes from the target's virtual address space
// starting at address, returning the prefix of buf actually filled. It
// returns nil rather than erroring on a bad address or a dead handle — a
// short or empty read is how BadAddress is reported (spec I3), matching the
// Linux implementation's contract.
func (p *Process) Read(address uint64, buf []byte) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	var read uintptr
	err := windows.ReadProcessMemory(p.handle.Raw(), uintptr(address), &buf[0], uintptr(len(buf)), &read)
	if err != nil || read == 0 {
		return nil
	}
	return buf[:read]
}

// Write writes data to the target's virtual address space starting at
// address, returning the number of bytes written and whether the write
// succeeded at all. The target region is temporarily relaxed to
// PAGE_EXECUTE_READWRITE and restored to its prior protection once the
// write completes, mirroring the original source's write_process_memory —
// WriteProcessMemory alone fails against read-only or no-access pages such
// as a module's .text section, which is exactly where a debugger plants
// breakpoints. Write takes no lock: concurrent Writes through the same
// Process are not serialized by this package.
func (p *Process) Write(address uint64, data []byte) (int, bool) {
	if len(data) == 0 {
		return 0, true
	}
	h := p.handle.Raw()
	size := uintptr(len(data))

	var oldProtect uint32
	relaxErr := windows.VirtualProtectEx(h, uintptr(address), size, windows.PAGE_EXECUTE_READWRITE, &oldProtect)

	var written uintptr
	err := windows.WriteProcessMemory(h, uintptr(address), &data[0], size, &written)

	if relaxErr == nil {
		var restored uint32
		_ = windows.VirtualProtectEx(h, uintptr(address), size, oldProtect, &restored)
	}

	if err != nil || written == 0 {
		return 0, false
	}
	return int(written), true
}

// FlushInstructionCache invalidates the instruction cache for the given
// region of the target's address space, required after patching executable
// memory (breakpoint injection) so the CPU doesn't execute stale fetched
// instructions. golang.org/x/sys/windows has no wrapper for
// FlushInstructionCache, so this calls it directly off kernel32.
func (p *Process) FlushInstructionCache(address uint64, length uint64) error {
	r, _, err := procFlushInstructionCache.Call(
		uintptr(p.handle.Raw()),
		uintptr(address),
		uintptr(length),
	)
	if r == 0 {
		return newOsError("FlushInstructionCache", 0, err)
	}
	return nil
}
