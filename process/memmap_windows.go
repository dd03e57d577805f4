//go:build windows

package process

import (
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// MemoryPageIter is a lazy, single-threaded sequence of MemoryPage produced
// by repeated VirtualQueryEx calls, each one advancing past the region just
// returned. Unlike the Linux /proc/<pid>/maps walk this never reads the
// whole map up front: a probe past the end of the address space simply
// fails and ends the iteration (spec §4.3).
type MemoryPageIter struct {
	process *Process
	address uintptr
	done    bool
}

// EnumMemory returns a lazy iterator over the process's memory regions,
// beginning its first VirtualQueryEx probe at start.
func (p *Process) EnumMemory(start uint64) (MemoryPages, error) {
	if !p.handle.IsValid() {
		return nil, ErrNotFound
	}
	return &MemoryPageIter{process: p, address: uintptr(start)}, nil
}

// Next advances the iterator, returning the next MemoryPage and true, or a
// zero MemoryPage and false once VirtualQueryEx reports no further region
// (end of the address space, or the target has exited).
func (it *MemoryPageIter) Next() (MemoryPage, bool) {
	if it.done {
		return MemoryPage{}, false
	}

	var mbi windows.MemoryBasicInformation
	err := windows.VirtualQueryEx(it.process.handle.Raw(), it.address, &mbi, unsafe.Sizeof(mbi))
	if err != nil || mbi.RegionSize == 0 {
		it.done = true
		return MemoryPage{}, false
	}

	page := MemoryPage{
		Base:              uint64(mbi.BaseAddress),
		Size:              uint64(mbi.RegionSize),
		AllocationBase:    uint64(mbi.AllocationBase),
		State:             mbi.State,
		Type:              mbi.Type,
		Protect:           mbi.Protect,
		AllocationProtect: mbi.AllocationProtect,
	}
	if page.IsCommit() {
		page.BackingName = it.process.getMappedFileName(page.Base)
	}

	it.address = uintptr(mbi.BaseAddress) + uintptr(mbi.RegionSize)
	return page, true
}

// NextCommit skips regions that aren't committed, preserving lazy semantics
// (spec §4.3's next_commit helper).
func (it *MemoryPageIter) NextCommit() (MemoryPage, bool) {
	for {
		page, ok := it.Next()
		if !ok {
			return MemoryPage{}, false
		}
		if page.IsCommit() {
			return page, true
		}
	}
}

// Close is a no-op: the Windows memory walk owns no resource beyond the
// process handle, which outlives the iterator.
func (it *MemoryPageIter) Close() error { return nil }

// getMappedFileName returns the name of the file mapped at address, if any,
// via GetMappedFileNameW. golang.org/x/sys/windows has no wrapper for it, so
// it is called directly off psapi.dll (see dll_windows.go). The raw result
// is a device path (\Device\HarddiskVolume3\...); toDosPath attempts to
// normalize it to a drive-letter form (C:\...) and falls back to the raw
// device path if no drive maps to that device.
func (p *Process) getMappedFileName(address uint64) string {
	var buf [windows.MAX_PATH]uint16
	r, _, _ := procGetMappedFileNameW.Call(
		uintptr(p.handle.Raw()),
		uintptr(address),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
	)
	if r == 0 {
		return ""
	}
	devicePath := syscall.UTF16ToString(buf[:r])
	return toDosPath(devicePath)
}

// toDosPath best-effort normalizes a \Device\...-form path to a drive-letter
// DOS path by matching its prefix against QueryDosDevice's resolution of
// every letter GetLogicalDrives reports as in use. Returns devicePath
// unchanged if no drive's device prefix matches.
func toDosPath(devicePath string) string {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return devicePath
	}

	var target [windows.MAX_PATH]uint16
	for letter := 0; letter < 26; letter++ {
		if mask&(1<<uint(letter)) == 0 {
			continue
		}
		drive := string(rune('A'+letter)) + ":"
		driveUTF16, err := syscall.UTF16PtrFromString(drive)
		if err != nil {
			continue
		}
		n, err := windows.QueryDosDevice(driveUTF16, &target[0], uint32(len(target)))
		if err != nil || n == 0 {
			continue
		}
		devicePrefix := syscall.UTF16ToString(target[:n])
		if strings.HasPrefix(devicePath, devicePrefix) {
			return drive + devicePath[len(devicePrefix):]
		}
	}
	return devicePath
}
