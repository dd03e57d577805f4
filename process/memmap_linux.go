//go:build linux

package process

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// MemoryPages is the lazy, single-threaded sequence interface implemented
// by every memory-map iterator this package produces. Next returns one
// region per call (spec I4); NextCommit skips non-committed regions while
// preserving lazy semantics (spec §4.3).
type MemoryPages interface {
	Next() (MemoryPage, bool)
	NextCommit() (MemoryPage, bool)
	Close() error
}

// MemoryPageIter is a lazy, single-threaded sequence of MemoryPage,
// produced by reading /proc/<pid>/maps one line at a time. It holds the
// open file for its lifetime; advancing it after the owning Process has
// been closed is undefined, matching spec §3's iterator-borrow rule.
type MemoryPageIter struct {
	f       *os.File
	scanner *bufio.Scanner
	err     error
}

// EnumMemory returns a lazy iterator over the process's memory regions.
// start is accepted for parity with the Windows VirtualQueryEx-based walk,
// which probes forward from an address; the Linux /proc/<pid>/maps parser
// always produces the full map in ascending order and filters out entries
// below start.
func (p *Process) EnumMemory(start uint64) (MemoryPages, error) {
	f, err := os.Open(p.procPath("maps"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		if os.IsPermission(err) {
			return nil, ErrAccessDenied
		}
		return nil, newOsError("open maps", 0, err)
	}
	it := &MemoryPageIter{f: f, scanner: bufioScannerLines(f)}
	if start > 0 {
		return &filteredMemoryPageIter{inner: it, start: start}, nil
	}
	return it, nil
}

// Next advances the iterator, returning the next MemoryPage and true, or a
// zero MemoryPage and false once the map is exhausted or unreadable.
func (it *MemoryPageIter) Next() (MemoryPage, bool) {
	if it.scanner == nil {
		return MemoryPage{}, false
	}
	if !it.scanner.Scan() {
		it.Close()
		return MemoryPage{}, false
	}
	page, ok := parseMapsLine(it.scanner.Text())
	if !ok {
		return it.Next()
	}
	return page, true
}

// NextCommit skips regions that aren't committed, preserving lazy
// semantics (spec §4.3's next_commit helper). On Linux every entry in
// /proc/<pid>/maps is committed, so this is equivalent to Next, but it is
// provided so cross-platform callers never need a build tag.
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

// Close releases the underlying /proc/<pid>/maps file descriptor. Safe to
// call multiple times.
func (it *MemoryPageIter) Close() error {
	if it.f == nil {
		return nil
	}
	err := it.f.Close()
	it.f = nil
	it.scanner = nil
	return err
}

// filteredMemoryPageIter wraps a MemoryPageIter, skipping pages whose end
// address falls at or before start. Used to make EnumMemory(start)
// behave like the Windows VirtualQueryEx walk, which begins probing at an
// arbitrary address rather than always at 0.
type filteredMemoryPageIter struct {
	inner *MemoryPageIter
	start uint64
}

func (it *filteredMemoryPageIter) Next() (MemoryPage, bool) {
	for {
		page, ok := it.inner.Next()
		if !ok {
			return MemoryPage{}, false
		}
		if page.Base+page.Size > it.start {
			return page, true
		}
	}
}

func (it *filteredMemoryPageIter) NextCommit() (MemoryPage, bool) {
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

func (it *filteredMemoryPageIter) Close() error { return it.inner.Close() }

// parseMapsLine parses one line of /proc/<pid>/maps, e.g.:
//
//	08048000-08049000 r-xp 00000000 03:00 8312       /usr/sbin/gpm
//
// into a MemoryPage. The second return value is false for malformed lines,
// which are skipped rather than surfaced as an error (spec: iterator
// errors mid-iteration cause the iterator to end, but a single malformed
// line should not abort an otherwise-healthy enumeration).
func parseMapsLine(line string) (MemoryPage, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return MemoryPage{}, false
	}
	addrRange := strings.SplitN(fields[0], "-", 2)
	if len(addrRange) != 2 {
		return MemoryPage{}, false
	}
	base, err := strconv.ParseUint(addrRange[0], 16, 64)
	if err != nil {
		return MemoryPage{}, false
	}
	end, err := strconv.ParseUint(addrRange[1], 16, 64)
	if err != nil || end < base {
		return MemoryPage{}, false
	}

	protect := protectFromPerms(fields[1])
	backing := ""
	if len(fields) >= 6 {
		backing = strings.Join(fields[5:], " ")
	}

	return MemoryPage{
		Base:              base,
		Size:              end - base,
		AllocationBase:    base,
		State:             memStateCommit,
		Type:              0,
		Protect:           protect,
		AllocationProtect: protect,
		BackingName:       backing,
	}, true
}

// protectFromPerms translates a /proc/<pid>/maps permission string like
// "r-xp" into the nearest Win32 PAGE_* constant, so a MemoryPage looks the
// same shape regardless of which platform produced it.
func protectFromPerms(perms string) uint32 {
	if len(perms) < 3 {
		return pageNoAccess
	}
	r := perms[0] == 'r'
	w := perms[1] == 'w'
	x := perms[2] == 'x'
	switch {
	case x && w:
		return pageExecuteReadWrite
	case x && r:
		return pageExecuteRead
	case x:
		return pageExecute
	case w:
		return pageReadWrite
	case r:
		return pageReadOnly
	default:
		return pageNoAccess
	}
}
