//go:build windows

package process

import (
	"testing"
	"unsafe"
)

var memoryWindowsTestFixture = [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
var memoryWindowsWriteFixture = [8]byte{0, 0, 0, 0, 0, 0, 0, 0}

// TestReadCurrentProcessMemory exercises the real ReadProcessMemory path
// against Current()'s pseudo-handle: reading a known global byte array back
// should reproduce its exact contents. There is no meaningful fixture-based
// fake for process memory I/O, so this runs against the real OS.
func TestReadCurrentProcessMemory(t *testing.T) {
	p := Current()
	defer p.Close()

	addr := uint64(uintptr(unsafe.Pointer(&memoryWindowsTestFixture[0])))
	buf := make([]byte, len(memoryWindowsTestFixture))
	got := p.Read(addr, buf)
	if got == nil {
		t.Fatalf("expected a successful read of the current process's own memory")
	}
	for i, b := range memoryWindowsTestFixture {
		if got[i] != b {
			t.Logf("byte %d: expected %d, got %d", i, b, got[i])
			t.Fail()
		}
	}
}

// TestWriteCurrentProcessMemory exercises the real/write-then-read
// round-trip (spec's read/write round-trip property) against the current
// process's own address space via Current()'s pseudo-handle, including the
// VirtualProtectEx relax/restore dance Write performs around the write.
func TestWriteCurrentProcessMemory(t *testing.T) {
	p := Current()
	defer p.Close()

	addr := uint64(uintptr(unsafe.Pointer(&memoryWindowsWriteFixture[0])))
	want := []byte{9, 8, 7, 6, 5, 4, 3, 2}

	n, ok := p.Write(addr, want)
	if !ok {
		t.Fatalf("expected a successful write to the current process's own memory")
	}
	if n != len(want) {
		t.Logf("expected to write %d bytes, wrote %d", len(want), n)
		t.Fail()
	}

	for i, b := range want {
		if memoryWindowsWriteFixture[i] != b {
			t.Logf("byte %d: expected %d, got %d", i, b, memoryWindowsWriteFixture[i])
			t.Fail()
		}
	}

	buf := make([]byte, len(want))
	got := p.Read(addr, buf)
	if got == nil {
		t.Fatalf("expected a successful read-back after write")
	}
	for i, b := range want {
		if got[i] != b {
			t.Logf("read-back byte %d: expected %d, got %d", i, b, got[i])
			t.Fail()
		}
	}
}
