//go:build windows

package process

import (
	"testing"

	"golang.org/x/sys/windows"
)

func TestWin32AccessAllGrantsFullRights(t *testing.T) {
	mask := win32Access(AccessAll)
	want := uint32(windows.PROCESS_QUERY_INFORMATION | windows.PROCESS_VM_READ |
		windows.PROCESS_VM_WRITE | windows.PROCESS_VM_OPERATION |
		windows.PROCESS_TERMINATE | windows.PROCESS_DUP_HANDLE)
	if mask != want {
		t.Logf("expected AccessAll to map to 0x%x, got 0x%x", want, mask)
		t.Fail()
	}
}

func TestWin32AccessReadImpliesVMRead(t *testing.T) {
	mask := win32Access(AccessRead)
	if mask&windows.PROCESS_VM_READ == 0 {
		t.Logf("expected AccessRead to set PROCESS_VM_READ, mask was 0x%x", mask)
		t.Fail()
	}
	if mask&windows.PROCESS_VM_WRITE != 0 {
		t.Logf("expected AccessRead alone to not set PROCESS_VM_WRITE, mask was 0x%x", mask)
		t.Fail()
	}
}

func TestWin32AccessWriteImpliesVMOperation(t *testing.T) {
	mask := win32Access(AccessWrite)
	if mask&windows.PROCESS_VM_WRITE == 0 || mask&windows.PROCESS_VM_OPERATION == 0 {
		t.Logf("expected AccessWrite to set both PROCESS_VM_WRITE and PROCESS_VM_OPERATION, mask was 0x%x", mask)
		t.Fail()
	}
}
