//go:build windows

package process

import "golang.org/x/sys/windows"

// golang.org/x/sys/windows wraps nearly all the Win32 surface this package
// needs natively (OpenProcess, ReadProcessMemory, VirtualQueryEx,
// VirtualProtectEx, the toolhelp process/thread/module walk,
// QueryFullProcessImageName, IsWow64Process, NtQueryInformationProcess). The
// two functions it doesn't expose — GetMappedFileNameW and
// FlushInstructionCache — are called directly off their owning DLL the same
// way the original source reaches them through raw winapi FFI bindings.
var (
	psapi    = windows.NewLazySystemDLL("psapi.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetMappedFileNameW    = psapi.NewProc("GetMappedFileNameW")
	procFlushInstructionCache = kernel32.NewProc("FlushInstructionCache")
)
