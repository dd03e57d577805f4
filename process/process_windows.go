//go:build windows

package process

import (
	"errors"
	"path/filepath"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Config carries Windows-specific settings for opening a Process: which
// rights to request from OpenProcess. The variadic argument accepted by the
// constructors below exists only to make Config optional; the last one
// wins, mirroring the teacher's NewLinuxInspector(opts
// ...LinuxInspectorConfig) convention and this package's own Linux Config.
type Config struct {
	Access AccessRights
}

func mergeConfig(opts []Config) Config {
	if len(opts) == 0 {
		return Config{Access: AccessAll}
	}
	return opts[len(opts)-1]
}

// win32Access translates the platform-agnostic AccessRights bitmask into
// the OpenProcess access mask it implies. AccessAll maps to the same
// all-access mask the original source's Process::open defaults to.
func win32Access(a AccessRights) uint32 {
	if a == AccessAll {
		return windows.PROCESS_QUERY_INFORMATION | windows.PROCESS_VM_READ |
			windows.PROCESS_VM_WRITE | windows.PROCESS_VM_OPERATION |
			windows.PROCESS_TERMINATE | windows.PROCESS_DUP_HANDLE
	}
	var mask uint32
	if a&AccessQuery != 0 {
		mask |= windows.PROCESS_QUERY_INFORMATION
	}
	if a&AccessRead != 0 {
		mask |= windows.PROCESS_VM_READ
	}
	if a&AccessWrite != 0 {
		mask |= windows.PROCESS_VM_WRITE | windows.PROCESS_VM_OPERATION
	}
	return mask
}

// Process is an opened handle to a live Windows process.
type Process struct {
	handle Handle
}

// Open acquires a Process for pid via OpenProcess, requesting the rights
// named in opts. It returns ErrNotFound when the OS reports the pid does
// not exist, ErrAccessDenied when it exists but the caller lacks the
// requested rights.
func Open(pid ProcessId, opts ...Config) (*Process, error) {
	cfg := mergeConfig(opts)
	h, err := windows.OpenProcess(win32Access(cfg.Access), false, uint32(pid))
	if err != nil {
		if errors.Is(err, windows.ERROR_INVALID_PARAMETER) {
			return nil, ErrNotFound
		}
		if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
			return nil, ErrAccessDenied
		}
		return nil, newOsError("OpenProcess", 0, err)
	}
	return &Process{handle: FromRaw(h)}, nil
}

// FromName returns the Process for the first entry in the toolhelp process
// snapshot whose executable file name equals name, case-insensitively
// (spec §4.6; Windows file names are case-insensitive, unlike the Linux
// equivalent).
func FromName(name string, opts ...Config) (*Process, error) {
	cfg := mergeConfig(opts)
	it := EnumProcess(cfg)
	for {
		info, ok := it.Next()
		if !ok {
			break
		}
		if equalFoldASCII(info.Name, name) {
			return Open(info.PID, cfg)
		}
	}
	return nil, ErrNotFound
}

// Current returns a Process referring to the calling process, wrapping the
// pseudo-handle returned by GetCurrentProcess.
func Current() *Process {
	h, err := windows.GetCurrentProcess()
	if err != nil {
		panic("process: Current: " + err.Error())
	}
	return &Process{handle: FromRaw(h)}
}

// PID returns the process ID via GetProcessId.
func (p *Process) PID() ProcessId {
	id, _ := windows.GetProcessId(p.handle.Raw())
	return ProcessId(id)
}

// basicInformation queries PROCESS_BASIC_INFORMATION via
// NtQueryInformationProcess, the only way to reach a process's PEB base
// address (spec §4.6's peb()).
func (p *Process) basicInformation() (windows.PROCESS_BASIC_INFORMATION, bool) {
	var info windows.PROCESS_BASIC_INFORMATION
	var retLen uint32
	status := windows.NtQueryInformationProcess(
		p.handle.Raw(), windows.ProcessBasicInformation,
		unsafe.Pointer(&info), uint32(unsafe.Sizeof(info)), &retLen,
	)
	if status != nil {
		return windows.PROCESS_BASIC_INFORMATION{}, false
	}
	return info, true
}

// Name returns the base name of the process's image path.
func (p *Process) Name() string {
	path := p.ImagePath()
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// ImagePath returns the resolved full path to the executable backing this
// process, via QueryFullProcessImageNameW. Spec §9 open question (b)
// resolves this as the canonical accessor over the deprecated
// GetModuleFileNameExW (get_module_name/get_module_path in the original
// source), which is documented there as unreliable under WOW64.
func (p *Process) ImagePath() string {
	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(p.handle.Raw(), 0, &buf[0], &size); err != nil {
		return ""
	}
	return syscall.UTF16ToString(buf[:size])
}

// CommandLine returns the process's command line, read from its PEB's
// RTL_USER_PROCESS_PARAMETERS.CommandLine (spec §4.6's cmdline()). It
// returns a single-element slice containing the raw command line string,
// since Win32 does not pre-split argv the way execve does; callers that
// need individual arguments should run it through CommandLineToArgv
// themselves.
func (p *Process) CommandLine() []string {
	cmdline, ok := p.readCommandLine()
	if !ok || cmdline == "" {
		return []string{}
	}
	return []string{cmdline}
}

// IsWow64 reports whether the process is a 32-bit process running under
// WOW64 on a 64-bit host.
func (p *Process) IsWow64() bool {
	var wow64 bool
	if err := windows.IsWow64Process(p.handle.Raw(), &wow64); err != nil {
		return false
	}
	return wow64
}

// wow64 is the unexported form of IsWow64 used by the cross-platform Info
// helper in process.go.
func (p *Process) wow64() bool { return p.IsWow64() }

// Terminate terminates the process with exit code 0.
func (p *Process) Terminate() error {
	return newOsError("TerminateProcess", 0, windows.TerminateProcess(p.handle.Raw(), 0))
}

// GetExitCode returns the process's exit code and true if the process has
// exited; GetExitCodeProcess reports STILL_ACTIVE (259) for a live process,
// which this method surfaces as (0, false) rather than a misleading exit
// code of 259.
func (p *Process) GetExitCode() (int, bool) {
	const stillActive = 259 // STILL_ACTIVE
	var code uint32
	if err := windows.GetExitCodeProcess(p.handle.Raw(), &code); err != nil {
		return 0, false
	}
	if code == stillActive {
		return 0, false
	}
	return int(code), true
}

// Close releases the underlying process handle. Close is idempotent.
func (p *Process) Close() error {
	return p.handle.Close()
}
