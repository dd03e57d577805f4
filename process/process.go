// Package process is Arctir's process inspection and control substrate. It
// gives higher layers (symbol resolution, breakpoint management, scripting,
// UI) a uniform way to enumerate processes, threads, and loaded modules,
// read and write the virtual memory of another live process, and, on Linux,
// drive a ptrace-based stop/continue loop.
//
// The package is split by build tag: files ending in _linux.go implement the
// contract on top of procfs and ptrace, files ending in _windows.go
// implement it on top of the Win32 toolhelp / ReadProcessMemory / PEB model.
// Callers should only ever need the platform-agnostic types and functions
// declared in this file.
package process

import "fmt"

// MaxExceptionParameters bounds the number of parameters carried by a
// Windows EXCEPTION_RECORD.
const MaxExceptionParameters = 15

// MemoryPage.State and .Protect are expressed using the Win32
// MEM_*/PAGE_* numeric space on both platforms, so a caller that only knows
// the Windows constants can still interpret a Linux MemoryPage. Linux's
// procfs maps parser translates rwxp permission strings into the nearest
// PAGE_* constant; every mapped region in /proc/<pid>/maps is, by
// definition, committed.
const (
	memStateCommit  = 0x1000 // MEM_COMMIT
	memStateReserve = 0x2000 // MEM_RESERVE
	memStateFree    = 0x10000 // MEM_FREE

	pageNoAccess             = 0x01
	pageReadOnly             = 0x02
	pageReadWrite            = 0x04
	pageExecute              = 0x10
	pageExecuteRead          = 0x20
	pageExecuteReadWrite     = 0x40
)

// ProcessId and ThreadId are OS-assigned identifiers. A ProcessId is unique
// among live processes at any instant and may be reused after exit.
// ThreadId shares representation with ProcessId; on Linux, threads share
// the owning process's pid namespace, on Windows threads have a distinct
// namespace per host.
type ProcessId = int
type ThreadId = int

// MemoryPage is an immutable snapshot of one virtual memory region,
// observed at a single point in time.
type MemoryPage struct {
	Base             uint64
	Size             uint64
	AllocationBase   uint64
	State            uint32
	Type             uint32
	Protect          uint32
	AllocationProtect uint32
	// BackingName is the file or pseudo-file backing this region (e.g. a
	// shared object path, "[heap]", "[stack]"), empty when anonymous.
	BackingName string
}

// IsCommit reports whether the region is backed by storage, as opposed to
// merely reserved address space.
func (m MemoryPage) IsCommit() bool {
	return m.State == memStateCommit
}

// Module represents one mapped image within a process's address space.
type Module struct {
	Base uint64
	Size uint64
	Name string
	Path string
	// ID is platform-specific (Windows toolhelp module id); nil on Linux.
	ID *uint32
}

// Range returns the half-open interval [Base, Base+Size) this module
// occupies in its process's address space.
func (m Module) Range() (lo, hi uint64) {
	return m.Base, m.Base + m.Size
}

// ProcessInfo is a snapshot record produced by process enumeration. It is
// never mutated after construction.
type ProcessInfo struct {
	PID         ProcessId
	Name        string
	ImagePath   string
	CommandLine []string
	Wow64       bool
}

// WaitKind classifies the outcome of a single Linux wait() call.
type WaitKind int

const (
	// WaitExit means the thread group leader exited normally, Code is its
	// exit status.
	WaitExit WaitKind = iota
	// WaitSignal means the process was killed by a signal, Code is the
	// signal number.
	WaitSignal
	// WaitStop means the tracee stopped delivering a signal, Code is the
	// stopping signal number.
	WaitStop
	// WaitClone means a new thread was created via clone(2), Code is the
	// new thread's tid.
	WaitClone
	// WaitExec means the tracee completed an execve(2).
	WaitExec
	// WaitContinue means a stopped tracee was resumed via SIGCONT.
	WaitContinue
)

func (k WaitKind) String() string {
	switch k {
	case WaitExit:
		return "Exit"
	case WaitSignal:
		return "Signal"
	case WaitStop:
		return "Stop"
	case WaitClone:
		return "Clone"
	case WaitExec:
		return "Exec"
	case WaitContinue:
		return "Continue"
	default:
		return "Unknown"
	}
}

// WaitStatus is the classified result of one waitpid(2) call. Code's
// meaning depends on Kind: exit status for WaitExit, signal number for
// WaitSignal and WaitStop, new tid for WaitClone, unused otherwise.
type WaitStatus struct {
	Kind WaitKind
	Code int
}

func (w WaitStatus) String() string {
	switch w.Kind {
	case WaitExit:
		return fmt.Sprintf("Exit(%d)", w.Code)
	case WaitSignal:
		return fmt.Sprintf("Signal(%d)", w.Code)
	case WaitStop:
		return fmt.Sprintf("Stop(%d)", w.Code)
	case WaitClone:
		return fmt.Sprintf("Clone(%d)", w.Code)
	default:
		return w.Kind.String()
	}
}

// ExceptionRecord mirrors the fixed layout of a Win32 EXCEPTION_RECORD,
// trimmed to the fields a debugger needs. Produced per debug event.
type ExceptionRecord struct {
	Code              uint32
	Flags             uint32
	ChainedRecordAddr uint64
	Address           uint64
	ParamCount        uint32
	Params            [MaxExceptionParameters]uint64
}

// Info opens pid, reads its name, image path, command line, and wow64
// status through the platform's Process accessors, and returns the result
// as a ProcessInfo. Unlike EnumProcess's Next, which tolerates a
// disappeared pid by skipping it, Info reports Open's error directly since
// there is only one pid to resolve.
func Info(pid ProcessId) (ProcessInfo, error) {
	p, err := Open(pid)
	if err != nil {
		return ProcessInfo{}, err
	}
	defer p.Close()

	return ProcessInfo{
		PID:         pid,
		Name:        p.Name(),
		ImagePath:   p.ImagePath(),
		CommandLine: p.CommandLine(),
		Wow64:       p.wow64(),
	}, nil
}

// AccessRights requests a subset of OS-level rights when opening a process.
// A zero value requests the platform's "all access" default.
type AccessRights uint32

const (
	// AccessAll requests full query+read+write access where permitted by
	// the OS. It is the default used by Open when no rights are given.
	AccessAll AccessRights = 0
	// AccessQuery requests only the ability to query process metadata
	// (name, image path, exit code).
	AccessQuery AccessRights = 1 << iota
	// AccessRead requests the ability to read the target's memory.
	AccessRead
	// AccessWrite requests the ability to write the target's memory and
	// change page protections.
	AccessWrite
)
