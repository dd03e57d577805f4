//go:build windows

package process

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ProcessInfoIter is a lazy, single-threaded sequence of ProcessInfo backed
// by a TH32CS_SNAPPROCESS toolhelp snapshot, read one entry per Next call
// the same way the Linux implementation consumes its pid list (spec §4.4).
// The snapshot itself is taken eagerly at construction — toolhelp has no
// cheaper way to discover the set of live pids — but per-process detail
// (image path, command line, wow64) is only queried lazily, on Next, so a
// caller that abandons the iteration early never pays for processes it
// never inspected.
type ProcessInfoIter struct {
	snapshot windows.Handle
	entry    windows.ProcessEntry32
	access   AccessRights
	started  bool
	done     bool
}

// EnumProcess returns a lazy iterator over every process visible via the
// toolhelp snapshot.
func EnumProcess(opts ...Config) *ProcessInfoIter {
	cfg := mergeConfig(opts)
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return &ProcessInfoIter{done: true}
	}
	it := &ProcessInfoIter{snapshot: snap, access: cfg.Access}
	it.entry.Size = uint32(unsafe.Sizeof(it.entry))
	return it
}

// Next advances the iterator, returning the next ProcessInfo and true, or a
// zero ProcessInfo and false once the snapshot is exhausted.
func (it *ProcessInfoIter) Next() (ProcessInfo, bool) {
	if it.done {
		return ProcessInfo{}, false
	}

	var err error
	if !it.started {
		it.started = true
		err = windows.Process32First(it.snapshot, &it.entry)
	} else {
		err = windows.Process32Next(it.snapshot, &it.entry)
	}
	if err != nil {
		it.done = true
		windows.CloseHandle(it.snapshot)
		return ProcessInfo{}, false
	}

	pid := ProcessId(it.entry.ProcessID)
	name := syscall.UTF16ToString(it.entry.ExeFile[:])
	info := ProcessInfo{PID: pid, Name: name}

	// Best-effort enrichment: a process this caller can't query (protected
	// process, access denied) still gets a PID and short name, matching
	// spec §4.4's "a pid that disappears mid-walk is skipped, not fatal" —
	// here the failure mode is reduced rights rather than exit, but the
	// tolerance is the same.
	if p, err := Open(pid, Config{Access: it.access}); err == nil {
		info.ImagePath = p.ImagePath()
		info.CommandLine = p.CommandLine()
		info.Wow64 = p.IsWow64()
		p.Close()
	}
	return info, true
}

// ThreadIter is a lazy, single-threaded sequence of thread ids belonging to
// one process, backed by a TH32CS_SNAPTHREAD snapshot filtered by owner
// pid. Toolhelp has no way to snapshot a single process's threads, so the
// filter happens client-side, exactly as the original source's
// enum_thread().filter(|x| x.pid() == pid) does.
type ThreadIter struct {
	snapshot windows.Handle
	entry    windows.ThreadEntry32
	pid      ProcessId
	started  bool
	done     bool
}

// EnumThread returns a lazy iterator over the process's threads.
func (p *Process) EnumThread() *ThreadIter {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPTHREAD, 0)
	if err != nil {
		return &ThreadIter{done: true}
	}
	it := &ThreadIter{snapshot: snap, pid: p.PID()}
	it.entry.Size = uint32(unsafe.Sizeof(it.entry))
	return it
}

// Next advances the iterator, returning the next thread id and true, or 0
// and false once exhausted.
func (it *ThreadIter) Next() (ThreadId, bool) {
	for {
		if it.done {
			return 0, false
		}
		var err error
		if !it.started {
			it.started = true
			err = windows.Thread32First(it.snapshot, &it.entry)
		} else {
			err = windows.Thread32Next(it.snapshot, &it.entry)
		}
		if err != nil {
			it.done = true
			windows.CloseHandle(it.snapshot)
			return 0, false
		}
		if ThreadId(it.entry.OwnerProcessID) == it.pid {
			return ThreadId(it.entry.ThreadID), true
		}
	}
}

// ModuleIter is a lazy, single-threaded sequence of Module backed by a
// TH32CS_SNAPMODULE snapshot scoped to one process.
type ModuleIter struct {
	snapshot windows.Handle
	entry    windows.ModuleEntry32
	started  bool
	done     bool
}

// EnumModule returns a lazy iterator over the process's loaded modules.
func (p *Process) EnumModule() (*ModuleIter, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(p.PID()))
	if err != nil {
		return nil, newOsError("CreateToolhelp32Snapshot", 0, err)
	}
	it := &ModuleIter{snapshot: snap}
	it.entry.Size = uint32(unsafe.Sizeof(it.entry))
	return it, nil
}

// Next advances the iterator, returning the next Module and true, or a zero
// Module and false once exhausted. Unlike the Linux implementation, which
// folds adjacent /proc/<pid>/maps regions sharing a backing file into one
// Module, toolhelp already reports one entry per loaded module, so no
// folding is needed here.
func (it *ModuleIter) Next() (Module, bool) {
	if it.done {
		return Module{}, false
	}

	var err error
	if !it.started {
		it.started = true
		err = windows.Module32First(it.snapshot, &it.entry)
	} else {
		err = windows.Module32Next(it.snapshot, &it.entry)
	}
	if err != nil {
		it.done = true
		windows.CloseHandle(it.snapshot)
		return Module{}, false
	}

	id := it.entry.ModuleID
	return Module{
		Base: uint64(it.entry.ModBaseAddr),
		Size: uint64(it.entry.ModBaseSize),
		Name: syscall.UTF16ToString(it.entry.Module[:]),
		Path: syscall.UTF16ToString(it.entry.ExePath[:]),
		ID:   &id,
	}, true
}

// FindModuleByName returns the first module whose name matches query,
// case-insensitively (spec §4.5: Windows module-name comparisons are
// case-insensitive, matching .eq_ignore_ascii_case in the original source).
func (p *Process) FindModuleByName(name string) (Module, bool) {
	it, err := p.EnumModule()
	if err != nil {
		return Module{}, false
	}
	for {
		m, ok := it.Next()
		if !ok {
			return Module{}, false
		}
		if equalFoldASCII(m.Name, name) {
			return m, true
		}
	}
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
