//go:build linux

package process

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// ProcessInfoIter is a lazy, single-threaded sequence of ProcessInfo. It
// snapshots the set of pids at construction (one os.ReadDir call, the same
// approach the teacher's getPIDsFromProcfs takes) and introspects each pid
// lazily, one per Next call. A process that disappears mid-walk is skipped,
// never aborts the iteration (spec §4.4).
type ProcessInfoIter struct {
	procfsRoot string
	pids       []ProcessId
	idx        int
}

// EnumProcess returns a lazy iterator over every process visible in
// procfs.
func EnumProcess(opts ...Config) *ProcessInfoIter {
	cfg := mergeConfig(opts)
	pids, err := enumeratePids(cfg.ProcfsRoot)
	if err != nil {
		return &ProcessInfoIter{procfsRoot: cfg.ProcfsRoot}
	}
	sort.Ints(pids)
	return &ProcessInfoIter{procfsRoot: cfg.ProcfsRoot, pids: pids}
}

// Next advances the iterator, returning the next ProcessInfo and true, or a
// zero ProcessInfo and false once the sequence is exhausted. Per-pid
// failures (permission denied, the process exited) are tolerated by
// skipping to the next pid rather than failing the whole enumeration.
func (it *ProcessInfoIter) Next() (ProcessInfo, bool) {
	for it.idx < len(it.pids) {
		pid := it.pids[it.idx]
		it.idx++
		info, ok := loadProcessInfo(it.procfsRoot, pid)
		if ok {
			return info, true
		}
	}
	return ProcessInfo{}, false
}

func loadProcessInfo(procfsRoot string, pid ProcessId) (ProcessInfo, bool) {
	if procfsRoot == "" {
		procfsRoot = defaultProcfsRoot
	}
	if _, err := os.Stat(filepath.Join(procfsRoot, strconv.Itoa(pid))); err != nil {
		return ProcessInfo{}, false
	}
	name, _ := readComm(procfsRoot, pid)
	cmdlineData, _ := os.ReadFile(filepath.Join(procfsRoot, strconv.Itoa(pid), "cmdline"))
	imagePath, _ := os.Readlink(filepath.Join(procfsRoot, strconv.Itoa(pid), "exe"))
	return ProcessInfo{
		PID:         pid,
		Name:        name,
		ImagePath:   imagePath,
		CommandLine: splitCmdline(cmdlineData),
		Wow64:       false,
	}, true
}

// ThreadIter is a lazy, single-threaded sequence of thread ids belonging to
// one process, backed by /proc/<pid>/task.
type ThreadIter struct {
	tids []ThreadId
	idx  int
}

// EnumThread returns a lazy iterator over the process's threads.
func (p *Process) EnumThread() *ThreadIter {
	entries, err := os.ReadDir(p.procPath("task"))
	if err != nil {
		return &ThreadIter{}
	}
	tids := make([]ThreadId, 0, len(entries))
	for _, e := range entries {
		if tid, err := strconv.Atoi(e.Name()); err == nil {
			tids = append(tids, tid)
		}
	}
	sort.Ints(tids)
	return &ThreadIter{tids: tids}
}

// Next advances the iterator, returning the next thread id and true, or 0
// and false once exhausted.
func (it *ThreadIter) Next() (ThreadId, bool) {
	if it.idx >= len(it.tids) {
		return 0, false
	}
	tid := it.tids[it.idx]
	it.idx++
	return tid, true
}

// ModuleIter is a lazy sequence of Modules, produced by folding adjacent
// /proc/<pid>/maps lines that share the same backing path into one Module
// whose base is the minimum start and whose size is the sum of the
// contributing regions' sizes (spec §4.5).
type ModuleIter struct {
	pages MemoryPages
	// pending holds a page already read from pages that belongs to the
	// next module but wasn't part of the one just returned.
	pending *MemoryPage
}

// EnumModule returns a lazy iterator over the process's loaded modules.
func (p *Process) EnumModule() (*ModuleIter, error) {
	pages, err := p.EnumMemory(0)
	if err != nil {
		return nil, err
	}
	return &ModuleIter{pages: pages}, nil
}

// Next advances the iterator, returning the next Module and true, or a
// zero Module and false once exhausted.
func (it *ModuleIter) Next() (Module, bool) {
	var first *MemoryPage
	if it.pending != nil {
		first = it.pending
		it.pending = nil
	} else {
		first = it.nextBacked()
	}
	if first == nil {
		return Module{}, false
	}

	m := Module{
		Base: first.Base,
		Size: first.Size,
		Name: filepath.Base(first.BackingName),
		Path: first.BackingName,
	}

	for {
		next := it.nextBacked()
		if next == nil {
			break
		}
		if next.BackingName != first.BackingName {
			it.pending = next
			break
		}
		m.Size += next.Size
	}

	return m, true
}

// nextBacked returns the next memory page with a non-empty backing name,
// skipping anonymous regions which never contribute to a Module.
func (it *ModuleIter) nextBacked() *MemoryPage {
	for {
		page, ok := it.pages.Next()
		if !ok {
			return nil
		}
		if page.BackingName == "" {
			continue
		}
		p := page
		return &p
	}
}

// FindModuleByName returns the first module whose name equals the query
// under Linux's case-sensitive equality rule.
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
		if m.Name == name {
			return m, true
		}
	}
}

// bufioScannerLines is a small helper kept local to this file: it reads a
// procfs pseudo-file line by line without loading the whole thing, used by
// the memory map parser in memmap_linux.go.
func bufioScannerLines(f *os.File) *bufio.Scanner {
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 4096), 1<<20)
	return s
}
