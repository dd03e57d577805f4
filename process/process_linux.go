//go:build linux

package process

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// Config carries Linux-specific settings for opening a Process. The
// variadic argument accepted by the constructors below exists only to make
// Config optional; passing more than one is undefined behavior beyond "the
// last one wins" — mirrors the teacher's NewLinuxInspector(opts
// ...LinuxInspectorConfig) convention.
type Config struct {
	// ProcfsRoot overrides the location of the procfs mount. Defaults to
	// /proc. Tests use this to point at a fabricated directory tree.
	ProcfsRoot string
}

const defaultProcfsRoot = "/proc"

func mergeConfig(opts []Config) Config {
	if len(opts) == 0 {
		return Config{ProcfsRoot: defaultProcfsRoot}
	}
	c := opts[len(opts)-1]
	if c.ProcfsRoot == "" {
		c.ProcfsRoot = defaultProcfsRoot
	}
	return c
}

// Process is an opened handle to a live (or recently live) OS process. It
// is safe to share across goroutines for read-only operations; the lazily
// opened memory-read channel is guarded so concurrent first-callers don't
// race to open it twice.
type Process struct {
	id     ProcessId
	config Config

	memMu     sync.RWMutex
	memHandle Handle

	closeOnce sync.Once
}

func (p *Process) procfsRoot() string {
	if p.config.ProcfsRoot == "" {
		return defaultProcfsRoot
	}
	return p.config.ProcfsRoot
}

func (p *Process) procPath(elem ...string) string {
	parts := append([]string{p.procfsRoot(), strconv.Itoa(p.id)}, elem...)
	return filepath.Join(parts...)
}

// Open acquires a Process for pid, verifying /proc/<pid> exists. It returns
// ErrNotFound if the process does not exist.
func Open(pid ProcessId, opts ...Config) (*Process, error) {
	cfg := mergeConfig(opts)
	p := &Process{id: pid, config: cfg}
	if _, err := os.Stat(p.procPath()); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		if os.IsPermission(err) {
			return nil, ErrAccessDenied
		}
		return nil, newOsError("stat", 0, err)
	}
	return p, nil
}

// FromPID is a Linux-specific shortcut identical to Open: it verifies
// /proc/<pid> exists and returns a Process for it.
func FromPID(pid ProcessId, opts ...Config) (*Process, error) {
	return Open(pid, opts...)
}

// FromComm returns the Process for the first pid whose /proc/<pid>/comm
// matches name exactly.
func FromComm(name string, opts ...Config) (*Process, error) {
	cfg := mergeConfig(opts)
	pids, err := enumeratePids(cfg.ProcfsRoot)
	if err != nil {
		return nil, err
	}
	for _, pid := range pids {
		if n, err := readComm(cfg.ProcfsRoot, pid); err == nil && n == name {
			return FromPID(pid, cfg)
		}
	}
	return nil, ErrNotFound
}

// FromName returns the Process for the first pid in enumeration order whose
// executable short name equals name under Linux's case-sensitive equality
// rule. Executable short name here means the basename of argv[0] (spec
// §4.6: "first match in enum_process whose executable name equals name").
func FromName(name string, opts ...Config) (*Process, error) {
	cfg := mergeConfig(opts)
	it := EnumProcess(cfg)
	for {
		info, ok := it.Next()
		if !ok {
			break
		}
		if len(info.CommandLine) == 0 {
			continue
		}
		if filepath.Base(info.CommandLine[0]) == name {
			return FromPID(info.PID, cfg)
		}
	}
	return nil, ErrNotFound
}

// Current returns a Process referring to the calling process. It panics
// only if the OS denies the calling process access to its own /proc entry,
// which spec §4.6 treats as a programmer error.
func Current(opts ...Config) *Process {
	p, err := FromPID(unix.Getpid(), opts...)
	if err != nil {
		panic("process: Current: " + err.Error())
	}
	return p
}

// PID returns the process ID this Process was opened with.
func (p *Process) PID() ProcessId { return p.id }

// Name returns the process's short name from /proc/<pid>/comm. It returns
// an empty string if the process has exited or comm cannot be read.
func (p *Process) Name() string {
	n, err := readComm(p.procfsRoot(), p.id)
	if err != nil {
		return ""
	}
	return n
}

// CommandLine returns argv for the process, parsed from
// /proc/<pid>/cmdline. Trailing empty tokens are trimmed (spec I5); the
// result is empty, never nil, if the process has exited or cmdline is
// unreadable.
func (p *Process) CommandLine() []string {
	data, err := os.ReadFile(p.procPath("cmdline"))
	if err != nil {
		return []string{}
	}
	return splitCmdline(data)
}

// splitCmdline splits a raw /proc/<pid>/cmdline payload on NUL bytes and
// trims trailing empty tokens, per spec I5 and testable property 4.
func splitCmdline(data []byte) []string {
	parts := strings.Split(string(data), "\x00")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if parts == nil {
		return []string{}
	}
	return parts
}

// ImagePath returns the resolved target of /proc/<pid>/exe, i.e. the path
// to the executable backing this process. Returns "" if the link cannot be
// read (permission denied, or the process is a kernel thread with no
// backing executable).
func (p *Process) ImagePath() string {
	link, err := os.Readlink(p.procPath("exe"))
	if err != nil {
		return ""
	}
	return link
}

// wow64 always reports false on Linux, which has no 32-on-64 compatibility
// layer comparable to WOW64.
func (p *Process) wow64() bool { return false }

// Terminate sends SIGKILL to the process.
func (p *Process) Terminate() error {
	return newOsError("kill", 0, unix.Kill(p.id, unix.SIGKILL))
}

// GetExitCode always returns (0, false) on Linux: the exit code is not
// observable through procfs once a process has fully exited (its
// /proc/<pid> entry disappears), and zombie processes are not inspected
// for one either. Higher layers that need a reliable exit code should reap the child
// themselves via the Linux wait loop (see Tracer.Wait).
func (p *Process) GetExitCode() (int, bool) {
	return 0, false
}

// Close releases resources owned by this Process: the cached memory-read
// channel, if one was opened. Close is idempotent.
func (p *Process) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closeMemChannel()
	})
	return err
}

func enumeratePids(procfsRoot string) ([]ProcessId, error) {
	if procfsRoot == "" {
		procfsRoot = defaultProcfsRoot
	}
	entries, err := os.ReadDir(procfsRoot)
	if err != nil {
		return nil, newOsError("readdir", 0, err)
	}
	pids := make([]ProcessId, 0, len(entries))
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

func readComm(procfsRoot string, pid ProcessId) (string, error) {
	if procfsRoot == "" {
		procfsRoot = defaultProcfsRoot
	}
	data, err := os.ReadFile(filepath.Join(procfsRoot, strconv.Itoa(pid), "comm"))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
