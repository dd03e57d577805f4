//go:build linux

package process

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParentPID returns the pid of this process's parent, read from field 4 of
// /proc/<pid>/stat. It returns false if stat cannot be read, matching the
// "failures are reported as a short result, never an abort" convention used
// throughout this package.
func (p *Process) ParentPID() (ProcessId, bool) {
	ppid, ok := readStatField(p.procfsRoot(), p.id, 3)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(ppid)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsKernelThread reports whether the process has no backing executable
// image, i.e. /proc/<pid>/exe does not resolve. Kernel threads (kthreadd
// and its children) are the common case; a zombie whose exe link has been
// torn down by the kernel before reaping also reports true here.
func (p *Process) IsKernelThread() bool {
	return p.ImagePath() == ""
}

// BinarySHA256 returns the hex-encoded SHA-256 digest of the executable
// backing this process. It returns an error if the image path cannot be
// resolved (kernel thread, exited process) or the binary cannot be read
// (permission denied, binary replaced on disk since exec).
func (p *Process) BinarySHA256() (string, error) {
	path := p.ImagePath()
	if path == "" {
		return "", ErrNotFound
	}
	f, err := os.Open(path)
	if err != nil {
		return "", newOsError("open", 0, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", newOsError("read", 0, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Ancestors returns pid's ancestor chain, starting with its immediate
// parent and ending at pid 1 (or the last resolvable ancestor, if the chain
// is broken by a pid this caller cannot stat). It returns an empty slice,
// never an error, for a pid with no resolvable parent.
func Ancestors(pid ProcessId, opts ...Config) []ProcessId {
	cfg := mergeConfig(opts)
	chain := []ProcessId{}
	current := pid
	seen := map[ProcessId]bool{}
	for {
		ppidStr, ok := readStatField(cfg.ProcfsRoot, current, 3)
		if !ok {
			return chain
		}
		ppid, err := strconv.Atoi(ppidStr)
		if err != nil || seen[ppid] {
			return chain
		}
		if _, ok := readStatField(cfg.ProcfsRoot, ppid, 3); !ok {
			return chain
		}
		chain = append(chain, ppid)
		if ppid <= 1 {
			return chain
		}
		seen[ppid] = true
		current = ppid
	}
}

// readStatField reads /proc/<pid>/stat and returns the space-separated
// field at index i (0-based). The process name field (index 1) may itself
// contain spaces and parentheses, so only fields after it (i >= 2; ppid is
// index 3) can be requested; splitting starts after the name's last ')'.
func readStatField(procfsRoot string, pid ProcessId, i int) (string, bool) {
	if procfsRoot == "" {
		procfsRoot = defaultProcfsRoot
	}
	data, err := os.ReadFile(filepath.Join(procfsRoot, strconv.Itoa(pid), "stat"))
	if err != nil {
		return "", false
	}
	// The comm field is wrapped in parentheses and may contain spaces; skip
	// past its closing paren before splitting the remainder on spaces.
	closeParen := strings.LastIndexByte(string(data), ')')
	if closeParen < 0 || closeParen+2 >= len(data) {
		return "", false
	}
	fields := strings.Fields(string(data[closeParen+2:]))
	// fields[0] here is stat's field index 2 (state); shift i accordingly.
	idx := i - 2
	if idx < 0 || idx >= len(fields) {
		return "", false
	}
	return fields[idx], true
}
