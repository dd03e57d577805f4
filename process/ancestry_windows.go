//go:build windows

package process

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ParentPID returns the pid of this process's parent, read from the
// toolhelp process snapshot entry matching this pid. Unlike Linux's
// /proc/<pid>/stat, Win32 has no direct query for "my parent's pid" outside
// of the snapshot walk, so this scans it once per call the same way
// ProcessInfoIter does.
func (p *Process) ParentPID() (ProcessId, bool) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, false
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	pid := uint32(p.PID())
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		if entry.ProcessID == pid {
			return ProcessId(entry.ParentProcessID), true
		}
	}
	return 0, false
}

// IsKernelThread always reports false on Windows: every Win32 process in
// the toolhelp snapshot corresponds to a user-mode image, there is no
// Windows analogue to a Linux kernel thread visible through this API.
func (p *Process) IsKernelThread() bool {
	return false
}

// BinarySHA256 returns the hex-encoded SHA-256 digest of the executable
// backing this process, resolved via ImagePath.
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
// parent, by repeatedly opening each ancestor and asking it for its own
// parent. The walk stops when a pid cannot be opened (it has exited, or the
// caller lacks rights) or a cycle is detected.
func Ancestors(pid ProcessId, opts ...Config) []ProcessId {
	cfg := mergeConfig(opts)
	chain := []ProcessId{}
	seen := map[ProcessId]bool{}
	current := pid
	for {
		p, err := Open(current, cfg)
		if err != nil {
			return chain
		}
		ppid, ok := p.ParentPID()
		p.Close()
		if !ok || seen[ppid] || ppid == current {
			return chain
		}
		chain = append(chain, ppid)
		seen[ppid] = true
		current = ppid
	}
}
