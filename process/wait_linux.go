//go:build linux

package process

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Tracer drives the ptrace-based stop/continue loop described in spec
// §4.7. It holds no per-process state of its own: waitpid(-1, ...) reports
// events for any tracee in the calling thread's wait-queue, so a single
// Tracer can watch every process this OS thread has attached to via
// ptrace(PTRACE_ATTACH, ...) or PTRACE_TRACEME.
type Tracer struct{}

// NewTracer returns a Tracer. There is no configuration: the wait loop is
// always waitpid(-1, ...).
func NewTracer() *Tracer { return &Tracer{} }

// Wait blocks on waitpid(-1, &status, options) and classifies the result
// per spec §4.7:
//
//  1. exited normally -> WaitExit(code)
//  2. killed by signal -> WaitSignal(signo)
//  3. stopped -> inspect the ptrace event code in the upper bits of the raw
//     status; CLONE and EXEC are recognized, anything else is WaitStop(signo)
//  4. continued -> WaitContinue
//  5. anything else -> ErrFatal
//
// A failed PTRACE_GETEVENTMSG after a reported CLONE event indicates a
// broken attachment and is fatal (ErrFatal), as is a status matching none of
// the cases above; a failed wait4 itself is returned as a regular OsError so
// callers can keep tolerating dying targets.
func (t *Tracer) Wait(options int) (ThreadId, WaitStatus, error) {
	var status unix.WaitStatus
	tid, err := unix.Wait4(-1, &status, options, nil)
	if err != nil {
		return 0, WaitStatus{}, newOsError("wait4", 0, err)
	}

	switch {
	case status.Exited():
		return tid, WaitStatus{Kind: WaitExit, Code: status.ExitStatus()}, nil
	case status.Signaled():
		return tid, WaitStatus{Kind: WaitSignal, Code: int(status.Signal())}, nil
	case status.Stopped():
		switch status.TrapCause() {
		case unix.PTRACE_EVENT_CLONE:
			newTid, err := unix.PtraceGetEventMsg(tid)
			if err != nil {
				return tid, WaitStatus{}, fatalf("PTRACE_GETEVENTMSG after clone event: %s", err)
			}
			return tid, WaitStatus{Kind: WaitClone, Code: int(newTid)}, nil
		case unix.PTRACE_EVENT_EXEC:
			return tid, WaitStatus{Kind: WaitExec}, nil
		default:
			return tid, WaitStatus{Kind: WaitStop, Code: int(status.StopSignal())}, nil
		}
	case status.Continued():
		return tid, WaitStatus{Kind: WaitContinue}, nil
	default:
		return tid, WaitStatus{}, fatalf("waitpid returned an unclassifiable status: %#x", uint32(status))
	}
}

// GetRegs returns the full general-purpose register set for tid via
// PTRACE_GETREGS. It returns false on ptrace failure (dead tracee, tid
// never attached).
func (t *Tracer) GetRegs(tid ThreadId) (unix.PtraceRegs, bool) {
	var regs unix.PtraceRegs
	if err := unix.PtraceGetRegs(tid, &regs); err != nil {
		return unix.PtraceRegs{}, false
	}
	return regs, true
}

// SigInfo mirrors the leading, architecture-stable fields of siginfo_t
// (the remainder of the kernel structure is a union whose layout this
// package does not need). It is read via a raw PTRACE_GETSIGINFO call
// rather than a typed wrapper, because golang.org/x/sys/unix does not
// expose one — the same gap the original source's libc::ptrace FFI call
// fills directly.
type SigInfo struct {
	Signo int32
	Errno int32
	Code  int32
	_     int32 // alignment padding to match siginfo_t's 8-byte-aligned union
}

// SigInfo returns the siginfo_t associated with the tracee's most recent
// stop via PTRACE_GETSIGINFO. It returns false on ptrace failure.
func (t *Tracer) SigInfo(tid ThreadId) (SigInfo, bool) {
	var info SigInfo
	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, uintptr(unix.PTRACE_GETSIGINFO), uintptr(tid), 0, uintptr(unsafe.Pointer(&info)), 0, 0)
	if errno != 0 {
		return SigInfo{}, false
	}
	return info, true
}

