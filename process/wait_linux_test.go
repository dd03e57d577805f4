//go:build linux

package process

import (
	"os/exec"
	"runtime"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"
)

// TestTracerWaitClassifiesExecAndExit drives a real traced child through
// the wait loop: PTRACE_TRACEME (via exec.Cmd's SysProcAttr) stops the
// child right after its execve. PTRACE_O_TRACEEXEC is not set, so that stop
// is a plain SIGTRAP which Wait reports as WaitStop; the check accepts
// WaitExec as well. Once resumed, the child runs /bin/true to completion
// and Wait must report WaitExit(0). ptrace requires the waiting thread to be the same OS thread
// that observed the fork, hence LockOSThread.
func TestTracerWaitClassifiesExecAndExit(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	path, err := exec.LookPath("true")
	if err != nil {
		t.Fatalf("could not locate the \"true\" binary on PATH: %s", err)
	}

	cmd := exec.Command(path)
	cmd.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed starting traced child: %s", err)
	}

	tracer := NewTracer()

	tid, status, err := tracer.Wait(0)
	if err != nil {
		t.Fatalf("unexpected error on first wait (exec-stop): %s", err)
	}
	if status.Kind != WaitStop && status.Kind != WaitExec {
		t.Logf("expected the child's first reported stop to be WaitStop or WaitExec, got %v", status)
		t.Fail()
	}

	if err := unix.PtraceCont(tid, 0); err != nil {
		t.Fatalf("failed resuming traced child: %s", err)
	}

	_, status, err = tracer.Wait(0)
	if err != nil {
		t.Fatalf("unexpected error on second wait (exit): %s", err)
	}
	if status.Kind != WaitExit {
		t.Logf("expected WaitExit after the child ran to completion, got %v", status)
		t.Fail()
	}
	if status.Code != 0 {
		t.Logf("expected exit code 0 from \"true\", got %d", status.Code)
		t.Fail()
	}
}
