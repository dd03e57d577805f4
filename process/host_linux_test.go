//go:build linux

package process

import (
	"os"
	"testing"
)

// TestInfoReadsRunningProcess exercises Info against the real, currently
// running test binary rather than a fixture, the same way
// memory_linux_test.go reads the real process's own memory: there is no
// meaningful procfs fixture for "the process actually executing this test".
func TestInfoReadsRunningProcess(t *testing.T) {
	pid := os.Getpid()
	info, err := Info(pid)
	if err != nil {
		t.Fatalf("unexpected error reading self: %s", err)
	}
	if info.PID != pid {
		t.Logf("expected PID %d, got %d", pid, info.PID)
		t.Fail()
	}
	if info.Name == "" {
		t.Logf("expected a non-empty process name for the running test binary")
		t.Fail()
	}
	if info.Wow64 {
		t.Logf("expected Wow64 to always be false on Linux")
		t.Fail()
	}
}

func TestLocalHostReadsRunningProcess(t *testing.T) {
	pid := os.Getpid()
	snap, err := LocalHost(pid)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if snap.Process.PID != pid {
		t.Logf("expected snapshot for pid %d, got %d", pid, snap.Process.PID)
		t.Fail()
	}
	if snap.Host.Name == "" {
		t.Logf("expected a non-empty host OS name")
		t.Fail()
	}
}
