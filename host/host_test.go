package host

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetHardware(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, CPUInfoFilePath), []byte(
		"processor\t: 0\nmodel name\t: fake cpu\n\n"+
			"processor\t: 1\nmodel name\t: fake cpu\n\n"+
			"processor\t: 2\nmodel name\t: fake cpu\n\n"+
			"processor\t: 3\nmodel name\t: fake cpu\n\n"+
			"processor\t: 4\nmodel name\t: fake cpu\n\n"+
			"processor\t: 5\nmodel name\t: fake cpu\n\n"+
			"processor\t: 6\nmodel name\t: fake cpu\n\n"+
			"processor\t: 7\nmodel name\t: fake cpu\n\n"), 0644); err != nil {
		t.Fatalf("failed writing fake cpuinfo: %s", err)
	}

	lr := NewLinuxReader(LinuxReaderConfig{ProcDirPath: root})
	hw, err := lr.GetHardware()
	if err != nil {
		t.Fatalf("failed to make GetHardware call. Error was: %s", err)
	}
	if hw.CPU.CPUCount != 8 {
		t.Logf("failed valid CPU count check. expected: %d, actual: %d.", 8, hw.CPU.CPUCount)
		t.Fail()
	}
}

func TestGetHostID(t *testing.T) {
	root := t.TempDir()
	midPath := filepath.Join(root, "machine-id")
	if err := os.WriteFile(midPath, []byte("abc123xyz\n"), 0644); err != nil {
		t.Fatalf("failed writing fake machine-id: %s", err)
	}

	lr := NewLinuxReader(LinuxReaderConfig{MachineIDPath: midPath})
	id, err := lr.GetHostID()
	if err != nil {
		t.Fatalf("failed resolving machine id. Error was: %s", err)
	}
	if want := "abc123xyz"; id != want {
		t.Logf("failed with unexpected machine id. Expected: %s, actual: %s", want, id)
		t.Fail()
	}
}

func TestGetHostIDMissingFileErrors(t *testing.T) {
	root := t.TempDir()
	lr := NewLinuxReader(LinuxReaderConfig{MachineIDPath: filepath.Join(root, "missing")})
	if _, err := lr.GetHostID(); err == nil {
		t.Logf("expected an error for a missing machine-id file")
		t.Fail()
	}
}

func TestGetKernelReadsOSReleaseFile(t *testing.T) {
	root := t.TempDir()
	kernelPath := filepath.Join(root, OSKernelFilePath)
	if err := os.MkdirAll(filepath.Dir(kernelPath), 0755); err != nil {
		t.Fatalf("failed creating fake sys/kernel dir: %s", err)
	}
	if err := os.WriteFile(kernelPath, []byte("6.1.0-fake\n"), 0644); err != nil {
		t.Fatalf("failed writing fake osrelease: %s", err)
	}

	lr := NewLinuxReader(LinuxReaderConfig{ProcDirPath: root})
	k, err := lr.GetKernel()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if k.Version != "6.1.0-fake" {
		t.Logf("expected kernel version %q, got %q", "6.1.0-fake", k.Version)
		t.Fail()
	}
}

func TestParseOSRelease(t *testing.T) {
	data := []byte("ID=ubuntu\nVERSION=\"22.04\"\nNAME=\"Ubuntu\"\n")
	m := parseOSRelease(data)
	if m["ID"] != "ubuntu" {
		t.Logf("expected ID ubuntu, got %q", m["ID"])
		t.Fail()
	}
	if sanitizeOSVersion(m["VERSION"]) != "22.04" {
		t.Logf("expected VERSION 22.04, got %q", sanitizeOSVersion(m["VERSION"]))
		t.Fail()
	}
}
