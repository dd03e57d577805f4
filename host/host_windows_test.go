//go:build windows

package host

import "testing"

func TestWindowsReaderGetOSReportsAVersion(t *testing.T) {
	r := NewWindowsReader()
	os, err := r.GetOS()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if os.Version == "" {
		t.Logf("expected a non-empty OS version")
		t.Fail()
	}
}

func TestWindowsReaderGetHardwareReportsCPUCount(t *testing.T) {
	r := NewWindowsReader()
	hw, err := r.GetHardware()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if hw.CPU.CPUCount < 1 {
		t.Logf("expected at least one logical CPU, got %d", hw.CPU.CPUCount)
		t.Fail()
	}
}
