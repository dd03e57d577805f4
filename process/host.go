package process

import (
	"fmt"
	"runtime"

	"github.com/arctir/coreinspect/host"
)

// HostSnapshot pairs a ProcessInfo with the metadata of the machine that
// assigned its PID. A PID is only meaningful relative to the host that
// issued it, so diagnostic output that crosses machine boundaries should
// carry both.
type HostSnapshot struct {
	Host    host.OS
	Kernel  host.Kernel
	Machine host.Hardware
	HostID  string
	Process ProcessInfo
}

// LocalHost gathers a [HostSnapshot] for pid on the local machine, using the
// platform-appropriate [host.Reader] and this package's own process
// accessors. It returns an error naming whichever reader call failed first.
func LocalHost(pid ProcessId) (*HostSnapshot, error) {
	reader, err := newHostReader()
	if err != nil {
		return nil, err
	}

	osInfo, err := reader.GetOS()
	if err != nil {
		return nil, fmt.Errorf("process: LocalHost: %w", err)
	}
	kernel, err := reader.GetKernel()
	if err != nil {
		return nil, fmt.Errorf("process: LocalHost: %w", err)
	}
	hw, err := reader.GetHardware()
	if err != nil {
		return nil, fmt.Errorf("process: LocalHost: %w", err)
	}
	hostID, err := reader.GetHostID()
	if err != nil {
		return nil, fmt.Errorf("process: LocalHost: %w", err)
	}

	info, err := Info(pid)
	if err != nil {
		return nil, fmt.Errorf("process: LocalHost: %w", err)
	}

	return &HostSnapshot{
		Host:    *osInfo,
		Kernel:  *kernel,
		Machine: *hw,
		HostID:  hostID,
		Process: info,
	}, nil
}

// newHostReader constructs the platform-appropriate host.Reader. runtime.GOOS
// is used rather than a build-tag split here because host.Reader
// implementations are already platform-gated in the host package; this
// function is the one place that needs to pick between them at runtime.
func newHostReader() (host.Reader, error) {
	switch runtime.GOOS {
	case "linux":
		r := host.NewLinuxReader(host.LinuxReaderConfig{})
		return &r, nil
	case "windows":
		r := host.NewWindowsReader()
		return &r, nil
	default:
		return nil, fmt.Errorf("process: LocalHost: unsupported GOOS %q", runtime.GOOS)
	}
}
