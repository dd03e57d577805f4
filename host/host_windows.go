//go:build windows

package host

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// cryptographyKeyPath is where Windows stores the per-installation machine
// identifier, mirroring what /etc/machine-id is to Linux.
const cryptographyKeyPath = `SOFTWARE\Microsoft\Cryptography`

// WindowsReader is the Windows-specific implementation of [Reader].
type WindowsReader struct{}

func NewWindowsReader() WindowsReader {
	return WindowsReader{}
}

// GetOS reports the OS name and a dotted major.minor.build version, pulled
// from RtlGetVersion rather than GetVersion/GetVersionEx: both of the
// latter are subject to the application compatibility shim and lie to
// processes that don't carry a manifest declaring support for the running
// release.
func (h *WindowsReader) GetOS() (*OS, error) {
	info := windows.RtlGetVersion()
	return &OS{
		Name:    "windows",
		Version: fmt.Sprintf("%d.%d.%d", info.MajorVersion, info.MinorVersion, info.BuildNumber),
	}, nil
}

// GetKernel reports the NT kernel version backing the OS. Windows has no
// separate kernel/distribution split the way Linux does, so this mirrors
// GetOS's version but keeps the two methods distinct per the [Reader]
// contract.
func (h *WindowsReader) GetKernel() (*Kernel, error) {
	info := windows.RtlGetVersion()
	return &Kernel{
		Type:    "Windows NT",
		Version: fmt.Sprintf("%d.%d.%d", info.MajorVersion, info.MinorVersion, info.BuildNumber),
	}, nil
}

// GetHardware reports the logical CPU count and architecture. There is no
// native GetSystemInfo wrapper in golang.org/x/sys/windows, and runtime.GOARCH
// already reports the architecture the binary was built for, which is what
// callers inspecting siblings of the running process care about, so this
// does not reach for a lazy-DLL call.
func (h *WindowsReader) GetHardware() (*Hardware, error) {
	return &Hardware{
		CPU:          CPUInfo{CPUCount: runtime.NumCPU()},
		Architecture: runtime.GOARCH,
	}, nil
}

// GetHostID returns the installation's MachineGuid from the registry, the
// Windows analogue of /etc/machine-id: both are generated once at install
// time and stable across reboots.
func (h *WindowsReader) GetHostID() (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, cryptographyKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("failed opening %s. Error was: %s", cryptographyKeyPath, err)
	}
	defer k.Close()

	guid, _, err := k.GetStringValue("MachineGuid")
	if err != nil {
		return "", fmt.Errorf("failed resolving MachineGuid. Error was: %s", err)
	}
	return guid, nil
}
