//go:build windows

package process

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/windows"
)

// imageDosSignature and imageNtSignature are the magic values every valid
// PE image begins with ("MZ" and "PE\0\0"), used to validate a module
// header read out of another process's memory before trusting its fields
// (spec §4.5's read_nt_header).
const (
	imageDosSignature = 0x5A4D     // "MZ"
	imageNtSignature  = 0x00004550 // "PE\0\0"
)

// ReadNTHeader validates and returns the file offset of the NT header for
// the module mapped at base in p's address space, by reading the DOS
// header at base and checking both the DOS and (at base+e_lfanew) the NT
// signature. It returns false if either signature is wrong or either read
// comes back short, the same two-step validation the original source's
// ReadValue impls for IMAGE_DOS_HEADER/IMAGE_NT_HEADERS perform.
func (p *Process) ReadNTHeader(base uint64) (ntHeaderOffset int32, ok bool) {
	var dosBuf [64]byte
	if got := p.Read(base, dosBuf[:]); len(got) < 64 {
		return 0, false
	}
	magic := binary.LittleEndian.Uint16(dosBuf[0:2])
	if magic != imageDosSignature {
		return 0, false
	}
	lfanew := int32(binary.LittleEndian.Uint32(dosBuf[60:64]))
	if lfanew <= 0 {
		return 0, false
	}

	var sigBuf [4]byte
	if got := p.Read(base+uint64(lfanew), sigBuf[:]); len(got) < 4 {
		return 0, false
	}
	if binary.LittleEndian.Uint32(sigBuf[:]) != imageNtSignature {
		return 0, false
	}
	return lfanew, true
}

// readCommandLine reads the process's command line by walking its PEB:
// PEB.ProcessParameters -> RTL_USER_PROCESS_PARAMETERS.CommandLine, a
// UNICODE_STRING whose Buffer points at a further block of the target's
// memory (spec §4.6's cmdline(), following the original source's
// FIELD_OFFSET-based reads).
func (p *Process) readCommandLine() (string, bool) {
	info, ok := p.basicInformation()
	if !ok || info.PebBaseAddress == nil {
		return "", false
	}
	pebAddr := uint64(uintptr(unsafe.Pointer(info.PebBaseAddress)))

	var peb windows.PEB
	buf := make([]byte, unsafe.Sizeof(peb))
	if got := p.Read(pebAddr, buf); len(got) < len(buf) {
		return "", false
	}
	params := *(*uintptr)(unsafe.Pointer(&buf[processParametersOffset]))
	if params == 0 {
		return "", false
	}

	var rupp windows.RTL_USER_PROCESS_PARAMETERS
	ruppBuf := make([]byte, unsafe.Sizeof(rupp))
	if got := p.Read(uint64(params), ruppBuf); len(got) < len(ruppBuf) {
		return "", false
	}
	cmdLine := (*windows.NTUnicodeString)(unsafe.Pointer(&ruppBuf[commandLineOffset]))
	if cmdLine.Buffer == nil || cmdLine.Length == 0 {
		return "", false
	}

	raw := make([]byte, cmdLine.Length)
	if got := p.Read(uint64(uintptr(unsafe.Pointer(cmdLine.Buffer))), raw); len(got) < len(raw) {
		return "", false
	}
	return utf16BytesToString(raw), true
}

// processParametersOffset and commandLineOffset are the byte offsets of
// PEB.ProcessParameters and RTL_USER_PROCESS_PARAMETERS.CommandLine within
// their respective structs. Computed once via unsafe.Offsetof against the
// same struct layouts golang.org/x/sys/windows declares, mirroring the
// original source's FIELD_OFFSET! macro.
var (
	processParametersOffset = unsafe.Offsetof(windows.PEB{}.ProcessParameters)
	commandLineOffset       = unsafe.Offsetof(windows.RTL_USER_PROCESS_PARAMETERS{}.CommandLine)
)

// utf16BytesToString decodes a little-endian UTF-16 byte buffer (as read
// raw out of a UNICODE_STRING's Buffer) into a Go string.
func utf16BytesToString(b []byte) string {
	u16 := make([]uint16, len(b)/2)
	for i := range u16 {
		u16[i] = binary.LittleEndian.Uint16(b[i*2 : i*2+2])
	}
	return windows.UTF16ToString(u16)
}
