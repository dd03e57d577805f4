package process

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a query by pid or by name matched no
// process.
var ErrNotFound = errors.New("process: not found")

// ErrAccessDenied is returned when the OS refused the requested rights on a
// process handle.
var ErrAccessDenied = errors.New("process: access denied")

// ErrFatal wraps a corrupted-debugger-state condition: a failed
// PTRACE_GETEVENTMSG after a reported clone event, or a wait status that
// matches no known classification. There is no recovery from an ErrFatal;
// callers should abandon the wait loop.
var ErrFatal = errors.New("process: fatal debugger state")

// OsError carries the last OS error observed from a syscall, alongside the
// numeric code where the platform exposes one. Routine per-call failures
// (dead target, bad address, denied access) are reported to callers as
// optional/short results rather than as an OsError; OsError is reserved for
// call sites where the caller has no other way to learn why an operation
// failed (handle duplication, ptrace auxiliary calls).
type OsError struct {
	Op   string
	Code int
	Err  error
}

func (e *OsError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("process: %s: %s (code %d)", e.Op, e.Err, e.Code)
	}
	return fmt.Sprintf("process: %s: %s", e.Op, e.Err)
}

func (e *OsError) Unwrap() error { return e.Err }

func newOsError(op string, code int, err error) error {
	if err == nil {
		return nil
	}
	return &OsError{Op: op, Code: code, Err: err}
}

// fatalf wraps ErrFatal with a formatted, call-site-specific message. Every
// error returned by fatalf satisfies errors.Is(err, ErrFatal).
func fatalf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrFatal)...)
}
