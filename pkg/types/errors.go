package types

import (
	"errors"
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindStore           ErrKind = iota // native failure, see Error.Code
	ErrKindInvalidArgument                // malformed extension/path, checked before mutation
	ErrKindNotFound                       // key or value absent
	ErrKindInvalidState                   // operation invalid for current state (e.g., delete non-empty key)
	ErrKindAccessDenied                   // native access failure
)

// String implements the Stringer interface for ErrKind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindStore:
		return "store"
	case ErrKindInvalidArgument:
		return "invalid argument"
	case ErrKindNotFound:
		return "not found"
	case ErrKindInvalidState:
		return "invalid state"
	case ErrKindAccessDenied:
		return "access denied"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Op   string // operation that failed ("open", "delete-key", ...)
	Path string // key path, if any
	Code uint32 // native status code, 0 when not applicable
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		if e.Path != "" {
			b.WriteString(" ")
			b.WriteString(e.Path)
		}
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString(e.Kind.String())
	}
	if e.Code != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Code)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind. This lets callers
// match the sentinels below with errors.Is regardless of Op/Path/Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels commonly returned by implementations.
var (
	// ErrInvalidArgument indicates a malformed extension, path or name.
	ErrInvalidArgument = &Error{Kind: ErrKindInvalidArgument, Msg: "invalid argument"}
	// ErrNotFound indicates a missing key or value.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrKeyHasSubkeys indicates a delete was attempted on a non-empty key.
	ErrKeyHasSubkeys = &Error{Kind: ErrKindInvalidState, Msg: "key has subkeys"}
	// ErrHandleClosed indicates use of a handle after Close.
	ErrHandleClosed = &Error{Kind: ErrKindInvalidState, Msg: "handle already closed"}
	// ErrAccessDenied indicates a write through a read-only handle or a native denial.
	ErrAccessDenied = &Error{Kind: ErrKindAccessDenied, Msg: "access denied"}
)

// Native status codes, numerically identical to the Windows error codes.
const (
	CodeFileNotFound   uint32 = 2    // ERROR_FILE_NOT_FOUND
	CodeAccessDenied   uint32 = 5    // ERROR_ACCESS_DENIED
	CodeInvalidHandle  uint32 = 6    // ERROR_INVALID_HANDLE
	CodeKeyHasChildren uint32 = 1020 // ERROR_KEY_HAS_CHILDREN
	CodeKeyDeleted     uint32 = 1018 // ERROR_KEY_DELETED
)

// Errorf builds an *Error of the given kind.
func Errorf(kind ErrKind, op, path string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain. The second
// result is false when err carries no typed error.
func KindOf(err error) (ErrKind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}

// CodeOf returns the native status code carried by err, or 0.
func CodeOf(err error) uint32 {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return 0
}

func isKind(err error, kind ErrKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsNotFound reports whether err is (or wraps) a not-found error.
func IsNotFound(err error) bool { return isKind(err, ErrKindNotFound) }

// IsInvalidState reports whether err is (or wraps) an invalid-state error.
func IsInvalidState(err error) bool { return isKind(err, ErrKindInvalidState) }

// IsInvalidArgument reports whether err is (or wraps) an invalid-argument error.
func IsInvalidArgument(err error) bool { return isKind(err, ErrKindInvalidArgument) }

// IsAccessDenied reports whether err is (or wraps) an access-denied error.
func IsAccessDenied(err error) bool { return isKind(err, ErrKindAccessDenied) }
