package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates which handle operation was running when the error occurred
type Phase string

const (
	PhaseAcquire Phase = "acquire" // wrapping a raw resource
	PhaseRelease Phase = "release" // disposing a handle
	PhaseMove    Phase = "move"    // ownership transfer
	PhaseReset   Phase = "reset"   // adopting a new resource
	PhaseAlloc   Phase = "alloc"   // counter record bookkeeping
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation Kind = "allocation"
	KindContract   Kind = "contract"
	KindDoubleFree Kind = "double_free"
	KindUnderflow  Kind = "underflow"
	KindShape      Kind = "shape"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Handle string
	Detail string
	Addr   uintptr
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Handle != "" {
		b.WriteString(" on ")
		b.WriteString(e.Handle)
		b.WriteString(" handle")
	}

	if e.Addr != 0 {
		b.WriteString(" at 0x")
		b.WriteString(strconv.FormatUint(uint64(e.Addr), 16))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Handle sets the handle kind ("unique", "shared", "weak")
func (b *Builder) Handle(kind string) *Builder {
	b.err.Handle = kind
	return b
}

// Addr sets the resource address
func (b *Builder) Addr(addr uintptr) *Builder {
	b.err.Addr = addr
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, addr uintptr, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Handle: "shared",
		Addr:   addr,
		Detail: "reference counter allocation failed; resource left unwrapped",
		Cause:  cause,
	}
}

// SelfMove creates the error raised when a handle is moved into itself
func SelfMove(handle string) *Error {
	return &Error{
		Phase:  PhaseMove,
		Kind:   KindContract,
		Handle: handle,
		Detail: "move into self",
	}
}

// Underflow creates the error raised when a count would drop below zero
func Underflow(which string, addr uintptr) *Error {
	return &Error{
		Phase:  PhaseRelease,
		Kind:   KindUnderflow,
		Addr:   addr,
		Detail: fmt.Sprintf("%s count released too often", which),
	}
}

// DoubleFree creates the error raised when a counter record is freed twice
// or while still referenced
func DoubleFree(addr uintptr, owners, observers int) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindDoubleFree,
		Addr:   addr,
		Detail: fmt.Sprintf("counter freed with owners=%d observers=%d", owners, observers),
	}
}

// ShapeMismatch creates the error raised when a deleter does not match the
// resource shape of the handle it is given to
func ShapeMismatch(handle string, want string, got any) *Error {
	return &Error{
		Phase:  PhaseAcquire,
		Kind:   KindShape,
		Handle: handle,
		Detail: fmt.Sprintf("deleter of type %T does not accept %s", got, want),
		Value:  got,
	}
}
