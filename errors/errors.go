package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBuild    Phase = "build"    // module assembly
	PhaseEncode   Phase = "encode"   // module to NATV bytes
	PhaseDecode   Phase = "decode"   // NATV bytes to module
	PhaseValidate Phase = "validate" // format and checksum validation
	PhaseVerify   Phase = "verify"   // checksum and signature verification
	PhaseLoad     Phase = "load"     // loader cache operations
	PhaseResolve  Phase = "resolve"  // symbol resolution
)

// Kind categorizes the error
type Kind string

const (
	KindInvalid          Kind = "invalid"
	KindIO               Kind = "io"
	KindChecksumMismatch Kind = "checksum_mismatch"
	KindNotFound         Kind = "not_found"
	KindTooMany          Kind = "too_many"
	KindNotSigned        Kind = "not_signed"
	KindInvalidSignature Kind = "invalid_signature"
	KindVersionMismatch  Kind = "version_mismatch"
	KindAPIMismatch      Kind = "api_mismatch"
	KindNotInitialized   Kind = "not_initialized"
	KindLoadFailed       Kind = "load_failed"
	KindSymbolNotFound   Kind = "symbol_not_found"
	KindInvalidParam     Kind = "invalid_param"
	KindSystemError      Kind = "system_error"
)

// Error is the structured error type used throughout the module system
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Module string
	Symbol string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Module != "" {
		b.WriteString(" module ")
		b.WriteString(e.Module)
	}
	if e.Symbol != "" {
		b.WriteString(" symbol ")
		b.WriteString(e.Symbol)
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

// Module sets the module name
func (b *Builder) Module(name string) *Builder {
	b.err.Module = name
	return b
}

// Symbol sets the symbol name
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
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

// Invalid creates an invalid argument or shape error
func Invalid(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalid,
		Detail: detail,
	}
}

// IO creates a file I/O error
func IO(phase Phase, path string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Detail: path,
		Cause:  cause,
	}
}

// ChecksumMismatch creates a checksum mismatch error
func ChecksumMismatch(phase Phase, what string, stored, computed uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindChecksumMismatch,
		Detail: fmt.Sprintf("%s checksum mismatch: stored %#x, computed %#x", what, stored, computed),
	}
}

// TooMany creates a capacity exceeded error
func TooMany(phase Phase, what string, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTooMany,
		Detail: fmt.Sprintf("too many %s (limit %d)", what, limit),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// NotSigned creates an error for signature checks on unsigned modules
func NotSigned(module string) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindNotSigned,
		Module: module,
		Detail: "module carries no signature",
	}
}

// InvalidSignature creates an error for malformed signature records
func InvalidSignature(module, detail string) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindInvalidSignature,
		Module: module,
		Detail: detail,
	}
}

// VersionMismatch creates a loader version gate error
func VersionMismatch(loaderVersion, minLoaderVersion uint32) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindVersionMismatch,
		Detail: fmt.Sprintf("loader version %d below required minimum %d", loaderVersion, minLoaderVersion),
	}
}

// APIMismatch creates an API version gate error
func APIMismatch(moduleAPI, requiredAPI uint32) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindAPIMismatch,
		Detail: fmt.Sprintf("module API version %d exceeds supported %d", moduleAPI, requiredAPI),
	}
}

// NotInitialized creates an error for operations on an uninitialized system
func NotInitialized(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: "module system not initialized",
	}
}

// LoadFailed creates a module load failure error
func LoadFailed(module string, attempts int, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoadFailed,
		Module: module,
		Detail: fmt.Sprintf("all %d load attempts failed", attempts),
		Cause:  cause,
	}
}

// SymbolNotFound creates a symbol resolution failure error
func SymbolNotFound(module, symbol string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindSymbolNotFound,
		Module: module,
		Symbol: symbol,
	}
}

// InvalidParam creates an invalid loader parameter error
func InvalidParam(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidParam,
		Detail: detail,
	}
}

// System creates a platform-level failure error
func System(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSystemError,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
