package program

import (
	"context"
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
)

// CapabilityError is a validation failure raised by an ActuatorClient or an
// Environment. It never aborts a tick; the bridge hands it to the script as
// an error value.
type CapabilityError struct {
	Performing string
	Part       string
	Reason     string
}

// NewValidationFailure builds a CapabilityError.
func NewValidationFailure(performing, part, reason string) *CapabilityError {
	return &CapabilityError{Performing: performing, Part: part, Reason: reason}
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("validation failure while %s, '%s': %s", e.Performing, e.Part, e.Reason)
}

// ErrorKind is the closed set of script execution failures.
type ErrorKind uint8

const (
	KindSyntax ErrorKind = iota + 1
	KindProgrammatic
	KindEnvironmental
	KindDynamic
	KindReported
	KindEntrypointNotFound
	KindInvalidEntrypointReturnType
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "SyntaxError"
	case KindProgrammatic:
		return "ProgrammaticError"
	case KindEnvironmental:
		return "EnvironmentalError"
	case KindDynamic:
		return "DynamicError"
	case KindReported:
		return "Reported"
	case KindEntrypointNotFound:
		return "EntrypointNotFound"
	case KindInvalidEntrypointReturnType:
		return "InvalidEntrypointReturnType"
	default:
		return "UnknownError"
	}
}

// ExecutionError is the only channel through which the host learns that a
// load or a tick failed.
type ExecutionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	switch e.Kind {
	case KindReported:
		return "program reported error when finishing execution: " + e.Message
	case KindEntrypointNotFound:
		if e.Message == "" {
			return "firmware does not have function 'main'"
		}
		return "firmware does not have function 'main': " + e.Message
	case KindInvalidEntrypointReturnType:
		if e.Message == "" {
			return "firmware main must return string"
		}
		return "firmware main must return string: " + e.Message
	}
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is matches any ExecutionError of the same kind, so the Err* sentinels work
// with errors.Is regardless of message.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrSyntax                      = &ExecutionError{Kind: KindSyntax}
	ErrProgrammatic                = &ExecutionError{Kind: KindProgrammatic}
	ErrEnvironmental               = &ExecutionError{Kind: KindEnvironmental}
	ErrDynamic                     = &ExecutionError{Kind: KindDynamic}
	ErrReported                    = &ExecutionError{Kind: KindReported}
	ErrEntrypointNotFound          = &ExecutionError{Kind: KindEntrypointNotFound}
	ErrInvalidEntrypointReturnType = &ExecutionError{Kind: KindInvalidEntrypointReturnType}
)

// Reported is the script-declared failure for a non-empty main result.
func Reported(message string) *ExecutionError {
	return &ExecutionError{Kind: KindReported, Message: message}
}

// KindOf returns the kind of an ExecutionError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return 0
}

var (
	// ErrReentrantCall is raised when a host function is entered while
	// another one is still running on the same bridge.
	ErrReentrantCall = errors.New("program: re-entrant host call")
	// ErrUnboundCall is raised when a host function runs outside Execute.
	ErrUnboundCall = errors.New("program: host function called outside of an execution")
	// ErrExecuteReentered is raised when Execute is called from inside Execute.
	ErrExecuteReentered = errors.New("program: execute called while already executing")
)

// ArgumentError is a host-side argument conversion failure.
type ArgumentError struct {
	Func     string
	Arg      string
	Expected string
	Found    string
}

func (e *ArgumentError) Error() string {
	if e.Arg == "" {
		return fmt.Sprintf("%s: %s", e.Func, e.Expected)
	}
	return fmt.Sprintf("%s: invalid type for argument '%s': expected %s, found %s", e.Func, e.Arg, e.Expected, e.Found)
}

// hostFault wraps a panic recovered from host code or the VM goroutine.
type hostFault struct {
	value any
}

func (e *hostFault) Error() string {
	return fmt.Sprintf("host panic: %v", e.value)
}

func syntaxError(err error) *ExecutionError {
	return &ExecutionError{Kind: KindSyntax, Message: err.Error(), Err: err}
}

// mapRuntimeError assigns every fault coming out of a VM run to exactly one
// kind. Unknown faults are dynamic.
func mapRuntimeError(err error) *ExecutionError {
	if err == nil {
		return nil
	}
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee
	}

	kind := KindDynamic
	var (
		argErr *ArgumentError
		fault  *hostFault
	)
	switch {
	case errors.Is(err, ErrReentrantCall),
		errors.Is(err, ErrUnboundCall),
		errors.Is(err, ErrExecuteReentered):
		kind = KindProgrammatic
	case errors.As(err, &fault),
		errors.Is(err, tengo.ErrStackOverflow),
		errors.Is(err, tengo.ErrObjectAllocLimit),
		errors.Is(err, tengo.ErrStringLimit),
		errors.Is(err, tengo.ErrBytesLimit),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		kind = KindEnvironmental
	case errors.As(err, &argErr):
		kind = KindDynamic
	}
	return &ExecutionError{Kind: kind, Message: err.Error(), Err: err}
}
