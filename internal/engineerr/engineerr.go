// Package engineerr defines the shared error taxonomy used by both the
// probability tree engine and the nemo worker: one wrapped error struct
// plus sentinel kinds rather than a distinct Go error type per failure
// mode.
package engineerr

import (
	"errors"
	"fmt"
)

// Kind classifies an EngineError.
type Kind int

const (
	// KindInvalidInput means a precondition on a named input failed.
	KindInvalidInput Kind = iota
	// KindProbabilityOutOfRange means a probability fell outside [0, 1].
	KindProbabilityOutOfRange
	// KindNotFound means a referenced node or tree state does not exist.
	KindNotFound
	// KindOperationNotAllowed means valid inputs hit a disallowed state.
	KindOperationNotAllowed
	// KindInvalidSyntax means the datalog gate rejected input.
	KindInvalidSyntax
	// KindTimeout means a reasoner call exceeded its budget.
	KindTimeout
	// KindReasonerError means the underlying reasoner rejected or failed.
	KindReasonerError
	// KindInternal means a channel drop, join failure, or other fault.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindProbabilityOutOfRange:
		return "ProbabilityOutOfRange"
	case KindNotFound:
		return "NotFound"
	case KindOperationNotAllowed:
		return "OperationNotAllowed"
	case KindInvalidSyntax:
		return "InvalidSyntax"
	case KindTimeout:
		return "Timeout"
	case KindReasonerError:
		return "ReasonerError"
	case KindInternal:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// EngineError is the single structured error type returned by both
// engines. Field is optional context naming which input or entity the
// error concerns (e.g. "probability", node id, predicate name).
type EngineError struct {
	Kind   Kind
	Field  string
	Detail string
	Err    error // wrapped cause, if any
}

func (e *EngineError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Is supports errors.Is comparisons against another *EngineError by
// Kind, so callers can match on failure class without field-for-field
// equality.
func (e *EngineError) Is(target error) bool {
	var other *EngineError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New constructs an EngineError of the given kind with a formatted detail.
func New(kind Kind, field, format string, args ...any) *EngineError {
	return &EngineError{Kind: kind, Field: field, Detail: fmt.Sprintf(format, args...)}
}

// Wrap constructs an EngineError of the given kind, wrapping a cause.
func Wrap(kind Kind, field string, cause error, format string, args ...any) *EngineError {
	return &EngineError{Kind: kind, Field: field, Detail: fmt.Sprintf(format, args...), Err: cause}
}

// InvalidInput builds a KindInvalidInput error for a named field.
func InvalidInput(field, format string, args ...any) *EngineError {
	return New(KindInvalidInput, field, format, args...)
}

// ProbabilityOutOfRange builds a KindProbabilityOutOfRange error.
func ProbabilityOutOfRange(value float64) *EngineError {
	return New(KindProbabilityOutOfRange, "probability", "value %v outside [0, 1]", value)
}

// NotFound builds a KindNotFound error for the given id.
func NotFound(field, id string) *EngineError {
	return New(KindNotFound, field, "no such id %q", id)
}

// OperationNotAllowed builds a KindOperationNotAllowed error.
func OperationNotAllowed(reason string) *EngineError {
	return New(KindOperationNotAllowed, "", reason)
}

// InvalidSyntax builds a KindInvalidSyntax error.
func InvalidSyntax(detail string) *EngineError {
	return New(KindInvalidSyntax, "", detail)
}

// Timeout builds a KindTimeout error mentioning the millisecond budget.
func Timeout(budgetMs int64) *EngineError {
	return New(KindTimeout, "", "exceeded %dms budget", budgetMs)
}

// ReasonerError wraps an underlying reasoner failure.
func ReasonerError(cause error) *EngineError {
	return Wrap(KindReasonerError, "", cause, "%v", cause)
}

// Internal builds a KindInternal error.
func Internal(format string, args ...any) *EngineError {
	return New(KindInternal, "", format, args...)
}

// KindOf extracts the Kind of err if it is (or wraps) an *EngineError.
func KindOf(err error) (Kind, bool) {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind, true
	}
	return 0, false
}
