package rag

// Kind classifies the outcome of a pipeline stage.
type Kind int

const (
	// KindOK carries a value.
	KindOK Kind = iota
	// KindSoftFailure is an absorbed failure. Callers treat it as an empty value.
	KindSoftFailure
	// KindHardFailure must be propagated to the caller.
	KindHardFailure
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindSoftFailure:
		return "soft_failure"
	case KindHardFailure:
		return "hard_failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of one pipeline stage.
type Result[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

// OK wraps a successful value.
func OK[T any](v T) Result[T] {
	return Result[T]{Kind: KindOK, Value: v}
}

// SoftFailure records an absorbed failure. err may be nil when the stage was skipped.
func SoftFailure[T any](err error) Result[T] {
	return Result[T]{Kind: KindSoftFailure, Err: err}
}

// HardFailure records a failure that must reach the caller.
func HardFailure[T any](err error) Result[T] {
	return Result[T]{Kind: KindHardFailure, Err: err}
}

// Unwrap returns the value for OK, the zero value and nil for a soft failure,
// and the error for a hard failure.
func (r Result[T]) Unwrap() (T, error) {
	if r.Kind == KindHardFailure {
		var zero T
		return zero, r.Err
	}
	return r.Value, nil
}
