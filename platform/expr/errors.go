package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedContext is returned when a function runs in a context
	// shape it cannot service and no fallback is configured.
	ErrUnsupportedContext = errors.New("unsupported evaluation context")

	// ErrArgumentTypeMismatch is returned for an argument of the wrong kind.
	ErrArgumentTypeMismatch = errors.New("argument type mismatch")

	// ErrArityMismatch is returned for a wrong number of arguments.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrInvalidContext is returned when a context violates its shape
	// invariants, such as a position outside 1..size.
	ErrInvalidContext = errors.New("invalid evaluation context")
)

// EvalError identifies the function and context of a failed evaluation.
type EvalError struct {
	Function string
	Context  string
	Err      error
}

func (e *EvalError) Error() string {
	if e.Function == "" {
		return fmt.Sprintf("evaluation in %s: %v", e.Context, e.Err)
	}
	return fmt.Sprintf("%s() in %s: %v", e.Function, e.Context, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// ArityError builds an ErrArityMismatch error.
func ArityError(want string, got int) error {
	return fmt.Errorf("%w: expected %s, got %d", ErrArityMismatch, want, got)
}
