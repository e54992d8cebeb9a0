package platform

import (
	"context"

	"github.com/robbyt/go-xfn/platform/evalctx"
	"github.com/robbyt/go-xfn/platform/value"
)

// Evaluator runs a compiled expression against an evaluation context.
//
// Compilation happens once, when the evaluator is created. Eval can then be
// called any number of times, from any goroutine, with a different context
// each time.
type Evaluator interface {
	Eval(ctx context.Context, c evalctx.Context) (EvaluatorResponse, error)
}

// EvaluatorResponse is the outcome of one evaluation.
type EvaluatorResponse interface {
	// Type returns the kind of the result value
	Type() value.Kind

	// Inspect returns a debugging representation of the result
	Inspect() string

	// Interface returns the result as a native Go value
	Interface() any

	// Value returns the result itself
	Value() value.Value

	// GetExprID returns the identifier of the evaluated expression
	GetExprID() string

	// GetExecTime returns how long the evaluation took
	GetExecTime() string
}
