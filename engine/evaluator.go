// Package engine drives compile-time simplification and run-time evaluation
// of expression trees.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-xfn/platform/clock"
	"github.com/robbyt/go-xfn/platform/evalctx"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/value"
)

// ErrCompileFailed wraps errors raised while simplifying an expression.
var ErrCompileFailed = errors.New("failed to compile expression")

// Evaluator compiles and runs expression trees. It holds no mutable state
// and is safe for concurrent use.
type Evaluator struct {
	clock      clock.Clock
	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a new Evaluator using functional options
func New(opts ...FunctionalOption) (*Evaluator, error) {
	e := &Evaluator{}
	e.applyDefaults()

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("option error: %w", err)
		}
	}

	if err := e.validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	e.setupLogger()
	return e, nil
}

func (e *Evaluator) String() string {
	return "engine.Evaluator"
}

// Clock returns the clock handed to functions.
func (e *Evaluator) Clock() clock.Clock {
	return e.clock
}

// Compile simplifies x bottom-up: arguments first, then the enclosing call,
// so each function's pre-evaluation sees maximally simplified arguments.
// Compiling an already compiled tree returns an identical tree.
func (e *Evaluator) Compile(ctx context.Context, x expr.Expression) (expr.Expression, error) {
	logger := e.logger.WithGroup("Compile")
	if x == nil {
		return nil, fmt.Errorf("%w: expression is nil", ErrCompileFailed)
	}
	env := &expr.StaticEnv{Clock: e.clock, Logger: logger}

	out, err := e.preEvaluate(ctx, env, x)
	if err != nil {
		logger.ErrorContext(ctx, "pre-evaluation failed", "expr", x.String(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	logger.DebugContext(ctx, "compile complete", "in", x.String(), "out", out.String())
	return out, nil
}

func (e *Evaluator) preEvaluate(
	ctx context.Context,
	env *expr.StaticEnv,
	x expr.Expression,
) (expr.Expression, error) {
	call, ok := x.(*expr.Call)
	if !ok {
		if x == nil {
			return nil, fmt.Errorf("expression is nil")
		}
		return x, nil
	}
	if call.Fn == nil {
		return nil, fmt.Errorf("call has no function")
	}

	args := make([]expr.Expression, len(call.Args))
	changed := false
	for i, a := range call.Args {
		simplified, err := e.preEvaluate(ctx, env, a)
		if err != nil {
			return nil, err
		}
		args[i] = simplified
		if simplified != a {
			changed = true
		}
	}
	if changed {
		call = call.WithArgs(args)
	}

	if pe, ok := call.Fn.(expr.PreEvaluator); ok {
		return pe.PreEvaluate(ctx, env, call)
	}
	return expr.DefaultPreEvaluate(ctx, env, call)
}

// Run evaluates x against c. Arguments are evaluated against the same
// context before the enclosing function. Function failures are returned as
// *expr.EvalError and are never retried.
func (e *Evaluator) Run(ctx context.Context, x expr.Expression, c evalctx.Context) (value.Value, error) {
	logger := e.logger.WithGroup("Run")

	if x == nil {
		return value.Value{}, fmt.Errorf("expression is nil")
	}
	if c == nil {
		return value.Value{}, &expr.EvalError{
			Context: evalctx.Describe(c),
			Err:     fmt.Errorf("%w: context is nil", expr.ErrUnsupportedContext),
		}
	}
	if err := evalctx.Validate(c); err != nil {
		return value.Value{}, &expr.EvalError{
			Context: evalctx.Describe(c),
			Err:     fmt.Errorf("%w: %w", expr.ErrInvalidContext, err),
		}
	}

	v, err := e.run(ctx, x, c)
	if err != nil {
		logger.DebugContext(ctx, "evaluation failed", "expr", x.String(), "context", c.String(), "error", err)
		return value.Value{}, err
	}
	return v, nil
}

func (e *Evaluator) run(ctx context.Context, x expr.Expression, c evalctx.Context) (value.Value, error) {
	switch n := x.(type) {
	case *expr.Literal:
		return n.Value, nil
	case *expr.Call:
		args := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := e.run(ctx, a, c)
			if err != nil {
				return value.Value{}, err
			}
			args[i] = v
		}

		v, err := n.Fn.Evaluate(ctx, expr.Invocation{Args: args, Context: c, Clock: e.clock})
		if err != nil {
			var evalErr *expr.EvalError
			if errors.As(err, &evalErr) {
				return value.Value{}, err
			}
			return value.Value{}, &expr.EvalError{Function: n.Fn.Name(), Context: c.String(), Err: err}
		}
		if v.IsZero() {
			return value.Value{}, &expr.EvalError{
				Function: n.Fn.Name(),
				Context:  c.String(),
				Err:      fmt.Errorf("function returned no value"),
			}
		}
		return v, nil
	case nil:
		return value.Value{}, fmt.Errorf("expression is nil")
	}
	return value.Value{}, fmt.Errorf("unsupported expression type %T", x)
}

// RunEach evaluates x once for every item, with a Sequence context at each
// position in turn.
func (e *Evaluator) RunEach(ctx context.Context, x expr.Expression, items []value.Value) ([]value.Value, error) {
	out := make([]value.Value, 0, len(items))
	for i := range items {
		seq, err := evalctx.NewSequence(items, i+1)
		if err != nil {
			return nil, err
		}
		v, err := e.Run(ctx, x, seq)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
