package expr

import (
	"context"
	"fmt"

	"github.com/robbyt/go-xfn/platform/evalctx"
	"github.com/robbyt/go-xfn/platform/value"
)

// DefaultPreEvaluate is the simplification applied to calls whose function
// does not implement PreEvaluator. A call whose function declares no
// dependencies and whose arguments are all constants is evaluated once
// against the neutral context and replaced by a Literal. Any other call is
// returned unchanged.
//
// Arguments are expected to be simplified already, which makes the rule
// idempotent.
func DefaultPreEvaluate(ctx context.Context, env *StaticEnv, call *Call) (Expression, error) {
	if !call.Fn.StaticDependencies().IsEmpty() {
		return call, nil
	}

	args := make([]value.Value, len(call.Args))
	for i, a := range call.Args {
		lit, ok := a.(*Literal)
		if !ok {
			return call, nil
		}
		args[i] = lit.Value
	}

	neutral := evalctx.Neutral()
	inv := Invocation{Args: args, Context: neutral}
	if env != nil {
		inv.Clock = env.Clock
	}

	v, err := call.Fn.Evaluate(ctx, inv)
	if err != nil {
		return nil, &EvalError{Function: call.Fn.Name(), Context: neutral.String(), Err: err}
	}
	if v.IsZero() {
		return nil, &EvalError{
			Function: call.Fn.Name(),
			Context:  neutral.String(),
			Err:      fmt.Errorf("function returned no value"),
		}
	}

	if env != nil && env.Logger != nil {
		env.Logger.DebugContext(ctx, "folded constant call", "call", call.String(), "value", v.Inspect())
	}
	return NewLiteral(v), nil
}
