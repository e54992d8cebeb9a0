// Package focus builds the positional arguments and the ctx map handed to
// scripted functions.
package focus

import (
	"context"
	"errors"
	"fmt"

	"github.com/robbyt/go-xfn/platform/clock"
	"github.com/robbyt/go-xfn/platform/constants"
	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/evalctx"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/value"
)

// Args converts the resolved arguments to native Go values.
func Args(inv expr.Invocation) []any {
	out := make([]any, len(inv.Args))
	for i, a := range inv.Args {
		out[i] = a.Interface()
	}
	return out
}

// Map returns the ctx map for the declared dependencies. Only keys backed by
// a declared flag are present, so a script cannot observe context it did not
// declare.
func Map(ctx context.Context, declared deps.Set, inv expr.Invocation) (map[string]any, error) {
	m := make(map[string]any, 4)

	if declared.Has(deps.Position) {
		m[constants.Position] = int64(evalctx.PositionOf(inv.Context))
	}
	if declared.Has(deps.Last) {
		n, err := size(ctx, inv.Context)
		if err != nil {
			return nil, err
		}
		m[constants.Size] = int64(n)
	}
	if declared.Has(deps.ContextItem) {
		if item, ok := evalctx.ItemOf(inv.Context); ok {
			m[constants.Item] = item.Interface()
		}
	}
	if declared.Has(deps.CurrentDateTime) {
		c := inv.Clock
		if c == nil {
			c = clock.System()
		}
		m[constants.Now] = value.FormatDateTime(c.Now(), true)
	}
	return m, nil
}

// size classifies a missing fallback as unsupported and a bad one as invalid.
func size(ctx context.Context, c evalctx.Context) (int, error) {
	switch c := c.(type) {
	case *evalctx.Sequence:
		return c.Size(), nil
	case *evalctx.Singleton:
		n, err := c.FallbackSize(ctx)
		if errors.Is(err, evalctx.ErrNoFallbackSize) {
			return 0, fmt.Errorf("%w: %w", expr.ErrUnsupportedContext, err)
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %w", expr.ErrInvalidContext, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %T", expr.ErrUnsupportedContext, c)
}

// Result converts a script result to a Value.
func Result(name string, out any) (value.Value, error) {
	v, err := value.FromInterface(out)
	if err != nil {
		return value.Value{}, fmt.Errorf("result of %s: %w", name, err)
	}
	return v, nil
}
