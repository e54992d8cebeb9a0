package builtin

import (
	"context"
	"errors"
	"fmt"

	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/evalctx"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/value"
)

// Last implements last(): the size of the current sequence.
//
// Inside a sequence the size is read directly. A top-level expression has no
// ambient sequence, so the size of the outer sequence supplied with the
// Singleton context is used instead.
type Last struct{}

// NewLast returns the last() function.
func NewLast() *Last {
	return &Last{}
}

func (*Last) Name() string {
	return "last"
}

// StaticDependencies is {Last} for every context shape.
func (*Last) StaticDependencies() deps.Set {
	return deps.Last
}

func (f *Last) Evaluate(ctx context.Context, inv expr.Invocation) (value.Value, error) {
	if len(inv.Args) != 0 {
		return value.Value{}, expr.ArityError("no arguments", len(inv.Args))
	}

	switch c := inv.Context.(type) {
	case *evalctx.Sequence:
		return value.Integer(int64(c.Size())), nil
	case *evalctx.Singleton:
		n, err := c.FallbackSize(ctx)
		if errors.Is(err, evalctx.ErrNoFallbackSize) {
			return value.Value{}, fmt.Errorf("%w: top-level evaluation: %w", expr.ErrUnsupportedContext, err)
		}
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %w", expr.ErrInvalidContext, err)
		}
		return value.Integer(int64(n)), nil
	}
	return value.Value{}, fmt.Errorf("%w: %T", expr.ErrUnsupportedContext, inv.Context)
}
