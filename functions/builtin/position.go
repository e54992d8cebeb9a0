package builtin

import (
	"context"

	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/evalctx"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/value"
)

// Position implements position(). A top-level expression reports 1.
type Position struct{}

// NewPosition returns the position() function.
func NewPosition() *Position {
	return &Position{}
}

func (*Position) Name() string {
	return "position"
}

func (*Position) StaticDependencies() deps.Set {
	return deps.Position
}

func (*Position) Evaluate(_ context.Context, inv expr.Invocation) (value.Value, error) {
	if len(inv.Args) != 0 {
		return value.Value{}, expr.ArityError("no arguments", len(inv.Args))
	}
	return value.Integer(int64(evalctx.PositionOf(inv.Context))), nil
}
