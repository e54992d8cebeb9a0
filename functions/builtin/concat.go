package builtin

import (
	"context"
	"strings"

	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/value"
)

// Concat implements concat(a, b, ...). It has no context dependencies, so
// calls with constant arguments are folded at compile time.
type Concat struct{}

// NewConcat returns the concat() function.
func NewConcat() *Concat {
	return &Concat{}
}

func (*Concat) Name() string {
	return "concat"
}

func (*Concat) StaticDependencies() deps.Set {
	return deps.None
}

func (*Concat) Evaluate(_ context.Context, inv expr.Invocation) (value.Value, error) {
	if len(inv.Args) < 2 {
		return value.Value{}, expr.ArityError("at least 2 arguments", len(inv.Args))
	}
	var sb strings.Builder
	for _, a := range inv.Args {
		sb.WriteString(a.String())
	}
	return value.Str(sb.String()), nil
}
