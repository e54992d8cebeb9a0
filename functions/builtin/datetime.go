package builtin

import (
	"context"

	"github.com/robbyt/go-xfn/platform/clock"
	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/value"
)

// CurrentDateTime implements current-dateTime(), which returns a typed
// DateTime rather than the string form of now().
type CurrentDateTime struct{}

// NewCurrentDateTime returns the current-dateTime() function.
func NewCurrentDateTime() *CurrentDateTime {
	return &CurrentDateTime{}
}

func (*CurrentDateTime) Name() string {
	return "current-dateTime"
}

func (*CurrentDateTime) StaticDependencies() deps.Set {
	return deps.CurrentDateTime
}

func (*CurrentDateTime) Evaluate(_ context.Context, inv expr.Invocation) (value.Value, error) {
	if len(inv.Args) != 0 {
		return value.Value{}, expr.ArityError("no arguments", len(inv.Args))
	}
	c := inv.Clock
	if c == nil {
		c = clock.System()
	}
	return value.DateTime(c.Now(), true), nil
}
