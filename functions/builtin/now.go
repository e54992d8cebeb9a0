package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/robbyt/go-xfn/platform/clock"
	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/value"
)

// TestSentinel switches now() to a fixed instant, 2004-12-31T12:00:00Z.
const TestSentinel = "test"

// testInstant returns the instant reported by now("test").
func testInstant() time.Time {
	return time.Date(2004, time.December, 31, 12, 0, 0, 0, time.UTC)
}

// Now implements now(): the current UTC dateTime as a string.
type Now struct{}

// NewNow returns the now() function.
func NewNow() *Now {
	return &Now{}
}

func (*Now) Name() string {
	return "now"
}

func (*Now) StaticDependencies() deps.Set {
	return deps.CurrentDateTime
}

// PreEvaluate never folds now(), not even for the sentinel argument.
func (*Now) PreEvaluate(_ context.Context, _ *expr.StaticEnv, call *expr.Call) (expr.Expression, error) {
	return call, nil
}

func (f *Now) Evaluate(_ context.Context, inv expr.Invocation) (value.Value, error) {
	switch len(inv.Args) {
	case 0:
	case 1:
		s, ok := inv.Args[0].Text()
		if !ok {
			return value.Value{}, fmt.Errorf(
				"%w: expected string argument, got %s",
				expr.ErrArgumentTypeMismatch, inv.Args[0].Kind(),
			)
		}
		if s == TestSentinel {
			return value.Str(value.FormatDateTime(testInstant(), true)), nil
		}
	default:
		return value.Value{}, expr.ArityError("at most 1 argument", len(inv.Args))
	}

	c := inv.Clock
	if c == nil {
		c = clock.System()
	}
	return value.Str(value.FormatDateTime(c.Now().UTC(), true)), nil
}
