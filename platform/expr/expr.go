// Package expr defines expression trees and the capability implemented by
// every pluggable function.
//
// A function declares its static context dependencies, may simplify its own
// call at compile time, and evaluates against resolved arguments and an
// evaluation context. Trees are built once and never mutated; simplification
// returns new nodes.
package expr

import (
	"context"
	"log/slog"
	"strings"

	"github.com/robbyt/go-xfn/platform/clock"
	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/evalctx"
	"github.com/robbyt/go-xfn/platform/value"
)

// Expression is a node of a compiled expression tree.
type Expression interface {
	// StaticDependencies is the union of the dependencies of the node and all
	// of its sub-expressions.
	StaticDependencies() deps.Set
	String() string
}

// Function is implemented by every function callable from an expression.
type Function interface {
	// Name is the name the function is called by.
	Name() string

	// StaticDependencies is computed without inspecting arguments or any
	// evaluation context, and never varies between calls.
	StaticDependencies() deps.Set

	// Evaluate computes the result from resolved argument values and the
	// evaluation context in the invocation.
	Evaluate(ctx context.Context, inv Invocation) (value.Value, error)
}

// PreEvaluator is implemented by functions that replace the default
// compile-time simplification rule for their calls.
//
// Returning the call unchanged is the normal "cannot simplify" outcome.
type PreEvaluator interface {
	PreEvaluate(ctx context.Context, env *StaticEnv, call *Call) (Expression, error)
}

// Invocation carries everything a function sees at run time.
type Invocation struct {
	Args    []value.Value
	Context evalctx.Context
	Clock   clock.Clock
}

// StaticEnv is the compile-time environment handed to pre-evaluation.
type StaticEnv struct {
	Clock  clock.Clock
	Logger *slog.Logger
}

// Literal is a compile-time constant.
type Literal struct {
	Value value.Value
}

// NewLiteral returns a constant node.
func NewLiteral(v value.Value) *Literal {
	return &Literal{Value: v}
}

// StaticDependencies of a constant is always empty.
func (l *Literal) StaticDependencies() deps.Set {
	return deps.None
}

func (l *Literal) String() string {
	return l.Value.Inspect()
}

// Call applies a function to argument sub-expressions.
type Call struct {
	Fn   Function
	Args []Expression
}

// NewCall returns a call node.
func NewCall(fn Function, args ...Expression) *Call {
	return &Call{Fn: fn, Args: args}
}

// StaticDependencies unions the function's dependencies with those of every
// argument.
func (c *Call) StaticDependencies() deps.Set {
	s := c.Fn.StaticDependencies()
	for _, a := range c.Args {
		s = s.Union(a.StaticDependencies())
	}
	return s
}

// WithArgs returns a copy of the call with different arguments.
func (c *Call) WithArgs(args []Expression) *Call {
	return &Call{Fn: c.Fn, Args: args}
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	name := "<nil>"
	if c.Fn != nil {
		name = c.Fn.Name()
	}
	return name + "(" + strings.Join(args, ", ") + ")"
}

// IsConstant reports whether e is a compile-time constant.
func IsConstant(e Expression) bool {
	_, ok := e.(*Literal)
	return ok
}
