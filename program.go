package xfn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robbyt/go-xfn/engine"
	"github.com/robbyt/go-xfn/platform"
	"github.com/robbyt/go-xfn/platform/evalctx"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/value"
)

var _ platform.Evaluator = (*Program)(nil)

// Program is a compiled expression bound to its evaluator. It follows the
// "compile once, run many times" pattern and is safe for concurrent Eval
// calls.
type Program struct {
	id         string
	source     string
	expression expr.Expression
	evaluator  *engine.Evaluator
	closers    []closer
	logger     *slog.Logger
}

func (p *Program) String() string {
	return fmt.Sprintf("xfn.Program{ID: %s, Expr: %s}", p.id, p.expression)
}

// Eval evaluates the program against c.
func (p *Program) Eval(ctx context.Context, c evalctx.Context) (platform.EvaluatorResponse, error) {
	startTime := time.Now()
	v, err := p.evaluator.Run(ctx, p.expression, c)
	execTime := time.Since(startTime)
	if err != nil {
		return nil, err
	}
	p.logger.DebugContext(ctx, "evaluation complete", "id", p.id, "result", v.Inspect())
	return newExecResult(v, execTime, p.id), nil
}

// EvalEach evaluates the program once per item, each with a Sequence
// focus on that item.
func (p *Program) EvalEach(ctx context.Context, items []value.Value) ([]value.Value, error) {
	return p.evaluator.RunEach(ctx, p.expression, items)
}

// Expression returns the compiled expression tree.
func (p *Program) Expression() expr.Expression {
	return p.expression
}

// ID returns the source URL of the expression.
func (p *Program) ID() string {
	return p.id
}

// Source returns the expression source text.
func (p *Program) Source() string {
	return p.source
}

// Close releases resources held by library functions, such as compiled
// wasm plugins.
func (p *Program) Close(ctx context.Context) error {
	var errs []error
	for _, c := range p.closers {
		if err := c.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

type closer interface {
	Close(ctx context.Context) error
}

func closers(fns []expr.Function) []closer {
	var out []closer
	for _, fn := range fns {
		if c, ok := fn.(closer); ok {
			out = append(out, c)
		}
	}
	return out
}

func closeFunctions(ctx context.Context, fns []expr.Function) {
	for _, c := range closers(fns) {
		_ = c.Close(ctx)
	}
}
