// Package risor implements expression functions written in Risor.
//
// The script body is evaluated on every call and its final expression is
// the result. Resolved arguments are available as the args list and the
// declared context as the ctx map:
//
//	sprintf("%s %d/%d", args[0], ctx["position"], ctx["size"])
package risor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	risorLib "github.com/risor-io/risor"
	risorCompiler "github.com/risor-io/risor/compiler"
	risorObject "github.com/risor-io/risor/object"

	"github.com/robbyt/go-xfn/functions/internal/focus"
	"github.com/robbyt/go-xfn/platform/constants"
	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/script/loader"
	"github.com/robbyt/go-xfn/platform/value"
)

// Function is an expr.Function backed by Risor bytecode.
type Function struct {
	name     string
	deps     deps.Set
	source   string
	bytecode *risorCompiler.Code

	logHandler slog.Handler
	logger     *slog.Logger
}

// New compiles src and returns a function callable as name.
func New(name string, src []byte, opts ...FunctionalOption) (*Function, error) {
	f := &Function{name: name}
	f.applyDefaults()

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, fmt.Errorf("option error: %w", err)
		}
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	f.setupLogger()

	bc, err := compile(src)
	if err != nil {
		return nil, err
	}

	f.source = string(src)
	f.bytecode = bc
	f.logger.Debug("risor function ready",
		"instructions", bc.InstructionCount(), "deps", f.deps.String())
	return f, nil
}

// FromLoader reads the script from ldr.
func FromLoader(name string, ldr loader.Loader, opts ...FunctionalOption) (*Function, error) {
	src, err := loader.ReadAll(ldr)
	if err != nil {
		return nil, err
	}
	return New(name, src, opts...)
}

func (f *Function) String() string {
	return fmt.Sprintf("risor.Function{Name: %s}", f.name)
}

func (f *Function) Name() string {
	return f.name
}

func (f *Function) StaticDependencies() deps.Set {
	return f.deps
}

// Source returns the script source.
func (f *Function) Source() string {
	return f.source
}

// Evaluate runs the bytecode with args and ctx injected as globals.
func (f *Function) Evaluate(ctx context.Context, inv expr.Invocation) (value.Value, error) {
	logger := f.logger.WithGroup("Evaluate")

	ctxMap := map[string]any{}
	if !f.deps.IsEmpty() {
		m, err := focus.Map(ctx, f.deps, inv)
		if err != nil {
			return value.Value{}, err
		}
		ctxMap = m
	}

	startTime := time.Now()
	result, err := risorLib.EvalCode(ctx, f.bytecode,
		risorLib.WithGlobal(constants.Args, focus.Args(inv)),
		risorLib.WithGlobal(constants.Ctx, ctxMap),
	)
	execTime := time.Since(startTime)
	if err != nil {
		return value.Value{}, fmt.Errorf("risor execution error: %w", err)
	}
	logger.DebugContext(ctx, "execution complete", "execTime", execTime.String())

	native, err := fromRisorObject(result)
	if err != nil {
		return value.Value{}, err
	}
	return focus.Result(f.name, native)
}

func fromRisorObject(obj risorObject.Object) (any, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: nil", ErrBadResult)
	}
	switch obj.Type() {
	case "error":
		return nil, fmt.Errorf("%w: %s", ErrBadResult, obj.Inspect())
	case "function", "nil":
		return nil, fmt.Errorf("%w: %s object", ErrBadResult, obj.Type())
	}
	return obj.Interface(), nil
}
