// Package starlark implements expression functions written in Starlark.
//
// The script defines a callable, main by default, that receives the
// resolved arguments. When the function declares context dependencies the
// ctx dict is passed first:
//
//	def main(ctx, label):
//	    return "%s %d of %d" % (label, ctx["position"], ctx["size"])
package starlark

import (
	"context"
	"fmt"
	"log/slog"

	starlarkLib "go.starlark.net/starlark"

	"github.com/robbyt/go-xfn/functions/internal/focus"
	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/script/loader"
	"github.com/robbyt/go-xfn/platform/value"
)

// Function is an expr.Function backed by a Starlark callable.
type Function struct {
	name       string
	entrypoint string
	deps       deps.Set
	source     string
	callable   starlarkLib.Callable

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

	prog, err := compile(name+".star", src)
	if err != nil {
		return nil, err
	}
	callable, err := initCallable(prog, f.entrypoint)
	if err != nil {
		return nil, err
	}

	f.source = string(src)
	f.callable = callable
	f.logger.Debug("starlark function ready", "entrypoint", f.entrypoint, "deps", f.deps.String())
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
	return fmt.Sprintf("starlark.Function{Name: %s, Entrypoint: %s}", f.name, f.entrypoint)
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

// Evaluate calls the entrypoint on a fresh thread. Cancelling ctx cancels
// the thread.
func (f *Function) Evaluate(ctx context.Context, inv expr.Invocation) (value.Value, error) {
	logger := f.logger.WithGroup("Evaluate")

	args, err := f.buildArgs(ctx, inv)
	if err != nil {
		return value.Value{}, err
	}

	thread := &starlarkLib.Thread{
		Name: f.name,
		Print: func(thread *starlarkLib.Thread, msg string) {
			logger.InfoContext(ctx, msg, "starlark-thread", thread.Name)
		},
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	out, err := starlarkLib.Call(thread, f.callable, args, nil)
	if err != nil {
		return value.Value{}, fmt.Errorf("starlark execution error: %w", err)
	}

	native, err := fromStarlarkValue(out)
	if err != nil {
		return value.Value{}, fmt.Errorf("result of %s: %w", f.name, err)
	}
	logger.DebugContext(ctx, "call complete", "result", out.String())
	return focus.Result(f.name, native)
}

func (f *Function) buildArgs(ctx context.Context, inv expr.Invocation) (starlarkLib.Tuple, error) {
	args := make(starlarkLib.Tuple, 0, len(inv.Args)+1)

	if !f.deps.IsEmpty() {
		m, err := focus.Map(ctx, f.deps, inv)
		if err != nil {
			return nil, err
		}
		sv, err := toStarlarkValue(m)
		if err != nil {
			return nil, fmt.Errorf("failed to convert ctx: %w", err)
		}
		args = append(args, sv)
	}

	for i, a := range focus.Args(inv) {
		sv, err := toStarlarkValue(a)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %w", expr.ErrArgumentTypeMismatch, i+1, err)
		}
		args = append(args, sv)
	}
	return args, nil
}
