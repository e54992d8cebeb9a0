// Package exprlang implements expression functions written in the expr
// language. Arguments are available as args and the declared context as
// ctx, for example:
//
//	args[0] + " " + string(ctx.position) + "/" + string(ctx.size)
package exprlang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	exprLib "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/robbyt/go-xfn/functions/internal/focus"
	"github.com/robbyt/go-xfn/internal/helpers"
	"github.com/robbyt/go-xfn/platform/constants"
	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/script/loader"
	"github.com/robbyt/go-xfn/platform/value"
)

var (
	ErrContentNil    = errors.New("expr content is nil")
	ErrCompileFailed = errors.New("failed to compile expr function")
	ErrNilResult     = errors.New("expr function returned nil")
)

// FunctionalOption is a function that configures a Function instance
type FunctionalOption func(*Function) error

// WithDependencies declares the context the expression reads through ctx.
func WithDependencies(d deps.Set) FunctionalOption {
	return func(f *Function) error {
		f.deps = d
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the function.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(f *Function) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		f.logHandler = handler
		return nil
	}
}

// Function is an expr.Function backed by a compiled expr program.
type Function struct {
	name    string
	deps    deps.Set
	source  string
	program *vm.Program

	logHandler slog.Handler
	logger     *slog.Logger
}

// New compiles src and returns a function callable as name.
func New(name string, src []byte, opts ...FunctionalOption) (*Function, error) {
	if name == "" {
		return nil, fmt.Errorf("validation error: function name cannot be empty")
	}
	f := &Function{name: name}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, fmt.Errorf("option error: %w", err)
		}
	}
	if f.logHandler == nil {
		f.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	f.logHandler, f.logger = helpers.SetupLogger(f.logHandler, "exprlang", "Function")
	f.logger = f.logger.With("function", name)

	if len(src) == 0 {
		return nil, ErrContentNil
	}
	program, err := exprLib.Compile(string(src), exprLib.Env(env(nil, nil)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}

	f.source = string(src)
	f.program = program
	f.logger.Debug("expr function ready", "deps", f.deps.String())
	return f, nil
}

// FromLoader reads the expression from ldr.
func FromLoader(name string, ldr loader.Loader, opts ...FunctionalOption) (*Function, error) {
	src, err := loader.ReadAll(ldr)
	if err != nil {
		return nil, err
	}
	return New(name, src, opts...)
}

func env(args []any, ctx map[string]any) map[string]any {
	if args == nil {
		args = []any{}
	}
	if ctx == nil {
		ctx = map[string]any{}
	}
	return map[string]any{
		constants.Args: args,
		constants.Ctx:  ctx,
	}
}

func (f *Function) String() string {
	return fmt.Sprintf("exprlang.Function{Name: %s}", f.name)
}

func (f *Function) Name() string {
	return f.name
}

func (f *Function) StaticDependencies() deps.Set {
	return f.deps
}

// Source returns the expression source.
func (f *Function) Source() string {
	return f.source
}

// Evaluate runs the program. The expr VM does not observe ctx, so
// cancellation is only checked before the run starts.
func (f *Function) Evaluate(ctx context.Context, inv expr.Invocation) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return value.Value{}, err
	}

	var ctxMap map[string]any
	if !f.deps.IsEmpty() {
		m, err := focus.Map(ctx, f.deps, inv)
		if err != nil {
			return value.Value{}, err
		}
		ctxMap = m
	}

	out, err := vm.Run(f.program, env(focus.Args(inv), ctxMap))
	if err != nil {
		return value.Value{}, fmt.Errorf("expr execution error: %w", err)
	}
	if out == nil {
		return value.Value{}, fmt.Errorf("%w: %s", ErrNilResult, f.name)
	}
	f.logger.DebugContext(ctx, "execution complete", "result", out)
	return focus.Result(f.name, out)
}
