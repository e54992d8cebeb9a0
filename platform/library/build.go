package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-xfn/functions/exprlang"
	"github.com/robbyt/go-xfn/functions/extism"
	"github.com/robbyt/go-xfn/functions/risor"
	"github.com/robbyt/go-xfn/functions/starlark"
	"github.com/robbyt/go-xfn/internal/helpers"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/script/loader"
)

// Build compiles every declared function. On error any wasm plugin built so
// far is closed.
func (m *Manifest) Build(ctx context.Context, handler slog.Handler) ([]expr.Function, error) {
	handler, logger := helpers.SetupLogger(handler, "library", "Build")

	fns := make([]expr.Function, 0, len(m.Functions))
	for _, fs := range m.Functions {
		fn, err := m.build(ctx, handler, fs)
		if err != nil {
			closeAll(ctx, logger, fns)
			return nil, fmt.Errorf("building %q: %w", fs.Name, err)
		}
		logger.DebugContext(ctx, "function built", "name", fs.Name, "engine", string(fs.Engine))
		fns = append(fns, fn)
	}
	return fns, nil
}

func (m *Manifest) build(ctx context.Context, handler slog.Handler, fs FunctionSpec) (expr.Function, error) {
	d, err := fs.DependencySet()
	if err != nil {
		return nil, err
	}
	ldr, err := m.sourceLoader(fs)
	if err != nil {
		return nil, err
	}
	src, err := loader.ReadAll(ldr)
	if err != nil {
		return nil, err
	}

	switch fs.Engine {
	case EngineStarlark:
		opts := []starlark.FunctionalOption{
			starlark.WithLogHandler(handler),
			starlark.WithDependencies(d),
		}
		if fs.Entrypoint != "" {
			opts = append(opts, starlark.WithEntrypoint(fs.Entrypoint))
		}
		return starlark.New(fs.Name, src, opts...)
	case EngineRisor:
		return risor.New(fs.Name, src, risor.WithLogHandler(handler), risor.WithDependencies(d))
	case EngineExpr:
		return exprlang.New(fs.Name, src, exprlang.WithLogHandler(handler), exprlang.WithDependencies(d))
	case EngineExtism:
		if fs.Source != "" {
			if src, err = extism.DecodeBase64(fs.Source); err != nil {
				return nil, err
			}
		}
		opts := []extism.FunctionalOption{
			extism.WithLogHandler(handler),
			extism.WithDependencies(d),
		}
		if fs.Entrypoint != "" {
			opts = append(opts, extism.WithEntrypoint(fs.Entrypoint))
		}
		return extism.New(ctx, fs.Name, src, opts...)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, fs.Engine)
}

type closer interface {
	Close(ctx context.Context) error
}

func closeAll(ctx context.Context, logger *slog.Logger, fns []expr.Function) {
	for _, fn := range fns {
		c, ok := fn.(closer)
		if !ok {
			continue
		}
		if err := c.Close(ctx); err != nil {
			logger.WarnContext(ctx, "failed to close function", "name", fn.Name(), "error", err)
		}
	}
}
