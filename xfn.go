// Package xfn compiles and evaluates context-dependent expression
// functions such as last() and now().
//
// An expression is compiled once, during which every call that depends on
// nothing but literal arguments is folded to a constant. The compiled
// program can then be evaluated many times against a Sequence or Singleton
// focus.
package xfn

import (
	"context"
	"fmt"

	"github.com/robbyt/go-xfn/engine"
	"github.com/robbyt/go-xfn/functions/builtin"
	"github.com/robbyt/go-xfn/internal/helpers"
	"github.com/robbyt/go-xfn/options"
	"github.com/robbyt/go-xfn/platform"
	"github.com/robbyt/go-xfn/platform/evalctx"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/library"
	"github.com/robbyt/go-xfn/platform/parser"
	"github.com/robbyt/go-xfn/platform/registry"
	"github.com/robbyt/go-xfn/platform/script/loader"
)

// Compile parses and compiles an inline expression.
func Compile(source string, opts ...options.Option) (*Program, error) {
	l, err := loader.NewFromString(source)
	if err != nil {
		return nil, err
	}
	return FromLoader(l, opts...)
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string, opts ...options.Option) *Program {
	p, err := Compile(source, opts...)
	if err != nil {
		panic(fmt.Sprintf("xfn: Compile(%q): %v", source, err))
	}
	return p
}

// FromLoader parses and compiles the expression read from l.
func FromLoader(l loader.Loader, opts ...options.Option) (*Program, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return createProgram(context.Background(), cfg, l)
}

// Eval compiles source and evaluates it once against c.
func Eval(
	ctx context.Context,
	source string,
	c evalctx.Context,
	opts ...options.Option,
) (platform.EvaluatorResponse, error) {
	p, err := Compile(source, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = p.Close(ctx) }()
	return p.Eval(ctx, c)
}

func newConfig(opts ...options.Option) (*options.Config, error) {
	cfg := options.DefaultConfig()

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}

	// Apply defaults option as final step to fill in any missing values
	if err := options.WithDefaults()(cfg); err != nil {
		return nil, fmt.Errorf("error applying defaults: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createProgram(ctx context.Context, cfg *options.Config, l loader.Loader) (*Program, error) {
	handler, logger := helpers.SetupLogger(cfg.GetHandler(), "xfn", "Program")

	reg, fns, err := buildRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p := &Program{closers: closers(fns), logger: logger}

	src, err := loader.ReadAll(l)
	if err != nil {
		_ = p.Close(ctx)
		return nil, err
	}
	p.source = string(src)
	if u := l.GetSourceURL(); u != nil {
		p.id = u.String()
	}

	parsed, err := parser.Parse(p.source, reg)
	if err != nil {
		_ = p.Close(ctx)
		return nil, err
	}

	ev, err := engine.New(engine.WithLogHandler(handler), engine.WithClock(cfg.GetClock()))
	if err != nil {
		_ = p.Close(ctx)
		return nil, err
	}
	compiled, err := ev.Compile(ctx, parsed)
	if err != nil {
		_ = p.Close(ctx)
		return nil, err
	}

	p.evaluator = ev
	p.expression = compiled
	logger.DebugContext(ctx, "program compiled", "id", p.id, "expr", compiled.String())
	return p, nil
}

// buildRegistry returns the resolver for the program and the scripted
// functions built from library manifests.
func buildRegistry(ctx context.Context, cfg *options.Config) (*registry.Registry, []expr.Function, error) {
	var reg *registry.Registry
	if base := cfg.GetRegistry(); base != nil {
		reg = base.Clone()
	} else {
		var err error
		if reg, err = builtin.NewRegistry(); err != nil {
			return nil, nil, err
		}
	}

	for _, fn := range cfg.GetFunctions() {
		if err := reg.Register(fn); err != nil {
			return nil, nil, err
		}
	}

	var built []expr.Function
	for _, l := range cfg.GetLibraries() {
		m, err := library.Load(l)
		if err != nil {
			closeFunctions(ctx, built)
			return nil, nil, err
		}
		fns, err := m.Build(ctx, cfg.GetHandler())
		if err != nil {
			closeFunctions(ctx, built)
			return nil, nil, err
		}
		built = append(built, fns...)
		for _, fn := range fns {
			if err := reg.Register(fn); err != nil {
				closeFunctions(ctx, built)
				return nil, nil, err
			}
		}
	}
	return reg, built, nil
}
