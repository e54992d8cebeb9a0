// Package extism implements expression functions compiled to WebAssembly
// and run through the Extism SDK.
//
// The exported entrypoint receives a JSON document on its input:
//
//	{"args": ["label", 3], "ctx": {"position": 2, "size": 3}}
//
// and writes either a bare JSON value or {"result": value} as output.
// Output that is not JSON is taken as a string.
package extism

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/robbyt/go-xfn/functions/internal/focus"
	"github.com/robbyt/go-xfn/platform/constants"
	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/value"
)

// DefaultEntrypoint is the exported function called when none is set.
const DefaultEntrypoint = "main"

const resultKey = "result"

// Function is an expr.Function backed by a compiled wasm plugin.
type Function struct {
	name       string
	entrypoint string
	deps       deps.Set
	settings   *Settings
	plugin     CompiledPlugin

	logHandler slog.Handler
	logger     *slog.Logger
}

// New compiles wasm and returns a function callable as name.
func New(ctx context.Context, name string, wasm []byte, opts ...FunctionalOption) (*Function, error) {
	f, err := newFunction(name, opts...)
	if err != nil {
		return nil, err
	}

	plugin, err := compile(ctx, wasm, f.settings)
	if err != nil {
		return nil, err
	}
	return f.adopt(ctx, plugin)
}

// NewFromPlugin wraps an already compiled plugin. The caller keeps
// ownership of plugin when an error is returned.
func NewFromPlugin(ctx context.Context, name string, plugin CompiledPlugin, opts ...FunctionalOption) (*Function, error) {
	if plugin == nil {
		return nil, ErrContentNil
	}
	f, err := newFunction(name, opts...)
	if err != nil {
		return nil, err
	}
	if err := f.attach(ctx, plugin); err != nil {
		return nil, err
	}
	return f, nil
}

func newFunction(name string, opts ...FunctionalOption) (*Function, error) {
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
	return f, nil
}

// adopt attaches a plugin compiled for f, closing it if attaching fails.
func (f *Function) adopt(ctx context.Context, plugin CompiledPlugin) (*Function, error) {
	if err := f.attach(ctx, plugin); err != nil {
		if closeErr := plugin.Close(ctx); closeErr != nil {
			f.logger.Warn("failed to close plugin", "error", closeErr)
		}
		return nil, err
	}
	return f, nil
}

// attach checks the entrypoint on a throwaway instance.
func (f *Function) attach(ctx context.Context, plugin CompiledPlugin) error {
	instance, err := plugin.Instance(ctx, NewPluginInstanceConfig())
	if err != nil {
		return fmt.Errorf("%w: failed to create plugin instance: %w", ErrCompileFailed, err)
	}
	defer f.closeInstance(ctx, instance)

	if !instance.FunctionExists(f.entrypoint) {
		return fmt.Errorf("%w: %s", ErrEntrypointNotFound, f.entrypoint)
	}
	f.plugin = plugin
	f.logger.Debug("wasm function ready", "entrypoint", f.entrypoint, "deps", f.deps.String())
	return nil
}

func (f *Function) closeInstance(ctx context.Context, instance PluginInstance) {
	if err := instance.Close(ctx); err != nil {
		f.logger.Warn("failed to close plugin instance", "error", err)
	}
}

func (f *Function) String() string {
	return fmt.Sprintf("extism.Function{Name: %s, Entrypoint: %s}", f.name, f.entrypoint)
}

func (f *Function) Name() string {
	return f.name
}

func (f *Function) StaticDependencies() deps.Set {
	return f.deps
}

// Close releases the compiled plugin.
func (f *Function) Close(ctx context.Context) error {
	if f.plugin == nil {
		return nil
	}
	return f.plugin.Close(ctx)
}

// Evaluate runs the entrypoint on a fresh plugin instance.
func (f *Function) Evaluate(ctx context.Context, inv expr.Invocation) (value.Value, error) {
	logger := f.logger.WithGroup("Evaluate")

	input, err := f.buildInput(ctx, inv)
	if err != nil {
		return value.Value{}, err
	}

	instance, err := f.plugin.Instance(ctx, NewPluginInstanceConfig())
	if err != nil {
		return value.Value{}, fmt.Errorf("failed to create plugin instance: %w", err)
	}
	defer f.closeInstance(ctx, instance)

	startTime := time.Now()
	exit, output, err := instance.CallWithContext(ctx, f.entrypoint, input)
	execTime := time.Since(startTime)
	if err != nil {
		if ctx.Err() != nil {
			return value.Value{}, fmt.Errorf("execution cancelled: %w", ctx.Err())
		}
		return value.Value{}, fmt.Errorf("extism execution error: %w", err)
	}
	if exit != 0 {
		return value.Value{}, fmt.Errorf("%w: %d", ErrNonZeroExit, exit)
	}

	result, err := decodeOutput(output)
	if err != nil {
		return value.Value{}, fmt.Errorf("result of %s: %w", f.name, err)
	}
	logger.DebugContext(ctx, "execution complete", "result", result, "execTime", execTime.String())
	return focus.Result(f.name, result)
}

func (f *Function) buildInput(ctx context.Context, inv expr.Invocation) ([]byte, error) {
	args := make([]any, len(inv.Args))
	for i, a := range inv.Args {
		if a.Kind() == value.DATETIME {
			args[i] = a.String()
			continue
		}
		args[i] = a.Interface()
	}

	ctxMap := map[string]any{}
	if !f.deps.IsEmpty() {
		m, err := focus.Map(ctx, f.deps, inv)
		if err != nil {
			return nil, err
		}
		if item, ok := m[constants.Item].(time.Time); ok {
			m[constants.Item] = value.FormatDateTime(item, true)
		}
		ctxMap = m
	}

	input, err := json.Marshal(map[string]any{
		constants.Args: args,
		constants.Ctx:  ctxMap,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input data: %w", err)
	}
	return input, nil
}

// decodeOutput reads the plugin output. Numbers are kept exact.
func decodeOutput(output []byte) (any, error) {
	var result any
	d := json.NewDecoder(bytes.NewReader(output))
	d.UseNumber()
	if err := d.Decode(&result); err != nil {
		return string(output), nil
	}

	if m, ok := result.(map[string]any); ok {
		if v, found := m[resultKey]; found {
			result = v
		}
	}

	if n, ok := result.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		fl, err := n.Float64()
		if err != nil {
			return nil, err
		}
		return fl, nil
	}
	if result == nil {
		return nil, fmt.Errorf("wasm function returned null")
	}
	return result, nil
}
