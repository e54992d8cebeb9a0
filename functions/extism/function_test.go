package extism

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-xfn/platform/clock"
	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/evalctx"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/value"
)

func testHandler() slog.Handler {
	return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// newMockFunction returns a function whose plugin hands out inst for every
// instance request, including the entrypoint check.
func newMockFunction(t *testing.T, inst *mockInstance, opts ...FunctionalOption) (*Function, *mockPlugin) {
	t.Helper()
	plugin := &mockPlugin{}
	plugin.On("Instance", mock.Anything, mock.Anything).Return(inst, nil)
	inst.On("FunctionExists", DefaultEntrypoint).Return(true).Maybe()
	inst.On("Close", mock.Anything).Return(nil)

	opts = append([]FunctionalOption{WithLogHandler(testHandler())}, opts...)
	f, err := NewFromPlugin(t.Context(), "wasm_fn", plugin, opts...)
	require.NoError(t, err)
	return f, plugin
}

func TestNewFromPlugin(t *testing.T) {
	t.Parallel()

	t.Run("nil plugin", func(t *testing.T) {
		t.Parallel()
		_, err := NewFromPlugin(t.Context(), "f", nil)
		require.ErrorIs(t, err, ErrContentNil)
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		_, err := NewFromPlugin(t.Context(), "", &mockPlugin{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation error")
	})

	t.Run("bad option", func(t *testing.T) {
		t.Parallel()
		_, err := NewFromPlugin(t.Context(), "f", &mockPlugin{}, WithEntrypoint(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "option error")

		_, err = NewFromPlugin(t.Context(), "f", &mockPlugin{}, WithSettings(nil))
		require.Error(t, err)

		_, err = NewFromPlugin(t.Context(), "f", &mockPlugin{}, WithLogHandler(nil))
		require.Error(t, err)
	})

	t.Run("missing entrypoint", func(t *testing.T) {
		t.Parallel()
		inst := &mockInstance{}
		inst.On("FunctionExists", "process").Return(false)
		inst.On("Close", mock.Anything).Return(nil)
		plugin := &mockPlugin{}
		plugin.On("Instance", mock.Anything, mock.Anything).Return(inst, nil)

		_, err := NewFromPlugin(t.Context(), "f", plugin,
			WithLogHandler(testHandler()), WithEntrypoint("process"))
		require.ErrorIs(t, err, ErrEntrypointNotFound)
		inst.AssertExpectations(t)
	})

	t.Run("instance failure", func(t *testing.T) {
		t.Parallel()
		plugin := &mockPlugin{}
		plugin.On("Instance", mock.Anything, mock.Anything).Return(nil, errors.New("no memory"))

		_, err := NewFromPlugin(t.Context(), "f", plugin, WithLogHandler(testHandler()))
		require.ErrorIs(t, err, ErrCompileFailed)
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		f, _ := newMockFunction(t, &mockInstance{}, WithDependencies(deps.Last))
		assert.Equal(t, "wasm_fn", f.Name())
		assert.Equal(t, deps.Last, f.StaticDependencies())
		assert.Equal(t, "extism.Function{Name: wasm_fn, Entrypoint: main}", f.String())
	})
}

func TestAdoptClosesPluginOnFailure(t *testing.T) {
	t.Parallel()

	t.Run("missing entrypoint", func(t *testing.T) {
		t.Parallel()
		inst := &mockInstance{}
		inst.On("FunctionExists", "process").Return(false)
		inst.On("Close", mock.Anything).Return(nil)
		plugin := &mockPlugin{}
		plugin.On("Instance", mock.Anything, mock.Anything).Return(inst, nil)
		plugin.On("Close", mock.Anything).Return(nil).Once()

		f, err := newFunction("f", WithLogHandler(testHandler()), WithEntrypoint("process"))
		require.NoError(t, err)
		got, err := f.adopt(t.Context(), plugin)
		require.ErrorIs(t, err, ErrEntrypointNotFound)
		assert.Nil(t, got)
		plugin.AssertExpectations(t)
		inst.AssertExpectations(t)
	})

	t.Run("instance failure with close error", func(t *testing.T) {
		t.Parallel()
		plugin := &mockPlugin{}
		plugin.On("Instance", mock.Anything, mock.Anything).Return(nil, errors.New("no memory"))
		plugin.On("Close", mock.Anything).Return(errors.New("already closed")).Once()

		f, err := newFunction("f", WithLogHandler(testHandler()))
		require.NoError(t, err)
		_, err = f.adopt(t.Context(), plugin)
		require.ErrorIs(t, err, ErrCompileFailed)
		plugin.AssertExpectations(t)
	})

	t.Run("success keeps plugin open", func(t *testing.T) {
		t.Parallel()
		inst := &mockInstance{}
		inst.On("FunctionExists", DefaultEntrypoint).Return(true)
		inst.On("Close", mock.Anything).Return(nil)
		plugin := &mockPlugin{}
		plugin.On("Instance", mock.Anything, mock.Anything).Return(inst, nil)

		f, err := newFunction("f", WithLogHandler(testHandler()))
		require.NoError(t, err)
		got, err := f.adopt(t.Context(), plugin)
		require.NoError(t, err)
		assert.Same(t, f, got)
		plugin.AssertNotCalled(t, "Close", mock.Anything)
	})
}

func TestNewFunctionOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		f, err := newFunction("f")
		require.NoError(t, err)
		assert.Equal(t, DefaultEntrypoint, f.entrypoint)
		require.NotNil(t, f.settings)
		assert.True(t, f.settings.EnableWASI)
		assert.NotNil(t, f.logHandler)
		assert.NotNil(t, f.logger)
	})

	t.Run("with logger", func(t *testing.T) {
		t.Parallel()
		logger := slog.New(testHandler())
		f, err := newFunction("f", WithLogger(logger))
		require.NoError(t, err)
		assert.Equal(t, logger.Handler(), f.logHandler)
	})

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()
		_, err := newFunction("f", WithLogger(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "option error")
	})
}

func TestNewCompile(t *testing.T) {
	t.Parallel()

	_, err := New(t.Context(), "f", nil, WithLogHandler(testHandler()))
	require.ErrorIs(t, err, ErrContentNil)

	_, err = New(t.Context(), "f", []byte("not a wasm module"), WithLogHandler(testHandler()))
	require.ErrorIs(t, err, ErrCompileFailed)
}

func TestDecodeBase64(t *testing.T) {
	t.Parallel()

	got, err := DecodeBase64("AGFzbQ==")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x00asm"), got)

	_, err = DecodeBase64("%%%")
	require.ErrorIs(t, err, ErrInvalidBinary)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	seq := evalctx.MustSequence([]value.Value{value.Str("A"), value.Str("B"), value.Str("C")}, 2)
	fixed := clock.Fixed(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name      string
		deps      deps.Set
		args      []value.Value
		c         evalctx.Context
		wantInput map[string]any
		output    string
		want      value.Value
	}{
		{
			name:      "bare integer",
			args:      []value.Value{value.Integer(21)},
			c:         evalctx.Neutral(),
			wantInput: map[string]any{"args": []any{float64(21)}, "ctx": map[string]any{}},
			output:    "42",
			want:      value.Integer(42),
		},
		{
			name: "wrapped result with context",
			deps: deps.Position.Union(deps.Last),
			args: []value.Value{value.Str("row")},
			c:    seq,
			wantInput: map[string]any{
				"args": []any{"row"},
				"ctx":  map[string]any{"position": float64(2), "size": float64(3)},
			},
			output: `{"result": "row 2 of 3"}`,
			want:   value.Str("row 2 of 3"),
		},
		{
			name: "now",
			deps: deps.CurrentDateTime,
			c:    evalctx.Neutral(),
			wantInput: map[string]any{
				"args": []any{},
				"ctx":  map[string]any{"now": "2030-01-01T00:00:00.000Z"},
			},
			output: `"2030-01-01T00:00:00.000Z"`,
			want:   value.Str("2030-01-01T00:00:00.000Z"),
		},
		{
			name:      "datetime argument",
			args:      []value.Value{value.DateTime(time.Date(2004, 12, 31, 12, 0, 0, 0, time.UTC), true)},
			c:         evalctx.Neutral(),
			wantInput: map[string]any{"args": []any{"2004-12-31T12:00:00.000Z"}, "ctx": map[string]any{}},
			output:    "plain text",
			want:      value.Str("plain text"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			inst := &mockInstance{}
			inst.On("CallWithContext", mock.Anything, DefaultEntrypoint, mock.MatchedBy(func(data []byte) bool {
				var got map[string]any
				if err := json.Unmarshal(data, &got); err != nil {
					return false
				}
				return assert.ObjectsAreEqual(tt.wantInput, got)
			})).Return(uint32(0), []byte(tt.output), nil)

			f, _ := newMockFunction(t, inst, WithDependencies(tt.deps))
			got, err := f.Evaluate(t.Context(), expr.Invocation{Args: tt.args, Context: tt.c, Clock: fixed})
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want.Inspect(), got.Inspect())
			inst.AssertExpectations(t)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	t.Parallel()

	t.Run("non-zero exit", func(t *testing.T) {
		t.Parallel()
		inst := &mockInstance{}
		inst.On("CallWithContext", mock.Anything, DefaultEntrypoint, mock.Anything).
			Return(uint32(1), []byte(nil), nil)
		f, _ := newMockFunction(t, inst)

		_, err := f.Evaluate(t.Context(), expr.Invocation{Context: evalctx.Neutral()})
		require.ErrorIs(t, err, ErrNonZeroExit)
	})

	t.Run("call failure", func(t *testing.T) {
		t.Parallel()
		inst := &mockInstance{}
		inst.On("CallWithContext", mock.Anything, DefaultEntrypoint, mock.Anything).
			Return(uint32(0), []byte(nil), errors.New("trap"))
		f, _ := newMockFunction(t, inst)

		_, err := f.Evaluate(t.Context(), expr.Invocation{Context: evalctx.Neutral()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "trap")
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()
		inst := &mockInstance{}
		inst.On("CallWithContext", mock.Anything, DefaultEntrypoint, mock.Anything).
			Return(uint32(0), []byte(nil), errors.New("module closed"))
		f, _ := newMockFunction(t, inst)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := f.Evaluate(ctx, expr.Invocation{Context: evalctx.Neutral()})
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("null output", func(t *testing.T) {
		t.Parallel()
		inst := &mockInstance{}
		inst.On("CallWithContext", mock.Anything, DefaultEntrypoint, mock.Anything).
			Return(uint32(0), []byte("null"), nil)
		f, _ := newMockFunction(t, inst)

		_, err := f.Evaluate(t.Context(), expr.Invocation{Context: evalctx.Neutral()})
		require.Error(t, err)
	})

	t.Run("unsupported context", func(t *testing.T) {
		t.Parallel()
		f, _ := newMockFunction(t, &mockInstance{}, WithDependencies(deps.Last))

		_, err := f.Evaluate(t.Context(), expr.Invocation{Context: evalctx.Neutral()})
		require.ErrorIs(t, err, expr.ErrUnsupportedContext)
	})
}

func TestClose(t *testing.T) {
	t.Parallel()

	f, plugin := newMockFunction(t, &mockInstance{})
	plugin.On("Close", mock.Anything).Return(nil)
	require.NoError(t, f.Close(t.Context()))
	plugin.AssertCalled(t, "Close", mock.Anything)

	assert.NoError(t, (&Function{}).Close(t.Context()))
}

func TestDecodeOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		output  string
		want    any
		wantErr bool
	}{
		{name: "integer", output: "7", want: int64(7)},
		{name: "float", output: "2.5", want: 2.5},
		{name: "string", output: `"hi"`, want: "hi"},
		{name: "wrapped", output: `{"result": 9}`, want: int64(9)},
		{name: "object without result", output: `{"other": 1}`, want: map[string]any{"other": json.Number("1")}},
		{name: "raw text", output: "not json", want: "not json"},
		{name: "null", output: "null", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := decodeOutput([]byte(tt.output))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
