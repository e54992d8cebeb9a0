package exprlang

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-xfn/platform/clock"
	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/evalctx"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/script/loader"
	"github.com/robbyt/go-xfn/platform/value"
)

func testHandler() slog.Handler {
	return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fnName  string
		src     string
		wantErr error
	}{
		{name: "arithmetic", fnName: "double", src: "args[0] * 2"},
		{name: "ctx member", fnName: "pos", src: "ctx.position"},
		{name: "empty source", fnName: "empty", src: "", wantErr: ErrContentNil},
		{name: "syntax error", fnName: "broken", src: "args[0] +", wantErr: ErrCompileFailed},
		{name: "unknown variable", fnName: "broken", src: "missing + 1", wantErr: ErrCompileFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := New(tt.fnName, []byte(tt.src), WithLogHandler(testHandler()))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, f)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.fnName, f.Name())
			assert.Equal(t, tt.src, f.Source())
			assert.Equal(t, "exprlang.Function{Name: "+tt.fnName+"}", f.String())
		})
	}

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		_, err := New("", []byte("1"))
		require.Error(t, err)
	})

	t.Run("nil handler", func(t *testing.T) {
		t.Parallel()
		_, err := New("f", []byte("1"), WithLogHandler(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "option error")
	})
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	seq := evalctx.MustSequence([]value.Value{value.Str("A"), value.Str("B"), value.Str("C")}, 2)

	tests := []struct {
		name string
		src  string
		deps deps.Set
		args []value.Value
		c    evalctx.Context
		want value.Value
	}{
		{
			name: "integer arithmetic",
			src:  "args[0] * 2",
			args: []value.Value{value.Integer(21)},
			c:    evalctx.Neutral(),
			want: value.Integer(42),
		},
		{
			name: "string concatenation",
			src:  "args[0] + \"-\" + args[1]",
			args: []value.Value{value.Str("x"), value.Str("y")},
			c:    evalctx.Neutral(),
			want: value.Str("x-y"),
		},
		{
			name: "position and size",
			src:  "ctx.position * 10 + ctx.size",
			deps: deps.Position.Union(deps.Last),
			c:    seq,
			want: value.Integer(23),
		},
		{
			name: "context item",
			src:  "ctx.item",
			deps: deps.ContextItem,
			c:    seq,
			want: value.Str("B"),
		},
		{
			name: "fallback size",
			src:  "ctx.size",
			deps: deps.Last,
			c:    evalctx.NewSingleton(evalctx.StaticSize(5)),
			want: value.Integer(5),
		},
		{
			name: "only declared keys",
			src:  "len(ctx)",
			deps: deps.Position,
			c:    seq,
			want: value.Integer(1),
		},
		{
			name: "integral float",
			src:  "3.0",
			c:    evalctx.Neutral(),
			want: value.Integer(3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := New("test_fn", []byte(tt.src),
				WithLogHandler(testHandler()), WithDependencies(tt.deps))
			require.NoError(t, err)
			assert.Equal(t, tt.deps, f.StaticDependencies())

			got, err := f.Evaluate(t.Context(), expr.Invocation{Args: tt.args, Context: tt.c})
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want.Inspect(), got.Inspect())
		})
	}
}

func TestEvaluateNow(t *testing.T) {
	t.Parallel()

	f, err := New("stamp", []byte("ctx.now"),
		WithLogHandler(testHandler()), WithDependencies(deps.CurrentDateTime))
	require.NoError(t, err)

	fixed := clock.Fixed(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	got, err := f.Evaluate(t.Context(), expr.Invocation{Context: evalctx.Neutral(), Clock: fixed})
	require.NoError(t, err)
	assert.Equal(t, value.Str("2030-01-01T00:00:00.000Z"), got)
}

func TestEvaluateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		deps    deps.Set
		wantErr error
	}{
		{name: "nil result", src: "ctx.item", wantErr: ErrNilResult},
		{name: "fractional result", src: "1.5", wantErr: value.ErrUnsupportedType},
		{name: "list result", src: "[1, 2]", wantErr: value.ErrUnsupportedType},
		{name: "unsupported context", src: "ctx.size", deps: deps.Last, wantErr: expr.ErrUnsupportedContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := New("bad", []byte(tt.src),
				WithLogHandler(testHandler()), WithDependencies(tt.deps))
			require.NoError(t, err)

			_, err = f.Evaluate(t.Context(), expr.Invocation{Context: evalctx.Neutral()})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("negative fallback size", func(t *testing.T) {
		t.Parallel()
		f, err := New("size", []byte(`ctx["size"]`),
			WithLogHandler(testHandler()), WithDependencies(deps.Last))
		require.NoError(t, err)

		_, err = f.Evaluate(t.Context(), expr.Invocation{Context: evalctx.NewSingleton(evalctx.StaticSize(-1))})
		require.ErrorIs(t, err, expr.ErrInvalidContext)
		assert.NotErrorIs(t, err, expr.ErrUnsupportedContext)
		assert.ErrorIs(t, err, evalctx.ErrInvalidSize)
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()
		f, err := New("one", []byte("1"), WithLogHandler(testHandler()))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err = f.Evaluate(ctx, expr.Invocation{Context: evalctx.Neutral()})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestFromLoader(t *testing.T) {
	t.Parallel()

	ldr, err := loader.NewFromString("\"loaded\"")
	require.NoError(t, err)

	f, err := FromLoader("loaded", ldr, WithLogHandler(testHandler()))
	require.NoError(t, err)

	got, err := f.Evaluate(t.Context(), expr.Invocation{Context: evalctx.Neutral()})
	require.NoError(t, err)
	assert.Equal(t, value.Str("loaded"), got)
}
