package options

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-xfn/functions/builtin"
	"github.com/robbyt/go-xfn/platform/clock"
	"github.com/robbyt/go-xfn/platform/registry"
	"github.com/robbyt/go-xfn/platform/script/loader"
)

func TestWithOptions(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	handler := slog.NewTextHandler(os.Stdout, nil)
	mockClock := clock.NewMock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	reg, err := registry.New()
	require.NoError(t, err)
	lib := new(loader.MockLoader)

	for _, opt := range []Option{
		WithLogHandler(handler),
		WithClock(mockClock),
		WithRegistry(reg),
		WithFunctions(builtin.NewLast(), builtin.NewNow()),
		WithFunctions(builtin.NewConcat()),
		WithLibrary(lib),
	} {
		require.NoError(t, opt(cfg))
	}

	assert.Equal(t, handler, cfg.GetHandler())
	assert.Equal(t, mockClock, cfg.GetClock())
	assert.Same(t, reg, cfg.GetRegistry())
	assert.Len(t, cfg.GetFunctions(), 3)
	require.Len(t, cfg.GetLibraries(), 1)
	assert.Same(t, lib, cfg.GetLibraries()[0])
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	handler := slog.NewTextHandler(os.Stdout, nil)
	cfg := &Config{}
	require.NoError(t, WithLogger(slog.New(handler))(cfg))
	assert.Equal(t, handler, cfg.GetHandler())
}

func TestNilOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
	}{
		{name: "handler", opt: WithLogHandler(nil)},
		{name: "logger", opt: WithLogger(nil)},
		{name: "clock", opt: WithClock(nil)},
		{name: "registry", opt: WithRegistry(nil)},
		{name: "function", opt: WithFunctions(builtin.NewLast(), nil)},
		{name: "library", opt: WithLibrary(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			require.Error(t, tt.opt(cfg))
		})
	}
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log handler")

	cfg.handler = DefaultHandler()
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clock")

	cfg.clock = DefaultClock()
	require.NoError(t, cfg.Validate())
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.NotNil(t, cfg.GetHandler())
	assert.NotNil(t, cfg.GetClock())
	assert.Nil(t, cfg.GetRegistry())

	empty := &Config{}
	require.NoError(t, WithDefaults()(empty))
	require.NoError(t, empty.Validate())

	fixed := clock.Fixed(time.Unix(0, 0))
	kept := &Config{clock: fixed}
	require.NoError(t, WithDefaults()(kept))
	assert.Equal(t, fixed, kept.GetClock())
}
