package extism

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	extismSDK "github.com/extism/go-sdk"
	"github.com/tetratelabs/wazero"
)

var (
	ErrContentNil         = errors.New("wasm content is nil")
	ErrInvalidBinary      = errors.New("invalid wasm binary")
	ErrCompileFailed      = errors.New("failed to compile wasm function")
	ErrEntrypointNotFound = errors.New("wasm entrypoint not found")
	ErrNonZeroExit        = errors.New("wasm function returned non-zero exit code")
)

// Settings holds configuration for compiling a wasm module.
type Settings struct {
	// EnableWASI enables WASI support in the plugin
	EnableWASI bool
	// RuntimeConfig customizes the wazero runtime
	RuntimeConfig wazero.RuntimeConfig
	// HostFunctions are registered with the plugin
	HostFunctions []extismSDK.HostFunction
}

// DefaultSettings returns the default compilation settings.
func DefaultSettings() *Settings {
	return &Settings{
		EnableWASI:    true,
		RuntimeConfig: wazero.NewRuntimeConfig(),
	}
}

// DecodeBase64 decodes a base64-encoded wasm module.
func DecodeBase64(content string) ([]byte, error) {
	wasm, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBinary, err)
	}
	return wasm, nil
}

// compile builds a compiled plugin from raw wasm bytes.
func compile(ctx context.Context, wasm []byte, settings *Settings) (CompiledPlugin, error) {
	if len(wasm) == 0 {
		return nil, ErrContentNil
	}
	if settings == nil {
		settings = DefaultSettings()
	}

	manifest := extismSDK.Manifest{
		Wasm: []extismSDK.Wasm{
			extismSDK.WasmData{Data: wasm},
		},
	}
	config := extismSDK.PluginConfig{
		EnableWasi:    settings.EnableWASI,
		RuntimeConfig: settings.RuntimeConfig,
	}

	plugin, err := extismSDK.NewCompiledPlugin(ctx, manifest, config, settings.HostFunctions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	return NewCompiledPluginAdapter(plugin), nil
}
