package extism

import (
	"context"

	extismSDK "github.com/extism/go-sdk"
	"github.com/stretchr/testify/mock"
)

type mockPlugin struct {
	mock.Mock
}

func (m *mockPlugin) Instance(ctx context.Context, config extismSDK.PluginInstanceConfig) (PluginInstance, error) {
	args := m.Called(ctx, config)
	instance, _ := args.Get(0).(PluginInstance)
	return instance, args.Error(1)
}

func (m *mockPlugin) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockInstance struct {
	mock.Mock
}

func (m *mockInstance) CallWithContext(ctx context.Context, name string, data []byte) (uint32, []byte, error) {
	args := m.Called(ctx, name, data)
	out, _ := args.Get(1).([]byte)
	return args.Get(0).(uint32), out, args.Error(2)
}

func (m *mockInstance) FunctionExists(name string) bool {
	args := m.Called(name)
	return args.Bool(0)
}

func (m *mockInstance) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
