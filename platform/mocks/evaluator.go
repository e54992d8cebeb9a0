// Package mocks provides testify mocks of the platform interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/robbyt/go-xfn/platform"
	"github.com/robbyt/go-xfn/platform/evalctx"
)

var _ platform.Evaluator = (*Evaluator)(nil)

// Evaluator is a mock implementation of platform.Evaluator for testing purposes.
type Evaluator struct {
	mock.Mock
}

// Eval is a mock implementation of the Eval method.
func (m *Evaluator) Eval(ctx context.Context, c evalctx.Context) (platform.EvaluatorResponse, error) {
	args := m.Called(ctx, c)
	resp, _ := args.Get(0).(platform.EvaluatorResponse)
	return resp, args.Error(1)
}
