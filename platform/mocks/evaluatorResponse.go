package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/robbyt/go-xfn/platform"
	"github.com/robbyt/go-xfn/platform/value"
)

var _ platform.EvaluatorResponse = (*EvaluatorResponse)(nil)

// EvaluatorResponse is a mock implementation of platform.EvaluatorResponse.
type EvaluatorResponse struct {
	mock.Mock
}

// Type returns a mockable Kind. A mock set up with a plain Go value reports
// the kind that value would convert to.
func (m *EvaluatorResponse) Type() value.Kind {
	args := m.Called()
	val := args.Get(0)

	switch v := val.(type) {
	case value.Kind:
		return v
	case int, int64:
		return value.INT
	case string:
		return value.STRING
	case nil:
		return value.NONE
	}
	panic("unknown type")
}

// Inspect returns a mockable string.
func (m *EvaluatorResponse) Inspect() string {
	args := m.Called()
	return args.String(0)
}

// Interface returns a mockable value of "any" type, and must be type asserted to the correct type.
func (m *EvaluatorResponse) Interface() any {
	args := m.Called()
	return args.Get(0)
}

// Value returns a mockable result value.
func (m *EvaluatorResponse) Value() value.Value {
	args := m.Called()
	v, _ := args.Get(0).(value.Value)
	return v
}

// GetExprID returns a mockable expression identifier.
func (m *EvaluatorResponse) GetExprID() string {
	args := m.Called()
	return args.String(0)
}

// GetExecTime returns a mockable execution time.
func (m *EvaluatorResponse) GetExecTime() string {
	args := m.Called()
	return args.String(0)
}
