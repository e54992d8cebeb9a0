package xfn

import (
	"fmt"
	"time"

	"github.com/robbyt/go-xfn/platform/value"
)

// execResult implements platform.EvaluatorResponse.
type execResult struct {
	value    value.Value
	execTime time.Duration
	exprID   string
}

func newExecResult(v value.Value, execTime time.Duration, exprID string) *execResult {
	return &execResult{
		value:    v,
		execTime: execTime,
		exprID:   exprID,
	}
}

func (r *execResult) String() string {
	return fmt.Sprintf(
		"ExecResult{Type: %s, Value: %s, ExecTime: %s, ExprID: %s}",
		r.Type(), r.value.Inspect(), r.GetExecTime(), r.GetExprID())
}

func (r *execResult) Type() value.Kind {
	return r.value.Kind()
}

func (r *execResult) Inspect() string {
	return r.value.Inspect()
}

func (r *execResult) Interface() any {
	return r.value.Interface()
}

func (r *execResult) Value() value.Value {
	return r.value
}

func (r *execResult) GetExprID() string {
	return r.exprID
}

func (r *execResult) GetExecTime() string {
	return r.execTime.String()
}
