// Package builtin provides the standard functions: last(), now(),
// position(), current-dateTime() and concat().
package builtin

import (
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/registry"
)

// aliases are identifier-safe names for functions whose names contain '-'.
var aliases = map[string][]string{
	"current-dateTime": {"currentDateTime"},
}

// Functions returns a fresh instance of every builtin.
func Functions() []expr.Function {
	return []expr.Function{
		NewLast(),
		NewNow(),
		NewPosition(),
		NewCurrentDateTime(),
		NewConcat(),
	}
}

// Register adds every builtin, with its aliases, to r.
func Register(r *registry.Registry) error {
	for _, fn := range Functions() {
		if err := r.Register(fn, aliases[fn.Name()]...); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding only the builtins.
func NewRegistry() (*registry.Registry, error) {
	r, err := registry.New()
	if err != nil {
		return nil, err
	}
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
