// Package registry maps function names to implementations.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/robbyt/go-xfn/platform/expr"
)

var (
	ErrUnknownFunction   = errors.New("unknown function")
	ErrDuplicateFunction = errors.New("function already registered")
	ErrInvalidName       = errors.New("invalid function name")
)

// Registry is a name -> Function table. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]expr.Function
}

// New returns a registry holding fns.
func New(fns ...expr.Function) (*Registry, error) {
	r := &Registry{funcs: make(map[string]expr.Function)}
	for _, fn := range fns {
		if err := r.Register(fn); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds fn under its own name and under every alias.
func (r *Registry) Register(fn expr.Function, aliases ...string) error {
	if fn == nil {
		return fmt.Errorf("%w: function is nil", ErrInvalidName)
	}
	names := append([]string{fn.Name()}, aliases...)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidName)
		}
		if _, exists := r.funcs[name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateFunction, name)
		}
	}
	for _, name := range names {
		r.funcs[name] = fn
	}
	return nil
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (expr.Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return fn, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.funcs))
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{funcs: maps.Clone(r.funcs)}
}
