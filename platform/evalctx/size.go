package evalctx

import (
	"context"
	"errors"
	"fmt"

	"github.com/robbyt/go-xfn/platform/constants"
)

// SizeProvider supplies the size of the outer sequence for top-level
// evaluations.
type SizeProvider interface {
	Size(ctx context.Context) (int, error)
}

// StaticSize is a provider with a size known in advance.
type StaticSize int

// Size returns n regardless of the context.
func (n StaticSize) Size(context.Context) (int, error) {
	return int(n), nil
}

// SizeFunc adapts a function to the SizeProvider interface.
type SizeFunc func(ctx context.Context) (int, error)

// Size calls f.
func (f SizeFunc) Size(ctx context.Context) (int, error) {
	return f(ctx)
}

// ContextSizeProvider reads the outer size stored in a context.Context using a
// specified key.
type ContextSizeProvider struct {
	contextKey constants.ContextKey
}

// NewContextSizeProvider creates a provider reading the given context key.
func NewContextSizeProvider(contextKey constants.ContextKey) *ContextSizeProvider {
	return &ContextSizeProvider{
		contextKey: contextKey,
	}
}

// Size extracts the size from the context using the configured key.
func (p *ContextSizeProvider) Size(ctx context.Context) (int, error) {
	if p.contextKey == "" {
		return 0, fmt.Errorf("context key is empty")
	}

	v := ctx.Value(p.contextKey)
	if v == nil {
		return 0, fmt.Errorf("%w: nothing stored under %q", ErrNoFallbackSize, p.contextKey)
	}

	n, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("invalid size type: expected int, got %T", v)
	}
	return n, nil
}

// AddSizeToContext stores the outer size in the context under the
// configured key.
func (p *ContextSizeProvider) AddSizeToContext(ctx context.Context, n int) (context.Context, error) {
	if p.contextKey == "" {
		return ctx, fmt.Errorf("context key is empty")
	}
	if n < 0 {
		return ctx, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	return context.WithValue(ctx, p.contextKey, n), nil
}

// WithOuterSize stores n under constants.OuterSize, the key read by
// DefaultSizeProvider.
func WithOuterSize(ctx context.Context, n int) (context.Context, error) {
	return DefaultSizeProvider().AddSizeToContext(ctx, n)
}

// DefaultSizeProvider reads constants.OuterSize from the context.
func DefaultSizeProvider() *ContextSizeProvider {
	return NewContextSizeProvider(constants.OuterSize)
}

// CompositeSize queries providers in order and returns the first size found.
// A provider reporting ErrNoFallbackSize passes to the next one; any other
// error stops the chain.
type CompositeSize struct {
	providers []SizeProvider
}

// NewCompositeSize creates a provider that queries the given providers in order.
func NewCompositeSize(providers ...SizeProvider) *CompositeSize {
	return &CompositeSize{providers: providers}
}

// Size returns the size reported by the first provider that has one.
func (p *CompositeSize) Size(ctx context.Context) (int, error) {
	for i, provider := range p.providers {
		if provider == nil {
			continue
		}
		n, err := provider.Size(ctx)
		if errors.Is(err, ErrNoFallbackSize) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("error from provider %d: %w", i, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: no provider in the chain has a size", ErrNoFallbackSize)
}
