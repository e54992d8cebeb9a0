// Package evalctx models the evaluation position an expression runs at.
//
// A context has exactly one of two shapes. A Sequence is the "inside a
// nodeset iteration" shape, with an ordered set of items, a 1-based position
// and a size. A Singleton is the top-level shape, with no ambient iteration;
// functions that need a size fall back to a provider supplied by the host.
// The caller decides which shape applies at a call site, never the function.
package evalctx

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/robbyt/go-xfn/platform/value"
)

var (
	ErrPositionOutOfRange = errors.New("context position out of range")
	ErrNoFallbackSize     = errors.New("no fallback size configured")
	ErrInvalidSize        = errors.New("invalid context size")
)

// Context is implemented by *Sequence and *Singleton only.
type Context interface {
	isContext()
	String() string
}

// Sequence is the context of an item inside an iterated sequence.
type Sequence struct {
	items    []value.Value
	position int
	size     int
}

// NewSequence returns the context of the item at position (1-based) of items.
// The context keeps its own copy of items.
func NewSequence(items []value.Value, position int) (*Sequence, error) {
	s := &Sequence{items: slices.Clone(items), position: position, size: len(items)}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewCountedSequence returns a context for a sequence whose size is known but
// whose items were not materialized.
func NewCountedSequence(position, size int) (*Sequence, error) {
	s := &Sequence{position: position, size: size}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustSequence is like NewSequence but panics on an invalid position.
func MustSequence(items []value.Value, position int) *Sequence {
	s, err := NewSequence(items, position)
	if err != nil {
		panic(err)
	}
	return s
}

func (*Sequence) isContext() {}

// Validate checks that the position lies within 1..size.
func (s *Sequence) Validate() error {
	if s.size < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, s.size)
	}
	if s.items != nil && len(s.items) != s.size {
		return fmt.Errorf("%w: %d items for size %d", ErrInvalidSize, len(s.items), s.size)
	}
	if s.position < 1 || s.position > s.size {
		return fmt.Errorf("%w: position %d, size %d", ErrPositionOutOfRange, s.position, s.size)
	}
	return nil
}

// Position returns the 1-based position.
func (s *Sequence) Position() int {
	return s.position
}

// Size returns the sequence size.
func (s *Sequence) Size() int {
	return s.size
}

// Item returns the item at the current position, if the items are known.
func (s *Sequence) Item() (value.Value, bool) {
	if s.items == nil {
		return value.Value{}, false
	}
	return s.items[s.position-1], true
}

// Items returns a copy of the sequence items, or nil for a counted sequence.
func (s *Sequence) Items() []value.Value {
	if s.items == nil {
		return nil
	}
	out := make([]value.Value, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Sequence) String() string {
	if s == nil {
		return "sequence(<nil>)"
	}
	return fmt.Sprintf("sequence(position=%d,size=%d)", s.position, s.size)
}

// Singleton is the context of a top-level evaluation.
type Singleton struct {
	item     value.Value
	hasItem  bool
	fallback SizeProvider
}

// SingletonOption configures a Singleton.
type SingletonOption func(*Singleton)

// WithItem sets the underlying item of the singleton.
func WithItem(item value.Value) SingletonOption {
	return func(s *Singleton) {
		s.item = item
		s.hasItem = true
	}
}

// NewSingleton returns a top-level context. fallback supplies the size of the
// outer sequence and may be nil when the host has none.
func NewSingleton(fallback SizeProvider, opts ...SingletonOption) *Singleton {
	s := &Singleton{fallback: fallback}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Neutral returns the context used to fold constant calls at compile time.
// It has no item and no fallback size.
func Neutral() *Singleton {
	return &Singleton{}
}

func (*Singleton) isContext() {}

// Item returns the underlying item, if any.
func (s *Singleton) Item() (value.Value, bool) {
	if s == nil {
		return value.Value{}, false
	}
	return s.item, s.hasItem
}

// HasFallback reports whether a fallback size provider is configured.
func (s *Singleton) HasFallback() bool {
	return s != nil && s.fallback != nil
}

// FallbackSize asks the provider for the outer sequence size.
func (s *Singleton) FallbackSize(ctx context.Context) (int, error) {
	if s == nil || s.fallback == nil {
		return 0, ErrNoFallbackSize
	}
	n, err := s.fallback.Size(ctx)
	if err != nil {
		return 0, fmt.Errorf("fallback size: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: fallback size %d", ErrInvalidSize, n)
	}
	return n, nil
}

func (s *Singleton) String() string {
	return "singleton"
}

// Validate checks the shape invariants of c.
func Validate(c Context) error {
	switch c := c.(type) {
	case *Sequence:
		if c == nil {
			return ErrInvalidSize
		}
		return c.Validate()
	case *Singleton:
		return nil
	}
	return fmt.Errorf("unknown context type %T", c)
}

// Describe renders c for error messages.
func Describe(c Context) string {
	if c == nil {
		return "<nil>"
	}
	return c.String()
}

// SizeOf returns the size of the current sequence. Inside a sequence it is
// the sequence size; at top level it is the fallback size.
func SizeOf(ctx context.Context, c Context) (int, error) {
	switch c := c.(type) {
	case *Sequence:
		return c.Size(), nil
	case *Singleton:
		return c.FallbackSize(ctx)
	}
	return 0, fmt.Errorf("unknown context type %T", c)
}

// PositionOf returns the 1-based context position. A top-level evaluation is
// its own single-item focus and reports 1.
func PositionOf(c Context) int {
	if s, ok := c.(*Sequence); ok {
		return s.Position()
	}
	return 1
}

// ItemOf returns the context item when it is known.
func ItemOf(c Context) (value.Value, bool) {
	switch c := c.(type) {
	case *Sequence:
		return c.Item()
	case *Singleton:
		return c.Item()
	}
	return value.Value{}, false
}
