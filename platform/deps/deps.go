// Package deps describes the static context dependencies a function declares.
//
// A dependency set is computed without looking at arguments or at any
// evaluation context. An empty set is what allows an evaluator to replace a
// call by its result at compile time.
package deps

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDependency is returned by Parse for names that are not flags.
var ErrUnknownDependency = errors.New("unknown dependency")

// Set is a bitset of dependency flags.
type Set uint16

const (
	// Position is the 1-based position of the context item in its sequence.
	Position Set = 1 << iota
	// Last is the size of the sequence being iterated.
	Last
	// ContextItem is the item at the current position.
	ContextItem
	// ContextDocument is the document the context item belongs to.
	ContextDocument
	// CurrentDateTime is the wall clock.
	CurrentDateTime
)

const (
	// None is the empty set.
	None Set = 0

	// Focus is every dependency on the ambient sequence iteration.
	Focus = Position | Last | ContextItem | ContextDocument
)

var names = []struct {
	flag Set
	name string
}{
	{Position, "position"},
	{Last, "last"},
	{ContextItem, "context-item"},
	{ContextDocument, "context-document"},
	{CurrentDateTime, "current-date-time"},
}

// Has reports whether every flag in other is present in s.
func (s Set) Has(other Set) bool {
	return s&other == other
}

// Any reports whether s and other share at least one flag.
func (s Set) Any(other Set) bool {
	return s&other != 0
}

// Union returns the flags of s and every set in others.
func (s Set) Union(others ...Set) Set {
	for _, o := range others {
		s |= o
	}
	return s
}

// IsEmpty reports whether no flag is set.
func (s Set) IsEmpty() bool {
	return s == None
}

// Names returns the flag names in declaration order.
func (s Set) Names() []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if s.Has(n.flag) {
			out = append(out, n.name)
		}
	}
	return out
}

func (s Set) String() string {
	if s.IsEmpty() {
		return "none"
	}
	return strings.Join(s.Names(), "|")
}

// Parse returns the flag with the given name.
func Parse(name string) (Set, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range names {
		if n.name == name {
			return n.flag, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownDependency, name)
}

// ParseList returns the union of the named flags.
func ParseList(list []string) (Set, error) {
	var s Set
	for _, name := range list {
		flag, err := Parse(name)
		if err != nil {
			return None, err
		}
		s |= flag
	}
	return s, nil
}
