package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrUnsupportedType is returned when a Go value has no Value representation.
var ErrUnsupportedType = errors.New("unsupported value type")

// Kind of a Value as a string.
type Kind string

// The value kinds visible to expressions.
const (
	NONE     Kind = "none"
	INT      Kind = "int"
	STRING   Kind = "string"
	DATETIME Kind = "datetime"
)

// Value is an immutable evaluator result. The zero Value has kind NONE.
type Value struct {
	kind       Kind
	i          int64
	s          string
	t          time.Time
	explicitTZ bool
}

// Integer returns an integer Value.
func Integer(i int64) Value {
	return Value{kind: INT, i: i}
}

// Str returns a string Value.
func Str(s string) Value {
	return Value{kind: STRING, s: s}
}

// DateTime returns a timestamp Value. When explicitTZ is set, the text form
// carries a trailing Z.
func DateTime(t time.Time, explicitTZ bool) Value {
	return Value{kind: DATETIME, t: t.UTC(), explicitTZ: explicitTZ}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	if v.kind == "" {
		return NONE
	}
	return v.kind
}

// IsZero reports whether v holds no value.
func (v Value) IsZero() bool {
	return v.Kind() == NONE
}

// Int returns the integer payload and whether v is an integer.
func (v Value) Int() (int64, bool) {
	return v.i, v.kind == INT
}

// Text returns the string payload and whether v is a string.
func (v Value) Text() (string, bool) {
	return v.s, v.kind == STRING
}

// Time returns the timestamp payload and whether v is a DateTime.
func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == DATETIME
}

// HasExplicitTZ reports whether a DateTime carries an explicit timezone marker.
func (v Value) HasExplicitTZ() bool {
	return v.kind == DATETIME && v.explicitTZ
}

// Equal reports structural equality.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case INT:
		return v.i == other.i
	case STRING:
		return v.s == other.s
	case DATETIME:
		return v.t.Equal(other.t) && v.explicitTZ == other.explicitTZ
	}
	return true
}

// String returns the textual representation used when a value is converted
// to a string inside an expression.
func (v Value) String() string {
	switch v.Kind() {
	case INT:
		return strconv.FormatInt(v.i, 10)
	case STRING:
		return v.s
	case DATETIME:
		return FormatDateTime(v.t, v.explicitTZ)
	}
	return ""
}

// Inspect returns a debugging representation that includes the kind.
func (v Value) Inspect() string {
	switch v.Kind() {
	case STRING:
		return strconv.Quote(v.s)
	case NONE:
		return "none"
	}
	return fmt.Sprintf("%s(%s)", v.Kind(), v.String())
}

// Interface converts the value to a native Go value.
func (v Value) Interface() any {
	switch v.Kind() {
	case INT:
		return v.i
	case STRING:
		return v.s
	case DATETIME:
		return v.t
	}
	return nil
}

// FromInterface converts a native Go value, as returned by the scripting
// engines, into a Value. Floats are accepted when they hold an integer.
func FromInterface(in any) (Value, error) {
	switch v := in.(type) {
	case Value:
		return v, nil
	case int:
		return Integer(int64(v)), nil
	case int8:
		return Integer(int64(v)), nil
	case int16:
		return Integer(int64(v)), nil
	case int32:
		return Integer(int64(v)), nil
	case int64:
		return Integer(v), nil
	case uint8:
		return Integer(int64(v)), nil
	case uint16:
		return Integer(int64(v)), nil
	case uint32:
		return Integer(int64(v)), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedType, v)
		}
		return Integer(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedType, v)
		}
		return Integer(int64(v)), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v < math.MinInt64 {
			return Value{}, fmt.Errorf("%w: non-integral number %v", ErrUnsupportedType, v)
		}
		return Integer(int64(v)), nil
	case string:
		return Str(v), nil
	case time.Time:
		return DateTime(v, true), nil
	case nil:
		return Value{}, fmt.Errorf("%w: nil", ErrUnsupportedType)
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, in)
	}
}
