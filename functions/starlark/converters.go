package starlark

import (
	"fmt"
	"time"

	starlarkTime "go.starlark.net/lib/time"
	starlarkLib "go.starlark.net/starlark"
)

// toStarlarkValue converts an argument or ctx entry to a Starlark value.
func toStarlarkValue(v any) (starlarkLib.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlarkLib.None, nil
	case int64:
		return starlarkLib.MakeInt64(val), nil
	case int:
		return starlarkLib.MakeInt(val), nil
	case string:
		return starlarkLib.String(val), nil
	case time.Time:
		return starlarkTime.Time(val), nil
	case map[string]any:
		dict := starlarkLib.NewDict(len(val))
		for k, elem := range val {
			sv, err := toStarlarkValue(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to convert dict value for key %q: %w", k, err)
			}
			if err := dict.SetKey(starlarkLib.String(k), sv); err != nil {
				return nil, fmt.Errorf("failed to set dict key %q: %w", k, err)
			}
		}
		return dict, nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

// fromStarlarkValue converts a Starlark result to a Go value accepted by
// value.FromInterface.
func fromStarlarkValue(v starlarkLib.Value) (any, error) {
	switch val := v.(type) {
	case starlarkLib.Int:
		i, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s overflows int64", val.String())
		}
		return i, nil
	case starlarkLib.String:
		return string(val), nil
	case starlarkLib.Float:
		return float64(val), nil
	case starlarkTime.Time:
		return time.Time(val), nil
	case nil, starlarkLib.NoneType:
		return nil, fmt.Errorf("function returned None")
	}
	return nil, fmt.Errorf("unsupported Starlark type %s", v.Type())
}
