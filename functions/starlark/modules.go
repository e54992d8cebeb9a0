package starlark

import (
	"maps"
	"sync"

	starlarkJSON "go.starlark.net/lib/json"
	starlarkMath "go.starlark.net/lib/math"
	starlarkTime "go.starlark.net/lib/time"
	starlarkLib "go.starlark.net/starlark"
)

// modules are predeclared next to the universe for every function body.
var modules = map[string]starlarkLib.Value{
	"json": starlarkJSON.Module,
	"math": starlarkMath.Module,
	"time": starlarkTime.Module,
}

// predeclared is built once and shared by compilation and initialization,
// which must resolve the same names. Starlark never writes to it.
var predeclared = sync.OnceValue(func() starlarkLib.StringDict {
	env := maps.Clone(starlarkLib.Universe)
	maps.Copy(env, modules)
	return env
})
