package starlark

import (
	"errors"
	"fmt"

	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var (
	ErrCompileFailed      = errors.New("failed to compile starlark function")
	ErrContentNil         = errors.New("starlark content is nil")
	ErrEntrypointNotFound = errors.New("starlark entrypoint not found")
)

// compile parses the script and resolves its free names against the
// standard modules.
func compile(filename string, src []byte) (*starlarkLib.Program, error) {
	if len(src) == 0 {
		return nil, ErrContentNil
	}

	opts := &syntax.FileOptions{}
	f, err := opts.Parse(filename, src, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}

	prog, err := starlarkLib.FileProgram(f, predeclared().Has)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	return prog, nil
}

// initCallable runs the top level of the program once and returns the
// entrypoint with all globals frozen, so it can be called concurrently.
func initCallable(prog *starlarkLib.Program, entrypoint string) (starlarkLib.Callable, error) {
	thread := &starlarkLib.Thread{Name: "init"}
	globals, err := prog.Init(thread, predeclared())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	globals.Freeze()

	v, ok := globals[entrypoint]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntrypointNotFound, entrypoint)
	}
	callable, ok := v.(starlarkLib.Callable)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s, not callable", ErrEntrypointNotFound, entrypoint, v.Type())
	}
	return callable, nil
}
