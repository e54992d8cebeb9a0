package risor

import (
	"context"
	"errors"
	"fmt"

	risorLib "github.com/risor-io/risor"
	risorCompiler "github.com/risor-io/risor/compiler"
	risorErrors "github.com/risor-io/risor/errz"
	risorParser "github.com/risor-io/risor/parser"

	"github.com/robbyt/go-xfn/platform/constants"
)

var (
	ErrContentNil     = errors.New("risor content is nil")
	ErrCompileFailed  = errors.New("failed to compile risor function")
	ErrNoInstructions = errors.New("risor bytecode has zero instructions")
	ErrBadResult      = errors.New("risor function returned an unusable result")
)

// compile turns the script into bytecode. The args and ctx globals are
// declared up front because they are only injected at evaluation time.
func compile(src []byte) (*risorCompiler.Code, error) {
	if len(src) == 0 {
		return nil, ErrContentNil
	}

	ast, err := risorParser.Parse(context.Background(), string(src))
	if err != nil {
		errMsg := err.Error()
		var friendlyErr risorErrors.FriendlyError
		if errors.As(err, &friendlyErr) {
			errMsg = friendlyErr.FriendlyErrorMessage()
		}
		return nil, fmt.Errorf("%w: %s", ErrCompileFailed, errMsg)
	}

	globalNames := append(risorLib.NewConfig().GlobalNames(), constants.Args, constants.Ctx)
	bc, err := risorCompiler.Compile(ast, risorCompiler.WithGlobalNames(globalNames))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	if bc.InstructionCount() == 0 {
		return nil, ErrNoInstructions
	}
	return bc, nil
}
