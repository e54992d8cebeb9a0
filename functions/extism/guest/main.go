// Command guest is a sample Extism plugin callable from expressions. Build it
// with:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o guest.wasm .
//
// and reference guest.wasm from a library manifest:
//
//	functions:
//	  - name: countdown
//	    engine: extism
//	    entrypoint: countdown
//	    dependencies: [position, last]
//	    path: guest.wasm
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/extism/go-pdk"
)

// Input is the document the host writes for every call.
type Input struct {
	Args []any          `json:"args"`
	Ctx  map[string]any `json:"ctx"`
}

// Output wraps the returned value.
type Output struct {
	Result any `json:"result"`
}

func readInput() (Input, error) {
	var in Input
	if err := pdk.InputJSON(&in); err != nil {
		return in, err
	}
	return in, nil
}

func writeResult(v any) int32 {
	if err := pdk.OutputJSON(Output{Result: v}); err != nil {
		pdk.SetError(err)
		return 1
	}
	return 0
}

// ctxInt reads an integer context key. JSON numbers arrive as float64.
func ctxInt(in Input, key string) (int64, error) {
	v, ok := in.Ctx[key]
	if !ok {
		return 0, fmt.Errorf("ctx key %q not declared", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("ctx key %q is %T, expected number", key, v)
	}
	return int64(f), nil
}

//go:wasmexport countdown
func countdown() int32 {
	in, err := readInput()
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	pos, err := ctxInt(in, "position")
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	size, err := ctxInt(in, "size")
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	return writeResult(size - pos)
}

//go:wasmexport shout
func shout() int32 {
	in, err := readInput()
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	if len(in.Args) != 1 {
		pdk.SetError(errors.New("shout expects 1 argument"))
		return 1
	}
	s, ok := in.Args[0].(string)
	if !ok {
		pdk.SetError(fmt.Errorf("shout expects a string, got %T", in.Args[0]))
		return 1
	}
	return writeResult(strings.ToUpper(s) + "!")
}

//go:wasmexport reverse
func reverse() int32 {
	in, err := readInput()
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	if len(in.Args) != 1 {
		pdk.SetError(errors.New("reverse expects 1 argument"))
		return 1
	}
	runes := []rune(fmt.Sprint(in.Args[0]))
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return writeResult(string(runes))
}

func main() {}
