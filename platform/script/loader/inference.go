package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// InferLoader returns a loader for input:
//   - string: a file:// URL or absolute path loads from disk, anything else is inline content
//   - []byte: FromBytes
//   - Loader: returned as-is
func InferLoader(input any) (Loader, error) {
	switch v := input.(type) {
	case string:
		return inferFromString(v)
	case []byte:
		return NewFromBytes(v)
	case Loader:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported input type: %T", input)
	}
}

func inferFromString(input string) (Loader, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty string input", ErrInputEmpty)
	}
	if strings.HasPrefix(input, "file://") || filepath.IsAbs(input) {
		return NewFromDisk(input)
	}
	return NewFromString(input)
}
