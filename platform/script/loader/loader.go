// Package loader reads expression sources, library manifests and wasm
// modules from memory or disk.
package loader

import (
	"fmt"
	"io"
	"net/url"
)

// Loader is an interface used to load expression sources or binaries.
type Loader interface {
	GetReader() (io.ReadCloser, error)
	GetSourceURL() *url.URL
}

// ReadAll returns the full content of the loader.
func ReadAll(l Loader) ([]byte, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: loader is nil", ErrSourceNotAvailable)
	}
	r, err := l.GetReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceNotAvailable, err)
	}
	defer func() { _ = r.Close() }()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.GetSourceURL(), err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInputEmpty, l.GetSourceURL())
	}
	return b, nil
}
