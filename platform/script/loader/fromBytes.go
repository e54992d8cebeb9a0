package loader

import (
	"bytes"
	"fmt"
	"io"
	"net/url"

	"github.com/robbyt/go-xfn/internal/helpers"
)

// FromBytes implements the Loader interface for content from a byte slice,
// such as an embedded wasm module.
type FromBytes struct {
	content   []byte
	sourceURL *url.URL
}

// NewFromBytes creates a new Loader from a byte slice.
func NewFromBytes(content []byte) (*FromBytes, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: content is empty", ErrSourceNotAvailable)
	}

	// Binary data (wasm) is never treated as blank text
	if !hasBinaryCharacters(content) && len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf(
			"%w: content is empty or contains only whitespace",
			ErrSourceNotAvailable,
		)
	}

	u, err := url.Parse("bytes://inline/" + helpers.ShortIDBytes(content))
	if err != nil {
		return nil, fmt.Errorf("failed to create source URL: %w", err)
	}

	return &FromBytes{
		content:   content,
		sourceURL: u,
	}, nil
}

func (l *FromBytes) String() string {
	return fmt.Sprintf("loader.FromBytes{Bytes: %d}", len(l.content))
}

// GetReader returns a new reader for the stored content.
func (l *FromBytes) GetReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(l.content)), nil
}

// GetSourceURL returns the source URL of the content.
func (l *FromBytes) GetSourceURL() *url.URL {
	return l.sourceURL
}

// hasBinaryCharacters checks if data contains likely binary (non-text) data
func hasBinaryCharacters(data []byte) bool {
	for _, b := range data {
		if b == 0 || (b < 32 && b != '\n' && b != '\r' && b != '\t') {
			return true
		}
	}
	return false
}
