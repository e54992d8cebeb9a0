package helpers

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type errorReader struct{}

func (r *errorReader) Read(p []byte) (int, error) {
	return 0, errors.New("forced read error")
}

const helloWorldSHA = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestSHA256(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty string",
			in:   "",
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "basic string",
			in:   "hello world",
			want: helloWorldSHA,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SHA256(tt.in))
			require.Equal(t, tt.want, SHA256Bytes([]byte(tt.in)))
		})
	}
}

func TestSHA256Reader(t *testing.T) {
	t.Parallel()

	t.Run("string reader", func(t *testing.T) {
		got, err := SHA256Reader(strings.NewReader("hello world"))
		require.NoError(t, err)
		require.Equal(t, helloWorldSHA, got)
	})

	t.Run("read error", func(t *testing.T) {
		_, err := SHA256Reader(&errorReader{})
		require.Error(t, err)
	})
}

func TestShortID(t *testing.T) {
	t.Parallel()
	require.Equal(t, helloWorldSHA[:8], ShortID("hello world"))
	require.Equal(t, ShortID("last()"), ShortIDBytes([]byte("last()")))
	require.NotEqual(t, ShortID("last()"), ShortID("now()"))
}
