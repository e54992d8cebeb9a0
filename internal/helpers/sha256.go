package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// shortIDLen is the number of hex characters kept by ShortID.
const shortIDLen = 8

func SHA256(input string) string {
	return SHA256Bytes([]byte(input))
}

func SHA256Bytes(input []byte) string {
	hash := sha256.Sum256(input)
	return hex.EncodeToString(hash[:])
}

func SHA256Reader(reader io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, reader); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// ShortID returns a stable identifier for inline sources.
func ShortID(input string) string {
	return SHA256(input)[:shortIDLen]
}

// ShortIDBytes is ShortID for byte content.
func ShortIDBytes(input []byte) string {
	return SHA256Bytes(input)[:shortIDLen]
}
