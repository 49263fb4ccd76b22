package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// Prefix returns the first n characters of SHA256Hex(input).
// Used for cache keys and for log fields that must not carry raw values.
func Prefix(input string, n int) string {
	full := SHA256Hex(input)
	if n > len(full) || n <= 0 {
		return full
	}
	return full[:n]
}
