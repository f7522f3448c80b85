package stego

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is the single byte XORed with every message byte.
//
// It obfuscates the payload; it does not encrypt it.
type Key uint8

// DefaultKey is used when the caller supplies no key. Both embed and extract
// must fall back to the same value.
const DefaultKey Key = 0x1A

// String formats the key as 0x-prefixed hex.
func (k Key) String() string {
	return fmt.Sprintf("0x%02X", uint8(k))
}

// ParseKey parses key text supplied by a user.
//
// Accepted forms:
//   - "" (after trimming spaces): DefaultKey
//   - "0x1A" or "0X1a": hexadecimal
//   - "26": decimal
//
// Values outside 0-255 and anything else return an error wrapping
// ErrInvalidKey.
func ParseKey(text string) (Key, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return DefaultKey, nil
	}

	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	v, err := strconv.ParseUint(digits, base, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, text)
	}
	return Key(v), nil
}
