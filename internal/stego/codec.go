package stego

import (
	"fmt"
	"strings"
)

// Terminator marks the end of the hidden message.
const Terminator = "%%%"

// terminatorBits is the bit length added to every message by Terminator.
const terminatorBits = len(Terminator) * 8

// Bitstream is an ordered sequence of bits, one bit (0 or 1) per element.
type Bitstream []byte

// String renders the bitstream as '0' and '1' characters.
func (b Bitstream) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		sb.WriteByte('0' + bit&1)
	}
	return sb.String()
}

// ParseBitstream converts a string of '0' and '1' characters to a Bitstream.
func ParseBitstream(s string) (Bitstream, error) {
	bits := make(Bitstream, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			bits[i] = 0
		case '1':
			bits[i] = 1
		default:
			return nil, fmt.Errorf("invalid bit %q at offset %d", s[i], i)
		}
	}
	return bits, nil
}

// Encode converts a message to its keyed, terminated bitstream.
//
// The terminator is appended, every character is XORed with key and each
// result is emitted as 8 bits, most significant bit first. The returned
// stream is 8 × (characters + 3) bits long.
//
// Encode accepts any string of characters in U+0000..U+00FF, including the
// empty string. A character outside that range returns an error wrapping
// ErrUnencodableMessage.
func Encode(message string, key Key) (Bitstream, error) {
	raw, err := messageBytes(message + Terminator)
	if err != nil {
		return nil, err
	}

	bits := make(Bitstream, 0, len(raw)*8)
	for _, c := range raw {
		bits = appendByte(bits, c^byte(key))
	}
	return bits, nil
}

// TryDecode converts a bitstream back to a message.
//
// Bits are grouped in eights (a trailing partial group is ignored), XORed
// with key and mapped to characters. The text before the first terminator is
// returned. If no terminator is present the error is ErrNoTerminator.
func TryDecode(bits Bitstream, key Key) (string, error) {
	n := len(bits) / 8
	raw := make([]byte, n)
	for i := 0; i < n; i++ {
		raw[i] = packByte(bits[i*8:i*8+8]) ^ byte(key)
	}

	idx := strings.Index(string(raw), Terminator)
	if idx < 0 {
		return "", ErrNoTerminator
	}
	return latin1String(raw[:idx]), nil
}

// EncodedBits returns the bitstream length Encode produces for message
// without building it.
func EncodedBits(message string) int {
	return len([]rune(message))*8 + terminatorBits
}

// messageBytes maps each character of s to one byte.
func messageBytes(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		if r > 0xFF {
			return nil, fmt.Errorf("%w: %q at byte offset %d", ErrUnencodableMessage, r, i)
		}
		out = append(out, byte(r))
	}
	return out, nil
}

// latin1String maps each byte to the character with the same code point.
func latin1String(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, c := range raw {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// appendByte appends the 8 bits of c, most significant first.
func appendByte(bits Bitstream, c byte) Bitstream {
	for i := 7; i >= 0; i-- {
		bits = append(bits, (c>>i)&1)
	}
	return bits
}

// packByte assembles 8 bits, most significant first, into a byte.
func packByte(bits Bitstream) byte {
	var c byte
	for _, bit := range bits[:8] {
		c = c<<1 | bit&1
	}
	return c
}
