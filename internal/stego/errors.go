package stego

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImageMode is returned when a carrier does not expose at least
	// three colour channels per pixel.
	ErrInvalidImageMode = errors.New("image mode must be RGB/RGBA")

	// ErrMessageTooLarge is matched by *MessageTooLargeError.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrInvalidImage is returned when the input cannot be decoded into a
	// pixel grid.
	ErrInvalidImage = errors.New("invalid image")

	// ErrNoMessageFound is returned when a full scan of the carrier finds no
	// terminator.
	ErrNoMessageFound = errors.New("no valid message found")

	// ErrNoTerminator is returned by TryDecode when the decoded bytes do not
	// contain the terminator.
	ErrNoTerminator = errors.New("no termination sequence found")

	// ErrInvalidKey is returned for key text that is neither decimal nor
	// 0x-prefixed hexadecimal in the range 0-255.
	ErrInvalidKey = errors.New("invalid encryption key format")

	// ErrEmptyMessage is returned by callers that refuse to embed an empty
	// message.
	ErrEmptyMessage = errors.New("no message provided")

	// ErrUnencodableMessage is returned when a message contains a character
	// outside U+0000..U+00FF.
	ErrUnencodableMessage = errors.New("message contains characters that do not fit in one byte")

	// ErrAmbiguousMessage is returned when extraction would stop before the
	// end of the message because the terminator appears early.
	ErrAmbiguousMessage = errors.New("message would be truncated by the terminator")
)

// MessageTooLargeError reports the bit counts of a failed capacity check.
type MessageTooLargeError struct {
	// Required is the length of the keyed, terminated bitstream.
	Required int

	// Available is the carrier capacity in bits.
	Available int
}

func (e *MessageTooLargeError) Error() string {
	return fmt.Sprintf("message too large (%d bits > %d available)", e.Required, e.Available)
}

// Is makes errors.Is(err, ErrMessageTooLarge) succeed.
func (e *MessageTooLargeError) Is(target error) bool {
	return target == ErrMessageTooLarge
}
