package stego

import (
	"fmt"
	"image"
	"strings"
)

// CapacityInfo describes how much payload an image can carry.
type CapacityInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// CapacityBits is width × height × 3.
	CapacityBits int `json:"capacity_bits"`

	// CapacityBytes is CapacityBits / 8.
	CapacityBytes int `json:"capacity_bytes"`

	// MaxMessageChars is the longest message that fits once the terminator
	// is added.
	MaxMessageChars int `json:"max_message_chars"`
}

// Capacity reports the payload capacity of img.
func Capacity(img image.Image) (*CapacityInfo, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	if err := checkMode(img); err != nil {
		return nil, err
	}
	b := img.Bounds()
	bits := b.Dx() * b.Dy() * channelsPerPixel

	maxChars := bits/8 - len(Terminator)
	if maxChars < 0 {
		maxChars = 0
	}
	return &CapacityInfo{
		Width:           b.Dx(),
		Height:          b.Dy(),
		CapacityBits:    bits,
		CapacityBytes:   bits / 8,
		MaxMessageChars: maxChars,
	}, nil
}

// ValidateMessage checks that message will survive an embed/extract round
// trip.
//
// It fails with ErrEmptyMessage for "", ErrUnencodableMessage for characters
// above U+00FF, and ErrAmbiguousMessage when the first terminator in
// message+"%%%" would start before the end of the message (the message
// contains "%%%" or ends with '%').
func ValidateMessage(message string) error {
	if message == "" {
		return ErrEmptyMessage
	}
	if _, err := messageBytes(message); err != nil {
		return err
	}
	if idx := strings.Index(message+Terminator, Terminator); idx != len(message) {
		return fmt.Errorf("%w: terminator %q found at offset %d", ErrAmbiguousMessage, Terminator, idx)
	}
	return nil
}

// EmbedMessage hides message in a copy of img and returns the modified grid.
//
// The message is validated with ValidateMessage, then encoded with key. The
// source image is never modified.
func EmbedMessage(img image.Image, message string, key Key) (*image.NRGBA, error) {
	carrier, err := NewCarrier(img)
	if err != nil {
		return nil, err
	}
	if err := ValidateMessage(message); err != nil {
		return nil, err
	}

	bits, err := Encode(message, key)
	if err != nil {
		return nil, err
	}
	if err := carrier.Embed(bits); err != nil {
		return nil, err
	}
	return carrier.Image(), nil
}

// ExtractMessage recovers a message hidden in img with key.
func ExtractMessage(img image.Image, key Key) (string, error) {
	carrier, err := NewCarrier(img)
	if err != nil {
		return "", err
	}
	return carrier.Extract(key)
}
