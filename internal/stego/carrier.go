package stego

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// channelsPerPixel is the number of channels used for embedding (R, G, B).
const channelsPerPixel = 3

// Carrier is an 8-bit RGBA pixel grid that hosts a hidden bitstream.
//
// The grid is a private copy of the source image. Embed modifies it in place;
// Extract only reads it.
type Carrier struct {
	img *image.NRGBA
}

// NewCarrier copies img into a Carrier.
//
// The image must expose at least three colour channels per pixel. Grayscale,
// paletted, CMYK and alpha-only images return an error wrapping
// ErrInvalidImageMode. Truecolour images of any bit depth are accepted and
// stored as non-premultiplied 8-bit channels.
func NewCarrier(img image.Image) (*Carrier, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	if err := checkMode(img); err != nil {
		return nil, err
	}
	return &Carrier{img: imaging.Clone(img)}, nil
}

// checkMode rejects images without R, G and B channels.
func checkMode(img image.Image) error {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64,
		*image.YCbCr, *image.NYCbCrA:
		return nil
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16,
		*image.Paletted, *image.CMYK:
		return fmt.Errorf("%w: got %s", ErrInvalidImageMode, modeName(img))
	}

	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model, color.AlphaModel, color.Alpha16Model, color.CMYKModel:
		return fmt.Errorf("%w: got %s", ErrInvalidImageMode, modeName(img))
	}
	if _, ok := img.ColorModel().(color.Palette); ok {
		return fmt.Errorf("%w: got %s", ErrInvalidImageMode, modeName(img))
	}
	return nil
}

// modeName describes the colour layout of img for error messages.
func modeName(img image.Image) string {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return "grayscale"
	case *image.Alpha, *image.Alpha16:
		return "alpha-only"
	case *image.Paletted:
		return "paletted"
	case *image.CMYK:
		return "CMYK"
	}
	return fmt.Sprintf("%T", img)
}

// Bounds returns the carrier's dimensions. The origin is always (0,0).
func (c *Carrier) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// CapacityBits returns width × height × 3.
func (c *Carrier) CapacityBits() int {
	b := c.img.Bounds()
	return b.Dx() * b.Dy() * channelsPerPixel
}

// Image returns the pixel grid, including any embedded bits.
func (c *Carrier) Image() *image.NRGBA {
	return c.img
}

// Embed writes bits into the channel LSBs in scan order.
//
// If the bitstream is longer than CapacityBits a *MessageTooLargeError is
// returned and no channel is modified. Channels after the last bit keep
// their original values.
func (c *Carrier) Embed(bits Bitstream) error {
	if avail := c.CapacityBits(); len(bits) > avail {
		return &MessageTooLargeError{Required: len(bits), Available: avail}
	}

	i := 0
	c.scan(func(off int) bool {
		if i >= len(bits) {
			return false
		}
		c.img.Pix[off] = c.img.Pix[off]&^1 | bits[i]&1
		i++
		return true
	})
	return nil
}

// Extract recovers the message hidden with key.
//
// Channels are read in scan order. After each complete byte the bytes read so
// far are checked for the terminator, and the message before it is returned
// at the first hit. Because every earlier check failed, the first occurrence
// of the terminator always ends at the newest byte, so only the tail needs
// to be compared. If the scan ends without a hit the error is
// ErrNoMessageFound.
func (c *Carrier) Extract(key Key) (string, error) {
	term := []byte(Terminator)
	decoded := make([]byte, 0, 64)

	var (
		cur   byte
		nbits int
		msg   string
		found bool
	)
	c.scan(func(off int) bool {
		cur = cur<<1 | c.img.Pix[off]&1
		nbits++
		if nbits < 8 {
			return true
		}

		decoded = append(decoded, cur^byte(key))
		cur, nbits = 0, 0
		if bytes.HasSuffix(decoded, term) {
			msg = latin1String(decoded[:len(decoded)-len(term)])
			found = true
			return false
		}
		return true
	})

	if !found {
		return "", ErrNoMessageFound
	}
	return msg, nil
}

// ReadBits returns the first n channel LSBs in scan order. Fewer bits are
// returned if the carrier is smaller than n.
func (c *Carrier) ReadBits(n int) Bitstream {
	if limit := c.CapacityBits(); n > limit {
		n = limit
	}
	if n < 0 {
		n = 0
	}
	bits := make(Bitstream, 0, n)
	c.scan(func(off int) bool {
		if len(bits) >= n {
			return false
		}
		bits = append(bits, c.img.Pix[off]&1)
		return true
	})
	return bits
}

// scan calls fn with the Pix offset of every R, G and B channel: rows top to
// bottom, columns left to right, channels R, G, B. It stops when fn returns
// false.
func (c *Carrier) scan(fn func(off int) bool) {
	b := c.img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := y * c.img.Stride
		for x := 0; x < b.Dx(); x++ {
			px := row + x*4
			for ch := 0; ch < channelsPerPixel; ch++ {
				if !fn(px + ch) {
					return
				}
			}
		}
	}
}
