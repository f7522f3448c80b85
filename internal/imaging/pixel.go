package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBAColor represents an RGBA color with 8-bit non-premultiplied components.
type RGBAColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// PixelResult describes one pixel and the bits it carries.
type PixelResult struct {
	X    int       `json:"x"`
	Y    int       `json:"y"`
	Hex  string    `json:"hex"`  // "#RRGGBB" (no alpha)
	RGBA RGBAColor `json:"rgba"` // Channel values
	HSL  HSLColor  `json:"hsl"`

	// LSBs holds the least-significant bits of R, G and B, in embedding order.
	LSBs [3]uint8 `json:"lsbs"`

	// BitOffset is the position of this pixel's R bit in the carrier's scan
	// order (row-major, 3 bits per pixel).
	BitOffset int `json:"bit_offset"`
}

// nrgbaAt returns the non-premultiplied 8-bit color at (x, y).
func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n.NRGBAAt(x, y)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// SamplePixel returns the channel values and LSBs at a pixel coordinate.
//
// Coordinates are relative to the image bounds origin, as in the carrier
// scan: (0,0) is the top-left pixel. Coordinates outside the image return an
// error.
func SamplePixel(img image.Image, x, y int) (*PixelResult, error) {
	bounds := img.Bounds()
	if x < 0 || y < 0 || x >= bounds.Dx() || y >= bounds.Dy() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	c := nrgbaAt(img, bounds.Min.X+x, bounds.Min.Y+y)

	return &PixelResult{
		X:         x,
		Y:         y,
		Hex:       fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		RGBA:      RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL:       toHSL(c),
		LSBs:      [3]uint8{c.R & 1, c.G & 1, c.B & 1},
		BitOffset: (y*bounds.Dx() + x) * 3,
	}, nil
}

// LabeledPoint represents a pixel coordinate with an optional descriptive label.
type LabeledPoint struct {
	X     int    // X coordinate (0-based)
	Y     int    // Y coordinate (0-based)
	Label string // Optional descriptive label for this point
}

// LabeledPixelResult combines a pixel sample with an optional label.
type LabeledPixelResult struct {
	Label string      `json:"label,omitempty"`
	Pixel PixelResult `json:"pixel"`
}

// MultiPixelResult contains pixel samples in input order.
type MultiPixelResult struct {
	Samples []LabeledPixelResult `json:"samples"`
}

// SamplePixelsMulti samples several points in one call.
//
// If any coordinate is outside the image, no partial results are returned.
func SamplePixelsMulti(img image.Image, points []LabeledPoint) (*MultiPixelResult, error) {
	results := make([]LabeledPixelResult, 0, len(points))

	for _, p := range points {
		px, err := SamplePixel(img, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		results = append(results, LabeledPixelResult{Label: p.Label, Pixel: *px})
	}

	return &MultiPixelResult{Samples: results}, nil
}

// toHSL converts c to rounded HSL using go-colorful.
func toHSL(c color.NRGBA) HSLColor {
	col := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	h, s, l := col.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}
