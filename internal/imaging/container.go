package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"

	"github.com/ironsheep/stego-tools-mcp/internal/stego"
)

// Format is an output container format.
type Format string

const (
	// FormatPNG is the default lossless output container.
	FormatPNG Format = "png"

	// FormatBMP is an uncompressed lossless output container.
	FormatBMP Format = "bmp"
)

// ParseFormat maps a format name or file extension to an output Format.
//
// Empty input selects PNG. Lossy formats such as JPEG are rejected because
// they would corrupt embedded bits.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	default:
		return "", fmt.Errorf("unsupported output format %q: only png and bmp are lossless", name)
	}
}

// Decode reads an image container and returns the decoded image and the
// detected format name ("png", "bmp", "gif", "jpeg").
//
// Any read or decode failure is returned wrapping stego.ErrInvalidImage.
func Decode(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read image: %v", stego.ErrInvalidImage, err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an in-memory image container. See Decode.
func DecodeBytes(data []byte) (image.Image, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", stego.ErrInvalidImage, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode %s: %v", stego.ErrInvalidImage, format, err)
	}
	return img, format, nil
}

// Encode writes img to w in the given lossless format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG, "":
		if err := imaging.Encode(w, img, imaging.PNG); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	case FormatBMP:
		if err := bmp.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode bmp: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	return nil
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return Encode(w, img, FormatPNG)
}

// Save writes img to path. The format follows the file extension; paths
// without a .png or .bmp extension are rejected.
func Save(path string, img image.Image) error {
	ext := filepath.Ext(path)
	if ext == "" {
		return fmt.Errorf("output path %q has no extension", path)
	}
	format, err := ParseFormat(ext)
	if err != nil {
		return err
	}

	var enc imgio.Encoder
	switch format {
	case FormatBMP:
		enc = func(w io.Writer, img image.Image) error { return bmp.Encode(w, img) }
	default:
		enc = imgio.PNGEncoder()
	}
	if err := imgio.Save(path, img, enc); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
