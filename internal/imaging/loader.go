package imaging

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/ironsheep/stego-tools-mcp/internal/stego"
)

// ImageCache provides thread-safe caching of loaded images to avoid redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once an image
// is loaded, subsequent Load() calls for the same path return the cached copy without
// disk I/O.
//
// Cached images are shared between callers and must not be modified. The stego
// carrier copies its input, so passing a cached image to stego.EmbedMessage is
// safe.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// Writing a stego image to a path that is cached should be followed by Evict()
// so the next Load() sees the new pixels.
type ImageCache struct {
	mu      sync.RWMutex
	images  map[string]image.Image
	formats map[string]string
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images:  make(map[string]image.Image),
		formats: make(map[string]string),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Supported input formats are PNG, BMP, GIF and JPEG. A file that exists but
// cannot be decoded returns an error wrapping stego.ErrInvalidImage.
func (c *ImageCache) Load(path string) (image.Image, error) {
	img, _, err := c.load(path)
	return img, err
}

// load is Load that also returns the detected container format.
func (c *ImageCache) load(path string) (image.Image, string, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		format := c.formats[path]
		c.mu.RUnlock()
		return img, format, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.formats[path] = format
	c.mu.Unlock()

	return img, format, nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.formats = make(map[string]string)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	delete(c.formats, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file and its suitability
// as a carrier.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the container format detected from the file contents:
	// "png", "bmp", "gif" or "jpeg".
	Format string `json:"format"`

	// ColorMode describes the pixel layout, e.g. "RGB", "RGBA", "grayscale",
	// "paletted".
	ColorMode string `json:"color_mode"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// CanCarry reports whether the image can host a message.
	CanCarry bool `json:"can_carry"`

	// Lossless reports whether the container preserves LSBs. Messages
	// embedded in a JPEG do not survive re-saving as JPEG.
	Lossless bool `json:"lossless"`

	// Capacity is the payload capacity. Nil when CanCarry is false.
	Capacity *stego.CapacityInfo `json:"capacity,omitempty"`

	// Reason explains why CanCarry is false.
	Reason string `json:"reason,omitempty"`
}

// LoadImageInfo loads an image and returns metadata including its carrier
// capacity.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, format, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	bounds := img.Bounds()
	info := &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorDepth:    "8-bit",
		FileSizeBytes: stat.Size(),
		Lossless:      format == "png" || format == "bmp",
	}

	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		info.ColorMode, info.HasAlpha = "RGBA", true
	case *image.RGBA64, *image.NRGBA64:
		info.ColorMode, info.HasAlpha, info.ColorDepth = "RGBA", true, "16-bit"
	case *image.YCbCr:
		info.ColorMode = "RGB"
	case *image.NYCbCrA:
		info.ColorMode, info.HasAlpha = "RGBA", true
	case *image.Gray:
		info.ColorMode = "grayscale"
	case *image.Gray16:
		info.ColorMode, info.ColorDepth = "grayscale", "16-bit"
	case *image.Paletted:
		info.ColorMode = "paletted"
	case *image.CMYK:
		info.ColorMode = "CMYK"
	default:
		info.ColorMode = fmt.Sprintf("%T", img)
	}

	capacity, err := stego.Capacity(img)
	switch {
	case err == nil:
		info.CanCarry = true
		info.Capacity = capacity
	case errors.Is(err, stego.ErrInvalidImageMode):
		info.Reason = err.Error()
	default:
		return nil, err
	}

	return info, nil
}
