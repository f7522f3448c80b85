// Package imaging provides the image I/O and inspection layer around the
// stego codec.
//
// This package decodes carrier containers into pixel grids, encodes stego
// images back into lossless containers, caches loaded images, and offers
// analysis helpers for looking at hidden data: pixel sampling with LSB
// breakdown, LSB-plane rendering, LSB statistics, and cover/stego quality
// comparison.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Regions can also be chosen by name (NamedRegion). LSB planes can be cut to
// a region and magnified with nearest-neighbour scaling so single bits stay
// visible.
//
// # Containers
//
// PNG, BMP, GIF and JPEG inputs are decoded. Output is PNG or BMP only: any
// lossy container would destroy the least-significant bits that carry the
// message. Decoding failures wrap stego.ErrInvalidImage.
//
// # Channel Values
//
// Pixel values are reported as non-premultiplied 8-bit channels, which is the
// representation the stego carrier embeds into. Premultiplied values would
// hide the real LSB of translucent pixels.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Cached images are shared
// and must be treated as read-only; embedding always works on a copy.
package imaging
