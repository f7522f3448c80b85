package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// MaxPlaneScale bounds the magnification of a rendered LSB plane.
const MaxPlaneScale = 16

// RegionNames lists the names accepted by NamedRegion.
var RegionNames = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// NamedRegion returns the region of img selected by a quadrant or half
// name. "center" is the middle 50% in each dimension.
//
// Payload bits are written from the top-left in row-major order, so
// comparing "top-half" with "bottom-half" statistics shows where a short
// message sits.
func NamedRegion(img image.Image, name string) (*Region, error) {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	midX := w / 2
	midY := h / 2

	var r Region
	switch name {
	case "top-left":
		r = Region{0, 0, midX, midY}
	case "top-right":
		r = Region{midX, 0, w, midY}
	case "bottom-left":
		r = Region{0, midY, midX, h}
	case "bottom-right":
		r = Region{midX, midY, w, h}
	case "top-half":
		r = Region{0, 0, w, midY}
	case "bottom-half":
		r = Region{0, midY, w, h}
	case "left-half":
		r = Region{0, 0, midX, h}
	case "right-half":
		r = Region{midX, 0, w, h}
	case "center":
		qW := w / 4
		qH := h / 4
		r = Region{qW, qH, w - qW, h - qH}
	default:
		return nil, fmt.Errorf("unknown region: %s", name)
	}

	if err := validateRegion(r, w, h); err != nil {
		return nil, fmt.Errorf("region %s: %w", name, err)
	}
	return &r, nil
}

// validateRegion checks that r is non-empty and lies inside a w×h image
// with its origin at (0,0).
func validateRegion(r Region, w, h int) error {
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	if !image.Rect(r.X1, r.Y1, r.X2, r.Y2).In(image.Rect(0, 0, w, h)) {
		return fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds %dx%d",
			r.X1, r.Y1, r.X2, r.Y2, w, h)
	}
	return nil
}

// cropAndScale cuts region out of plane and magnifies it by an integer
// factor. Nearest-neighbour sampling keeps every bit a solid block.
func cropAndScale(plane *image.NRGBA, region *Region, scale int) (*image.NRGBA, error) {
	if scale < 1 || scale > MaxPlaneScale {
		return nil, fmt.Errorf("scale must be between 1 and %d, got %d", MaxPlaneScale, scale)
	}

	out := plane
	if region != nil {
		if err := validateRegion(*region, plane.Bounds().Dx(), plane.Bounds().Dy()); err != nil {
			return nil, err
		}
		out = imaging.Crop(plane, image.Rect(region.X1, region.Y1, region.X2, region.Y2))
	}

	if scale > 1 {
		out = imaging.Resize(out, out.Bounds().Dx()*scale, out.Bounds().Dy()*scale, imaging.NearestNeighbor)
	}
	return out, nil
}
