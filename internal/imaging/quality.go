package imaging

import (
	"fmt"
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// CompareResult reports how much a stego image differs from its cover.
type CompareResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Identical is true when no R, G or B value differs. PSNR is then
	// infinite and omitted.
	Identical bool `json:"identical"`

	// PSNR is the peak signal-to-noise ratio over R,G,B in dB.
	PSNR float64 `json:"psnr_db,omitempty"`

	// MSE is the mean squared channel error.
	MSE float64 `json:"mse"`

	// ChangedChannels counts R,G,B values that differ.
	ChangedChannels int `json:"changed_channels"`

	// ChangedPixels counts pixels with at least one differing channel.
	ChangedPixels int `json:"changed_pixels"`

	// MaxChannelDelta is the largest absolute channel difference. LSB
	// embedding never exceeds 1.
	MaxChannelDelta int `json:"max_channel_delta"`

	// MaxDeltaE and MeanDeltaE are CIE76 Lab distances (scaled to the usual
	// 0-100 range) over changed pixels.
	MaxDeltaE  float64 `json:"max_delta_e"`
	MeanDeltaE float64 `json:"mean_delta_e"`

	// AlphaChanged is true if any alpha value differs.
	AlphaChanged bool `json:"alpha_changed"`
}

// PSNRThreshold is the PSNR above which a change is generally considered
// invisible.
const PSNRThreshold = 40.0

// Compare measures the distortion between a cover image and a stego image.
//
// Both images must have the same dimensions. Channel values are compared as
// non-premultiplied 8-bit values.
func Compare(cover, stegoImg image.Image) (*CompareResult, error) {
	cb, sb := cover.Bounds(), stegoImg.Bounds()
	if cb.Dx() != sb.Dx() || cb.Dy() != sb.Dy() {
		return nil, fmt.Errorf("image dimensions differ: %dx%d vs %dx%d", cb.Dx(), cb.Dy(), sb.Dx(), sb.Dy())
	}

	result := &CompareResult{Width: cb.Dx(), Height: cb.Dy()}

	var sumSq, sumDeltaE float64
	for y := 0; y < cb.Dy(); y++ {
		for x := 0; x < cb.Dx(); x++ {
			a := nrgbaAt(cover, cb.Min.X+x, cb.Min.Y+y)
			b := nrgbaAt(stegoImg, sb.Min.X+x, sb.Min.Y+y)

			changed := false
			for _, d := range [3]int{int(a.R) - int(b.R), int(a.G) - int(b.G), int(a.B) - int(b.B)} {
				if d == 0 {
					continue
				}
				changed = true
				result.ChangedChannels++
				sumSq += float64(d * d)
				if d < 0 {
					d = -d
				}
				if d > result.MaxChannelDelta {
					result.MaxChannelDelta = d
				}
			}
			if a.A != b.A {
				result.AlphaChanged = true
			}
			if !changed {
				continue
			}

			result.ChangedPixels++
			de := deltaE(a.R, a.G, a.B, b.R, b.G, b.B)
			sumDeltaE += de
			if de > result.MaxDeltaE {
				result.MaxDeltaE = de
			}
		}
	}

	samples := cb.Dx() * cb.Dy() * 3
	if samples > 0 {
		result.MSE = sumSq / float64(samples)
	}
	if result.ChangedPixels > 0 {
		result.MeanDeltaE = round3(sumDeltaE / float64(result.ChangedPixels))
	}
	result.MaxDeltaE = round3(result.MaxDeltaE)

	if result.MSE == 0 {
		result.Identical = true
	} else {
		result.PSNR = round3(20 * math.Log10(255.0/math.Sqrt(result.MSE)))
	}
	return result, nil
}

// deltaE returns the CIE76 distance between two sRGB colors, scaled by 100.
func deltaE(r1, g1, b1, r2, g2, b2 uint8) float64 {
	c1 := colorful.Color{R: float64(r1) / 255.0, G: float64(g1) / 255.0, B: float64(b1) / 255.0}
	c2 := colorful.Color{R: float64(r2) / 255.0, G: float64(g2) / 255.0, B: float64(b2) / 255.0}
	return c1.DistanceLab(c2) * 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
