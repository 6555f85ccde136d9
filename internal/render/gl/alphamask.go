// alphamask.go - CPU-side alpha mask generation for apertures
//
// Grounded on the teacher's palette/texture generation helpers
// (video_interface.go's PaletteCapable) generalized to spec.md §4.5's
// aperture model: a power-of-two texture, capped at 512 on a side, holding a
// single 8-bit alpha channel computed from a box-filtered in/out aperture test,
// softened by a Gaussian edge falloff outside the boundary.

package gl

import "math"

// MaxMaskDim is the largest side length an alpha mask texture may have.
const MaxMaskDim = 512

// ApertureShape selects the boundary test used when building a mask.
type ApertureShape int

const (
	ApertureRect ApertureShape = iota
	ApertureOval
)

// MaskSpec describes one alpha mask to render.
type MaskSpec struct {
	Shape       ApertureShape
	WidthPx     int
	HeightPx    int
	SigmaPx     float64 // Gaussian falloff sigma; 0 disables falloff (hard edge)
	Supersample int     // box-filter supersampling factor per axis; 0 defaults to 4
}

// nextPow2 rounds n up to the next power of two, capped at MaxMaskDim.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	if p > MaxMaskDim {
		p = MaxMaskDim
	}
	return p
}

// BuildAlphaMask rasterizes spec into a single-channel alpha texture. Each
// texel's coverage is box-filtered by supersampling the aperture test. When
// SigmaPx > 0, a texel that is not fully covered takes the larger of its
// coverage and a Gaussian of its center's distance from the aperture
// boundary, producing a soft edge instead of aliasing. The mask is not
// multiplied by a Gaussian window centered on the target, and one sigma
// serves both axes.
func BuildAlphaMask(spec MaskSpec) (w, h int, pixels []byte) {
	ss := spec.Supersample
	if ss <= 0 {
		ss = 4
	}
	w = nextPow2(spec.WidthPx)
	h = nextPow2(spec.HeightPx)
	pixels = make([]byte, w*h)

	cx, cy := float64(spec.WidthPx)/2, float64(spec.HeightPx)/2
	rx, ry := float64(spec.WidthPx)/2, float64(spec.HeightPx)/2

	inside := func(x, y float64) bool {
		switch spec.Shape {
		case ApertureOval:
			dx, dy := (x-cx)/rx, (y-cy)/ry
			return dx*dx+dy*dy <= 1.0
		default: // ApertureRect
			return x >= 0 && x < float64(spec.WidthPx) && y >= 0 && y < float64(spec.HeightPx)
		}
	}

	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			if tx >= spec.WidthPx || ty >= spec.HeightPx {
				continue
			}
			var cover float64
			for sy := 0; sy < ss; sy++ {
				for sx := 0; sx < ss; sx++ {
					px := float64(tx) + (float64(sx)+0.5)/float64(ss)
					py := float64(ty) + (float64(sy)+0.5)/float64(ss)
					if inside(px, py) {
						cover++
					}
				}
			}
			cover /= float64(ss * ss)

			alpha := cover
			if spec.SigmaPx > 0 && cover < 1.0 {
				d := distanceToEdge(float64(tx)+0.5, float64(ty)+0.5, spec, cx, cy, rx, ry)
				falloff := math.Exp(-(d * d) / (2 * spec.SigmaPx * spec.SigmaPx))
				alpha = math.Max(cover, falloff)
			}
			pixels[ty*w+tx] = byte(clamp01(alpha) * 255)
		}
	}
	return w, h, pixels
}

// distanceToEdge estimates the (signed-ignored) distance from a point to the
// aperture boundary, used only to drive the Gaussian falloff outside it.
func distanceToEdge(x, y float64, spec MaskSpec, cx, cy, rx, ry float64) float64 {
	switch spec.Shape {
	case ApertureOval:
		dx, dy := x-cx, y-cy
		r := math.Hypot(dx/rx, dy/ry)
		if r <= 1 {
			return 0
		}
		return (r - 1) * math.Min(rx, ry)
	default:
		dx := math.Max(0, math.Max(-x, x-float64(spec.WidthPx)))
		dy := math.Max(0, math.Max(-y, y-float64(spec.HeightPx)))
		return math.Hypot(dx, dy)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
