// grating.go - Grating and Plaid: one or two superimposed wave patterns
//
// Grounded on spec.md §4.6's grating/plaid paragraph. Phase advance has two
// modes per grating: "orient-adjust" (orientation tracks the motion vector's
// direction, phase shift is the signed projection onto the wavenumber) or
// fixed-orientation, where independent-gratings mode advances each grating's
// phase from its own scalar velocity while unified-plaid mode projects one
// common vector onto each grating's direction.

package target

import (
	"math"

	"github.com/cxdaq/cxcore/internal/render/gl"
)

// GratingTarget renders one or two sinusoidal/square-wave gratings summed
// (plaid, when len(Gratings)==2) or alone.
type GratingTarget struct {
	base
	unifiedPlaid bool // true = plaid phase advance from one shared vector
}

// NewGratingTarget constructs a grating (or, with unifiedPlaid, a plaid)
// target drawing through d.
func NewGratingTarget(d gl.Driver, unifiedPlaid bool) *GratingTarget {
	return &GratingTarget{base: base{driver: d}, unifiedPlaid: unifiedPlaid}
}

func (t *GratingTarget) Initialize(def Definition) error {
	t.initBase(t.driver, def)
	return t.buildAndUploadMask()
}

func (t *GratingTarget) UpdateMotion(frameIntervalMs float64, v MotionVector) {
	t.frameIndex++
	mag := math.Hypot(v.DeltaXDeg, v.DeltaYDeg)
	dirDeg := math.Atan2(v.DeltaYDeg, v.DeltaXDeg) * 180 / math.Pi

	for i := range t.def.Gratings {
		g := &t.def.Gratings[i]
		if g.OrientAdjust {
			g.OrientDeg = dirDeg
			// Phase shift is the signed projection of the motion vector onto
			// the grating's own wavenumber direction (== its orientation when
			// orient-adjust tracks the vector, so the projection is the full
			// magnitude with its sign from the vector's alignment).
			g.PhaseDeg += mag * g.SpatialFreqCPD * 360 * sign(mag)
			continue
		}
		if t.unifiedPlaid {
			proj := v.DeltaXDeg*cosDeg(g.OrientDeg) + v.DeltaYDeg*sinDeg(g.OrientDeg)
			g.PhaseDeg += proj * g.SpatialFreqCPD * 360
		} else {
			// independent-gratings mode: each grating's own scalar velocity
			// is carried in DeltaXDeg when only one grating is configured,
			// otherwise the i-th component of a packed per-grating velocity.
			vel := v.DeltaXDeg
			if i == 1 {
				vel = v.DeltaYDeg
			}
			g.PhaseDeg += vel * g.SpatialFreqCPD * 360
		}
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
func cosDeg(d float64) float64 { return math.Cos(d * math.Pi / 180) }
func sinDeg(d float64) float64 { return math.Sin(d * math.Pi / 180) }

func (t *GratingTarget) Draw(eyeOffsetFactor float64) {
	if !t.visible() {
		return
	}
	u := gl.DrawUniforms{
		Transform: t.transform(eyeOffsetFactor, t.def.OuterWDeg, t.def.OuterHDeg),
		Special:   gl.SpecialDefault,
		Texture:   t.maskTex,
	}
	u.Gratings.NGratings = int32(len(t.def.Gratings))
	for i, g := range t.def.Gratings {
		if i > 1 {
			break
		}
		ppd := PixelsPerDegree
		periodDeg := 1.0
		if g.SpatialFreqCPD > 0 {
			periodDeg = 1.0 / g.SpatialFreqCPD
		}
		u.Gratings.PeriodPx[i] = [2]float32{
			float32(periodDeg*ppd) * float32(cosDeg(g.OrientDeg)),
			float32(periodDeg*ppd) * float32(sinDeg(g.OrientDeg)),
		}
		u.Gratings.PhaseDeg[i] = float32(g.PhaseDeg)
		u.Gratings.MeanContrast[i] = [2]float32{float32(g.MeanLum), float32(g.Contrast)}
		u.Gratings.SineNotSquare[i] = g.SineNotSquare
	}
	_ = t.driver.DrawArrays(gl.QuadStart, gl.QuadCount, u)
}

func (t *GratingTarget) Unload() { t.releaseMask() }

var _ Target = (*GratingTarget)(nil)
