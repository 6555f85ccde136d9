// flow.go - Optical flow field: N dots in polar coordinates within an annulus
//
// Grounded directly on the original source's updateFlowField (rmvtarget.cpp):
// B = Δr / (sin(r2/2)·cos(r2/2)), new radius r + B·sin(r)·cos(r), with
// accelerating/decelerating recycling rules from spec.md §4.6. Angles are
// carried in radians internally; only inner/outer radius and the motion
// vector's Δr are in visual degrees, matching the original's convention of
// mixing half-angle trig identities over degree-valued radii.

package target

import (
	"math"

	"github.com/cxdaq/cxcore/internal/render/gl"
)

type flowDot struct {
	rDeg     float64
	thetaRad float64
}

// FlowFieldTarget implements spec.md §4.6's optical flow field.
type FlowFieldTarget struct {
	base
	pool        *gl.VertexPool
	vertexStart int
	vertexCount int
	dots        []flowDot
}

func NewFlowFieldTarget(d gl.Driver, pool *gl.VertexPool) *FlowFieldTarget {
	return &FlowFieldTarget{base: base{driver: d}, pool: pool}
}

func (t *FlowFieldTarget) Initialize(def Definition) error {
	t.initBase(t.driver, def)
	n := def.DotCount
	if n <= 0 {
		n = 1
	}
	start, err := t.pool.Acquire(n)
	if err != nil {
		return err
	}
	t.vertexStart, t.vertexCount = start, n
	t.dots = make([]flowDot, n)
	for i := range t.dots {
		t.dots[i] = t.randomDotInAnnulus()
	}
	return nil
}

func (t *FlowFieldTarget) randomDotInAnnulus() flowDot {
	r1, r2 := t.def.InnerRadiusDeg, t.def.OuterRadiusDeg
	// Uniform-in-area sampling within the annulus.
	area := t.rng.Float64()
	r := math.Sqrt(area*(r2*r2-r1*r1) + r1*r1)
	theta := t.rng.Float64() * 2 * math.Pi
	return flowDot{rDeg: r, thetaRad: theta}
}

// sincosDeg replicates the original source's half-angle helper: sin(x/2)*cos(x/2)
// for an angle x in degrees.
func sincosDeg(deg float64) float64 {
	rad := deg / 2 * math.Pi / 180
	return math.Sin(rad) * math.Cos(rad)
}

func (t *FlowFieldTarget) UpdateMotion(frameIntervalMs float64, v MotionVector) {
	t.frameIndex++
	r2 := t.def.OuterRadiusDeg
	r1 := t.def.InnerRadiusDeg

	denom := sincosDeg(r2)
	if denom == 0 {
		return
	}
	deltaR := v.DeltaXDeg // Δr supplied at r2/2, per spec.md §4.6
	B := deltaR / denom

	recycleRate := clip(math.Abs(B)/30.0, 0.001, 0.4)

	for i := range t.dots {
		dt := &t.dots[i]
		rRad := dt.rDeg * math.Pi / 180
		dt.rDeg = dt.rDeg + B*math.Sin(rRad)*math.Cos(rRad)

		if B > 0 {
			if dt.rDeg > r2 {
				*dt = t.randomDotInAnnulus()
			}
			continue
		}
		if B < 0 {
			threshold := r1 + t.rng.Float64()*(r2-r1)
			if dt.rDeg < threshold && t.rng.Float64() < recycleRate {
				width := math.Abs(B) * math.Sin(r2*math.Pi/180) * math.Cos(r2*math.Pi/180)
				dt.rDeg = r2 - t.rng.Float64()*width
				dt.thetaRad = t.rng.Float64() * 2 * math.Pi
			}
		}
	}
	t.uploadVertices()
}

func (t *FlowFieldTarget) uploadVertices() {
	data := make([]float32, t.vertexCount*gl.VertexStride)
	for i, dt := range t.dots {
		xDeg := dt.rDeg * math.Cos(dt.thetaRad)
		yDeg := dt.rDeg * math.Sin(dt.thetaRad)
		alpha := float32(1.0)
		if dt.rDeg < t.def.InnerRadiusDeg || dt.rDeg > t.def.OuterRadiusDeg {
			alpha = 0
		}
		data[i*4+0] = float32(degToNDC(xDeg, HalfScreenWidthDeg))
		data[i*4+1] = float32(degToNDC(yDeg, HalfScreenHeightDeg))
		data[i*4+2] = alpha
		data[i*4+3] = 0
	}
	_ = t.driver.UploadVertexSlice(t.vertexStart, t.vertexCount, data)
}

func (t *FlowFieldTarget) Draw(eyeOffsetFactor float64) {
	if !t.visible() {
		return
	}
	u := gl.DrawUniforms{
		Transform: identity4WithEye(eyeOffsetFactor, t.def.DotDisparityDeg),
		ColorRGB:  [3]float32{float32(t.def.MeanRGB[0]), float32(t.def.MeanRGB[1]), float32(t.def.MeanRGB[2])},
		Special:   gl.SpecialDots,
	}
	_ = t.driver.DrawArrays(t.vertexStart, t.vertexCount, u)
}

func (t *FlowFieldTarget) Unload() {
	t.pool.Release(t.vertexStart, t.vertexCount)
}

var _ Target = (*FlowFieldTarget)(nil)
