// dots.go - Random-dot patch: the per-frame dot update pipeline
//
// Grounded on spec.md §4.6's six-step random-dot update. Dots live in a
// reserved run of the shared vertex buffer (gl.VertexPool); each update
// rewrites that run's (x, y, Tx, Ty) tuples and reuploads it in one call,
// matching the teacher's "batch then upload" pattern used for sprite/tile
// data in video_interface.go's TextureCapable/SpriteCapable methods.

package target

import (
	"math"

	"github.com/cxdaq/cxcore/internal/render/gl"
)

type dot struct {
	xDeg, yDeg     float64
	dirNoiseDeg    float64
	speedNoiseFrac float64
	lifetimeMs     float64
}

// RandomDotsTarget implements the N-dot aperture-bound patch.
type RandomDotsTarget struct {
	base
	pool         *gl.VertexPool
	vertexStart  int
	vertexCount  int
	dots         []dot
	msSinceNoise float64
}

// NewRandomDotsTarget constructs a dot patch drawing through d, reserving
// its vertex slots from pool.
func NewRandomDotsTarget(d gl.Driver, pool *gl.VertexPool) *RandomDotsTarget {
	return &RandomDotsTarget{base: base{driver: d}, pool: pool}
}

func (t *RandomDotsTarget) Initialize(def Definition) error {
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
	t.dots = make([]dot, n)
	halfW, halfH := def.OuterWDeg/2, def.OuterHDeg/2
	for i := range t.dots {
		t.dots[i] = dot{
			xDeg:           (t.rng.Float64()*2 - 1) * halfW,
			yDeg:           (t.rng.Float64()*2 - 1) * halfH,
			speedNoiseFrac: 1,
		}
		if def.FiniteLifetime {
			t.dots[i].lifetimeMs = float64(def.LifetimeMs)
		}
	}
	if def.TwoColorContrast {
		return t.buildAndUploadMask()
	}
	return t.buildAndUploadMask()
}

func (t *RandomDotsTarget) refreshNoise() {
	d := &t.def
	for i := range t.dots {
		t.dots[i].dirNoiseDeg = (t.rng.Float64()*2 - 1) * d.DirNoiseLimit
		if d.SpeedNoiseIsLog {
			t.dots[i].speedNoiseFrac = math.Exp2((t.rng.Float64()*2 - 1) * d.SpeedNoiseLimit)
		} else {
			t.dots[i].speedNoiseFrac = 1 + (t.rng.Float64()*2-1)*d.SpeedNoiseLimit/100
		}
	}
}

func (t *RandomDotsTarget) reposition(i int) {
	halfW, halfH := t.def.OuterWDeg/2, t.def.OuterHDeg/2
	t.dots[i].xDeg = (t.rng.Float64()*2 - 1) * halfW
	t.dots[i].yDeg = (t.rng.Float64()*2 - 1) * halfH
	if t.def.FiniteLifetime {
		t.dots[i].lifetimeMs = float64(t.def.LifetimeMs)
	}
}

func (t *RandomDotsTarget) UpdateMotion(frameIntervalMs float64, v MotionVector) {
	t.frameIndex++
	d := &t.def

	// Step 1: noise refresh.
	t.msSinceNoise += frameIntervalMs
	if d.NoiseUpdateMs > 0 && t.msSinceNoise >= float64(d.NoiseUpdateMs) {
		t.refreshNoise()
		t.msSinceNoise = 0
	}

	mag := math.Hypot(v.DeltaXDeg, v.DeltaYDeg)

	// Step 2: finite lifetime decrement.
	if d.FiniteLifetime {
		dec := frameIntervalMs
		if mag > 0 {
			dec = mag
		}
		for i := range t.dots {
			t.dots[i].lifetimeMs -= dec
			if t.dots[i].lifetimeMs <= 0 {
				t.reposition(i)
			}
		}
	}

	// Step 3: coherence-driven repositioning of a random fraction.
	incoherentFrac := clip(1-d.PercentCoherent/100, 0, 1)
	repositioned := make([]bool, len(t.dots))
	if incoherentFrac > 0 {
		n := int(math.Round(incoherentFrac * float64(len(t.dots))))
		for k := 0; k < n; k++ {
			i := t.rng.Intn(len(t.dots))
			t.reposition(i)
			repositioned[i] = true
		}
	}

	halfW, halfH := d.OuterWDeg/2, d.OuterHDeg/2
	dirRad := math.Atan2(v.DeltaYDeg, v.DeltaXDeg)

	// Step 4: apply motion with per-dot noise, wrapping at the bounds.
	for i := range t.dots {
		if repositioned[i] {
			continue
		}
		dt := &t.dots[i]
		r := dirRad + dt.dirNoiseDeg*math.Pi/180
		speed := mag * dt.speedNoiseFrac
		dt.xDeg += speed * math.Cos(r)
		dt.yDeg += speed * math.Sin(r)

		if dt.xDeg > halfW {
			dt.xDeg = -halfW
			dt.yDeg = (t.rng.Float64()*2 - 1) * halfH
		} else if dt.xDeg < -halfW {
			dt.xDeg = halfW
			dt.yDeg = (t.rng.Float64()*2 - 1) * halfH
		}
		if dt.yDeg > halfH {
			dt.yDeg = -halfH
			dt.xDeg = (t.rng.Float64()*2 - 1) * halfW
		} else if dt.yDeg < -halfH {
			dt.yDeg = halfH
			dt.xDeg = (t.rng.Float64()*2 - 1) * halfW
		}
	}

	t.uploadVertices()
}

// uploadVertices rewrites the reserved vertex run: step 5 (per-dot alpha)
// followed by step 6 (upload) of spec.md §4.6.
func (t *RandomDotsTarget) uploadVertices() {
	halfW, halfH := t.def.OuterWDeg/2, t.def.OuterHDeg/2
	data := make([]float32, t.vertexCount*gl.VertexStride)
	for i, dt := range t.dots {
		alpha := float32(1.0)
		if dt.xDeg < -halfW || dt.xDeg > halfW || dt.yDeg < -halfH || dt.yDeg > halfH {
			alpha = 0
		}
		data[i*4+0] = float32(degToNDC(dt.xDeg, HalfScreenWidthDeg))
		data[i*4+1] = float32(degToNDC(dt.yDeg, HalfScreenHeightDeg))
		data[i*4+2] = alpha
		data[i*4+3] = 0
	}
	_ = t.driver.UploadVertexSlice(t.vertexStart, t.vertexCount, data)
}

func (t *RandomDotsTarget) Draw(eyeOffsetFactor float64) {
	if !t.visible() {
		return
	}
	color := [3]float32{float32(t.def.MeanRGB[0]), float32(t.def.MeanRGB[1]), float32(t.def.MeanRGB[2])}
	if !t.def.TwoColorContrast {
		u := gl.DrawUniforms{
			Transform: identity4WithEye(eyeOffsetFactor, t.def.DotDisparityDeg),
			ColorRGB:  color,
			Special:   gl.SpecialDots,
		}
		_ = t.driver.DrawArrays(t.vertexStart, t.vertexCount, u)
		return
	}

	half := t.vertexCount / 2
	for side := 0; side < 2; side++ {
		sign := 1.0
		if side == 1 {
			sign = -1.0
		}
		c := [3]float32{
			float32(t.def.MeanRGB[0] * (1 + sign*t.def.ContrastRGB[0])),
			float32(t.def.MeanRGB[1] * (1 + sign*t.def.ContrastRGB[1])),
			float32(t.def.MeanRGB[2] * (1 + sign*t.def.ContrastRGB[2])),
		}
		start := t.vertexStart + side*half
		count := half
		if side == 1 {
			count = t.vertexCount - half
		}
		u := gl.DrawUniforms{
			Transform: identity4WithEye(eyeOffsetFactor, t.def.DotDisparityDeg),
			ColorRGB:  c,
			Special:   gl.SpecialDots,
		}
		_ = t.driver.DrawArrays(start, count, u)
	}
}

func identity4WithEye(eyeOffsetFactor, disparityDeg float64) [16]float32 {
	m := identity4()
	m[12] = float32(degToNDC(eyeOffsetFactor*disparityDeg, HalfScreenWidthDeg))
	return m
}

func (t *RandomDotsTarget) Unload() {
	t.releaseMask()
	t.pool.Release(t.vertexStart, t.vertexCount)
}

var _ Target = (*RandomDotsTarget)(nil)
