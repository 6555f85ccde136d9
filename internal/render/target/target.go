// target.go - the nine-variant parametric visual target model
//
// Grounded on spec.md §4.5-§4.6 and, for shape, on the teacher's tagged-union
// style interfaces (video_interface.go's ScanlineAware/PaletteCapable/etc.:
// small, focused capability methods rather than one monolithic God-interface).
// Every variant below implements the same four-method Target surface; the
// variance lives entirely in the per-variant struct and its Draw/UpdateMotion
// bodies, never in a type switch inside the renderer core.

package target

import (
	"math"
	"math/rand"

	"github.com/cxdaq/cxcore/internal/render/gl"
)

// Aperture selects the clipping boundary applied to a target's drawn extent.
type Aperture int

const (
	ApertureRect Aperture = iota
	ApertureOval
	ApertureRectAnnulus
	ApertureOvalAnnulus
)

// Kind identifies which of the nine target variants a Definition describes.
type Kind int

const (
	KindPoint Kind = iota
	KindBar
	KindSpot
	KindGrating
	KindPlaid
	KindRandomDots
	KindFlowField
	KindImage
	KindMovie
)

// Flicker describes the on/off duty cycle applied uniformly to any target.
type Flicker struct {
	OnFrames    int
	OffFrames   int
	DelayFrames int
}

// visible reports whether a target should be drawn this frame under its
// flicker schedule, given the count of frames elapsed since animation start.
func (f Flicker) visible(frameIndex int) bool {
	if f.OnFrames <= 0 {
		return true // no flicker configured
	}
	n := frameIndex - f.DelayFrames
	if n < 0 {
		return false
	}
	period := f.OnFrames + f.OffFrames
	if period <= 0 {
		return true
	}
	return n%period < f.OnFrames
}

// GratingSpec is one of up to two sinusoidal/square-wave patterns.
type GratingSpec struct {
	SineNotSquare  bool
	SpatialFreqCPD float64 // cycles per degree
	OrientDeg      float64
	OrientAdjust   bool // orientation tracks the motion vector's direction
	MeanLum        float64
	Contrast       float64
	PhaseDeg       float64 // mutable runtime phase
}

// Definition is the tagged-union target description delivered by load-targets.
type Definition struct {
	Kind Kind

	Aperture    Aperture
	OuterWDeg   float64
	OuterHDeg   float64
	InnerWDeg   float64
	InnerHDeg   float64
	SigmaXDeg   float64
	SigmaYDeg   float64
	MeanRGB     [3]float64
	ContrastRGB [3]float64
	Flicker     Flicker

	// dot-based variants
	DotCount         int
	DotSizePx        int
	PercentCoherent  float64
	TwoColorContrast bool
	DirNoiseLimit    float64
	SpeedNoiseLimit  float64
	SpeedNoiseIsLog  bool
	NoiseUpdateMs    int
	FiniteLifetime   bool
	LifetimeMs       int
	Seed             int64
	DotDisparityDeg  float64

	// flow field
	InnerRadiusDeg float64
	OuterRadiusDeg float64

	// grating/plaid
	Gratings []GratingSpec

	// image/movie
	MediaFolder   string
	MediaFile     string
	AtDisplayRate bool
	PauseWhenOff  bool
	Repeat        bool
}

// MotionVector is one frame's per-target update payload.
type MotionVector struct {
	DeltaXDeg float64
	DeltaYDeg float64
	On        bool
}

// Target is the common surface every variant implements (spec.md §4.6).
type Target interface {
	Initialize(def Definition) error
	UpdateMotion(frameIntervalMs float64, v MotionVector)
	Draw(eyeOffsetFactor float64)
	Unload()
}

// base holds the fields every variant shares: current position, on/off
// tracking, the flicker countdown, and the GPU resources reserved at
// initialization.
type base struct {
	driver     gl.Driver
	def        Definition
	centerXDeg float64
	centerYDeg float64
	frameIndex int
	rng        *rand.Rand
	maskTex    gl.TextureHandle
	maskW      int
	maskH      int
}

func (b *base) initBase(driver gl.Driver, def Definition) {
	b.driver = driver
	b.def = def
	b.rng = rand.New(rand.NewSource(def.Seed))
}

// buildAndUploadMask generates the CPU-side alpha mask for non-rectangular
// apertures / Gaussian blur and uploads it to a pooled texture.
func (b *base) buildAndUploadMask() error {
	shape := gl.ApertureRect
	if b.def.Aperture == ApertureOval || b.def.Aperture == ApertureOvalAnnulus {
		shape = gl.ApertureOval
	}
	sigma := math.Max(b.def.SigmaXDeg, b.def.SigmaYDeg)
	w, h, pixels := gl.BuildAlphaMask(gl.MaskSpec{
		Shape:    shape,
		WidthPx:  degToPx(b.def.OuterWDeg),
		HeightPx: degToPx(b.def.OuterHDeg),
		SigmaPx:  sigma * PixelsPerDegree,
	})
	tex, err := b.driver.AcquireTexture(gl.TextureAlphaMask, w, h)
	if err != nil {
		return err
	}
	if err := b.driver.UpdateTexture(tex, w, h, pixels); err != nil {
		return err
	}
	b.maskTex, b.maskW, b.maskH = tex, w, h
	return nil
}

func (b *base) releaseMask() {
	if b.maskTex != 0 {
		b.driver.ReleaseTexture(b.maskTex)
		b.maskTex = 0
	}
}

func (b *base) visible() bool {
	return b.def.Flicker.visible(b.frameIndex)
}

// degToPx is the visual-degree-to-pixel conversion used for mask sizing.
// Production geometry comes from the display's measured pixels-per-degree;
// tests and headless operation use a fixed nominal scale.
var PixelsPerDegree = 25.0

func degToPx(deg float64) int {
	px := int(math.Round(deg * PixelsPerDegree))
	if px < 1 {
		px = 1
	}
	return px
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
