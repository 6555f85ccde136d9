// simple.go - Point, Bar, Spot, Image: center/size update with no per-frame
// geometry regeneration (spec.md §4.6 "Point, Bar, Spot, Image").
//
// All four reduce to the same shape: a quad or line primitive masked by the
// CPU-generated alpha texture, moved each frame by the motion vector. They
// are split into distinct Go types (rather than one struct with a Kind
// field) so each can be extended independently, matching the teacher's
// pattern of one small concrete type per capability rather than a single
// parameterized struct (video_interface.go's per-backend structs).

package target

import "github.com/cxdaq/cxcore/internal/render/gl"

// PointTarget draws the shared single-point primitive, uncolored by a mask.
type PointTarget struct{ base }

func NewPointTarget(d gl.Driver) *PointTarget { return &PointTarget{base: base{driver: d}} }

func (t *PointTarget) Initialize(def Definition) error {
	t.initBase(t.driver, def)
	return nil
}

func (t *PointTarget) UpdateMotion(frameIntervalMs float64, v MotionVector) {
	t.centerXDeg += v.DeltaXDeg
	t.centerYDeg += v.DeltaYDeg
	t.frameIndex++
}

func (t *PointTarget) Draw(eyeOffsetFactor float64) {
	if !t.visible() {
		return
	}
	u := gl.DrawUniforms{
		Transform: t.transform(eyeOffsetFactor, 0.05, 0.05),
		ColorRGB:  [3]float32{float32(t.def.MeanRGB[0]), float32(t.def.MeanRGB[1]), float32(t.def.MeanRGB[2])},
		Special:   gl.SpecialDefault,
	}
	_ = t.driver.DrawArrays(gl.PointStart, gl.PointCount, u)
}

func (t *PointTarget) Unload() {}

// BarTarget draws the shared unit-line primitive scaled to the bar's length.
type BarTarget struct{ base }

func NewBarTarget(d gl.Driver) *BarTarget { return &BarTarget{base: base{driver: d}} }

func (t *BarTarget) Initialize(def Definition) error {
	t.initBase(t.driver, def)
	return t.buildAndUploadMask()
}

func (t *BarTarget) UpdateMotion(frameIntervalMs float64, v MotionVector) {
	t.centerXDeg += v.DeltaXDeg
	t.centerYDeg += v.DeltaYDeg
	t.frameIndex++
}

func (t *BarTarget) Draw(eyeOffsetFactor float64) {
	if !t.visible() {
		return
	}
	u := gl.DrawUniforms{
		Transform: t.transform(eyeOffsetFactor, t.def.OuterWDeg, t.def.OuterHDeg),
		ColorRGB:  [3]float32{float32(t.def.MeanRGB[0]), float32(t.def.MeanRGB[1]), float32(t.def.MeanRGB[2])},
		Special:   gl.SpecialDefault,
		Texture:   t.maskTex,
	}
	_ = t.driver.DrawArrays(gl.LineStart, gl.LineCount, u)
}

func (t *BarTarget) Unload() { t.releaseMask() }

// SpotTarget draws the shared unit-quad primitive masked to a rect/oval
// (optionally annular) aperture, per spec.md §4.5's default fragment branch.
type SpotTarget struct{ base }

func NewSpotTarget(d gl.Driver) *SpotTarget { return &SpotTarget{base: base{driver: d}} }

func (t *SpotTarget) Initialize(def Definition) error {
	t.initBase(t.driver, def)
	return t.buildAndUploadMask()
}

func (t *SpotTarget) UpdateMotion(frameIntervalMs float64, v MotionVector) {
	t.centerXDeg += v.DeltaXDeg
	t.centerYDeg += v.DeltaYDeg
	t.frameIndex++
}

func (t *SpotTarget) Draw(eyeOffsetFactor float64) {
	if !t.visible() {
		return
	}
	u := gl.DrawUniforms{
		Transform: t.transform(eyeOffsetFactor, t.def.OuterWDeg, t.def.OuterHDeg),
		ColorRGB:  [3]float32{float32(t.def.MeanRGB[0]), float32(t.def.MeanRGB[1]), float32(t.def.MeanRGB[2])},
		Special:   gl.SpecialDefault,
		Texture:   t.maskTex,
	}
	_ = t.driver.DrawArrays(gl.QuadStart, gl.QuadCount, u)
}

func (t *SpotTarget) Unload() { t.releaseMask() }

// ImageTarget draws a static decoded image (RGBA passthrough, special=1).
type ImageTarget struct {
	base
	imgTex gl.TextureHandle
	imgW   int
	imgH   int
}

func NewImageTarget(d gl.Driver) *ImageTarget { return &ImageTarget{base: base{driver: d}} }

// Load installs the already-decoded RGBA pixels for this image. Decoding
// itself is the media store's responsibility (spec.md treats image/video
// codecs as opaque external decoders).
func (t *ImageTarget) Load(w, h int, rgba []byte) error {
	tex, err := t.driver.AcquireTexture(gl.TextureRGBAImage, w, h)
	if err != nil {
		return err
	}
	if err := t.driver.UpdateTexture(tex, w, h, rgba); err != nil {
		return err
	}
	t.imgTex, t.imgW, t.imgH = tex, w, h
	return nil
}

func (t *ImageTarget) Initialize(def Definition) error {
	t.initBase(t.driver, def)
	return nil
}

func (t *ImageTarget) UpdateMotion(frameIntervalMs float64, v MotionVector) {
	t.centerXDeg += v.DeltaXDeg
	t.centerYDeg += v.DeltaYDeg
	t.frameIndex++
}

func (t *ImageTarget) Draw(eyeOffsetFactor float64) {
	if !t.visible() {
		return
	}
	u := gl.DrawUniforms{
		Transform: t.transform(eyeOffsetFactor, t.def.OuterWDeg, t.def.OuterHDeg),
		Special:   gl.SpecialImage,
		Texture:   t.imgTex,
	}
	_ = t.driver.DrawArrays(gl.QuadStart, gl.QuadCount, u)
}

func (t *ImageTarget) Unload() {
	if t.imgTex != 0 {
		t.driver.ReleaseTexture(t.imgTex)
		t.imgTex = 0
	}
}

var (
	_ Target = (*PointTarget)(nil)
	_ Target = (*BarTarget)(nil)
	_ Target = (*SpotTarget)(nil)
	_ Target = (*ImageTarget)(nil)
)
