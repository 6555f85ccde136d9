// movie.go - Video (movie) target: per-frame texture upload of decoded frames
//
// Grounded on spec.md §4.6's video paragraph. Each stream advance uploads the
// next decoded RGB frame straight into one texture with a single
// UpdateTexture call; there is no ring of pixel-buffer objects, so the upload
// is not overlapped with copying the following frame. Decoding itself runs on the shared video.BufferThread (internal/render/video);
// this type only consumes already-decoded RGB frames through the Stream
// interface, matching the renderer main thread's "never touches decoder
// state" rule (spec.md §5).

package target

import (
	"github.com/cxdaq/cxcore/internal/render/gl"
)

// Stream is the consumer-facing surface of an open video-buffer-thread
// stream; internal/render/video.Stream implements it.
type Stream interface {
	FrameWidth() int
	FrameHeight() int
	NativeFrameIntervalMs() float64 // 0 if unknown
	NextFrame() (rgb []byte, ok bool)
	AdvanceToNext()
}

// MovieTarget implements the video/movie variant.
type MovieTarget struct {
	base
	stream      Stream
	tex         gl.TextureHandle
	w, h        int
	msSincePlay float64
	isOn        bool
}

// NewMovieTarget constructs a movie target reading from an already-opened
// stream (opened by the caller through the video buffer thread).
func NewMovieTarget(d gl.Driver, stream Stream) *MovieTarget {
	return &MovieTarget{base: base{driver: d}, stream: stream}
}

func (t *MovieTarget) Initialize(def Definition) error {
	t.initBase(t.driver, def)
	t.w, t.h = t.stream.FrameWidth(), t.stream.FrameHeight()
	tex, err := t.driver.AcquireTexture(gl.TextureRGBFrame, t.w, t.h)
	if err != nil {
		return err
	}
	t.tex = tex
	if frame, ok := t.stream.NextFrame(); ok {
		_ = t.driver.UpdateTexture(t.tex, t.w, t.h, frame)
	}
	return nil
}

func (t *MovieTarget) UpdateMotion(frameIntervalMs float64, v MotionVector) {
	t.frameIndex++
	t.centerXDeg += v.DeltaXDeg
	t.centerYDeg += v.DeltaYDeg

	if v.On != t.isOn {
		t.isOn = v.On
	}
	if !t.isOn && t.def.PauseWhenOff {
		return // pause-when-off: suspend both rendering and stream advance
	}

	advance := false
	if t.def.AtDisplayRate || t.stream.NativeFrameIntervalMs() <= 0 {
		advance = true
	} else {
		t.msSincePlay += frameIntervalMs
		interval := t.stream.NativeFrameIntervalMs()
		if t.msSincePlay >= interval {
			t.msSincePlay -= interval
			advance = true
		}
	}
	if !advance {
		return
	}

	t.stream.AdvanceToNext()
	if frame, ok := t.stream.NextFrame(); ok {
		_ = t.driver.UpdateTexture(t.tex, t.w, t.h, frame)
	}
}

func (t *MovieTarget) Draw(eyeOffsetFactor float64) {
	if !t.isOn && t.def.PauseWhenOff {
		return
	}
	u := gl.DrawUniforms{
		Transform: t.transform(eyeOffsetFactor, t.def.OuterWDeg, t.def.OuterHDeg),
		Special:   gl.SpecialImage,
		Texture:   t.tex,
	}
	_ = t.driver.DrawArrays(gl.VideoQuadStart, gl.VideoQuadCount, u)
}

func (t *MovieTarget) Unload() {
	if t.tex != 0 {
		t.driver.ReleaseTexture(t.tex)
		t.tex = 0
	}
}

var _ Target = (*MovieTarget)(nil)
