package target

import (
	"testing"

	"github.com/cxdaq/cxcore/internal/render/gl"
)

type fakeStream struct {
	w, h       int
	intervalMs float64
	frames     [][]byte
	idx        int
}

func (s *fakeStream) FrameWidth() int                { return s.w }
func (s *fakeStream) FrameHeight() int               { return s.h }
func (s *fakeStream) NativeFrameIntervalMs() float64 { return s.intervalMs }
func (s *fakeStream) NextFrame() ([]byte, bool) {
	if s.idx >= len(s.frames) {
		return nil, false
	}
	return s.frames[s.idx], true
}
func (s *fakeStream) AdvanceToNext() { s.idx++ }

func newFakeStream(n int) *fakeStream {
	frames := make([][]byte, n)
	for i := range frames {
		frames[i] = []byte{byte(i)}
	}
	return &fakeStream{w: 4, h: 4, frames: frames}
}

func TestMovieAtDisplayRateAdvancesEveryFrame(t *testing.T) {
	d := gl.NewFakeDriver()
	s := newFakeStream(5)
	m := NewMovieTarget(d, s)
	def := Definition{AtDisplayRate: true, OuterWDeg: 10, OuterHDeg: 10}
	if err := m.Initialize(def); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	m.UpdateMotion(16.6, MotionVector{On: true})
	if s.idx != 1 {
		t.Fatalf("expected stream to advance one frame, idx = %d", s.idx)
	}
}

func TestMoviePauseWhenOffSuspendsAdvance(t *testing.T) {
	d := gl.NewFakeDriver()
	s := newFakeStream(30)
	m := NewMovieTarget(d, s)
	def := Definition{AtDisplayRate: true, PauseWhenOff: true, Repeat: true, OuterWDeg: 10, OuterHDeg: 10}
	if err := m.Initialize(def); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	for i := 0; i < 5; i++ {
		m.UpdateMotion(16.6, MotionVector{On: true})
	}
	if s.idx != 5 {
		t.Fatalf("expected 5 advances while on, got %d", s.idx)
	}

	for i := 0; i < 20; i++ {
		m.UpdateMotion(16.6, MotionVector{On: false})
	}
	if s.idx != 5 {
		t.Fatalf("expected stream frozen while off, got idx %d", s.idx)
	}

	m.UpdateMotion(16.6, MotionVector{On: true})
	if s.idx != 6 {
		t.Fatalf("expected advance to resume once on again, got idx %d", s.idx)
	}
}
