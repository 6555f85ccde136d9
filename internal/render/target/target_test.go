package target

import (
	"testing"

	"github.com/cxdaq/cxcore/internal/render/gl"
)

func TestFlickerVisible(t *testing.T) {
	f := Flicker{OnFrames: 3, OffFrames: 5, DelayFrames: 10}
	cases := map[int]bool{
		0: false, 9: false,
		10: true, 11: true, 12: true,
		13: false, 17: false,
		18: true, 20: true,
		21: false,
	}
	for frame, want := range cases {
		if got := f.visible(frame); got != want {
			t.Errorf("visible(%d) = %v, want %v", frame, got, want)
		}
	}
}

func TestFlickerDisabledAlwaysVisible(t *testing.T) {
	f := Flicker{}
	if !f.visible(0) || !f.visible(1000) {
		t.Fatal("zero-valued Flicker must always be visible")
	}
}

func TestPointTargetRespectsFlicker(t *testing.T) {
	d := gl.NewFakeDriver()
	pt := NewPointTarget(d)
	if err := pt.Initialize(Definition{Flicker: Flicker{OnFrames: 1, OffFrames: 1}}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	before := d.DrawCount
	pt.Draw(0) // frame 0: on phase
	if d.DrawCount != before+1 {
		t.Fatal("expected a draw call on frame 0 (on phase)")
	}

	pt.UpdateMotion(16.6, MotionVector{})
	before = d.DrawCount
	pt.Draw(0) // frame 1: off phase
	if d.DrawCount != before {
		t.Fatal("expected no draw call on frame 1 (off phase)")
	}
}
