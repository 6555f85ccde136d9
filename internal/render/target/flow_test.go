package target

import (
	"math"
	"testing"

	"github.com/cxdaq/cxcore/internal/render/gl"
)

func TestSincosDegMatchesHalfAngleIdentity(t *testing.T) {
	got := sincosDeg(90)
	want := math.Sin(45*math.Pi/180) * math.Cos(45*math.Pi/180)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("sincosDeg(90) = %v, want %v", got, want)
	}
}

func TestFlowFieldAcceleratingRecyclesBeyondOuterRadius(t *testing.T) {
	d := gl.NewFakeDriver()
	pool := gl.NewVertexPool(d)
	ff := NewFlowFieldTarget(d, pool)
	def := Definition{DotCount: 50, InnerRadiusDeg: 2, OuterRadiusDeg: 10, Seed: 7}
	if err := ff.Initialize(def); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// A large positive Δr at r2/2 drives B strongly positive (accelerating flow).
	for i := 0; i < 50; i++ {
		ff.UpdateMotion(16.6, MotionVector{DeltaXDeg: 5})
	}

	for i, dt := range ff.dots {
		if dt.rDeg > def.OuterRadiusDeg {
			t.Fatalf("dot %d radius %v exceeds outer radius %v after repeated accelerating updates", i, dt.rDeg, def.OuterRadiusDeg)
		}
	}
}
