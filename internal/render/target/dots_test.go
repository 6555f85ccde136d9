package target

import (
	"testing"

	"github.com/cxdaq/cxcore/internal/render/gl"
)

func TestRandomDotsFullCoherenceNeverRepositions(t *testing.T) {
	d := gl.NewFakeDriver()
	pool := gl.NewVertexPool(d)
	rd := NewRandomDotsTarget(d, pool)
	def := Definition{
		DotCount:        20,
		OuterWDeg:       10,
		OuterHDeg:       10,
		PercentCoherent: 100,
		Seed:            1,
	}
	if err := rd.Initialize(def); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	before := make([]dot, len(rd.dots))
	copy(before, rd.dots)

	rd.UpdateMotion(16.6, MotionVector{DeltaXDeg: 0.1, DeltaYDeg: 0})

	for i := range rd.dots {
		// With 100% coherence every dot should have moved by the common
		// vector (barring wrap), not jumped to an unrelated random position.
		dx := rd.dots[i].xDeg - before[i].xDeg
		if dx < -1 || dx > 1 {
			t.Fatalf("dot %d moved implausibly far (%v -> %v); expected small coherent step", i, before[i].xDeg, rd.dots[i].xDeg)
		}
	}
}

func TestRandomDotsVertexSlotsReleasedOnUnload(t *testing.T) {
	d := gl.NewFakeDriver()
	pool := gl.NewVertexPool(d)
	rd := NewRandomDotsTarget(d, pool)
	if err := rd.Initialize(Definition{DotCount: 5, OuterWDeg: 4, OuterHDeg: 4, PercentCoherent: 100}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	rd.Unload()

	// The released 5-vertex run should be available for reuse.
	if _, err := pool.Acquire(5); err != nil {
		t.Fatalf("expected released slot reclaimed after Unload, got: %v", err)
	}
}
