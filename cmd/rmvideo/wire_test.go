package main

import (
	"testing"

	"github.com/cxdaq/cxcore/internal/render/target"
)

func TestPackUnpackStringRoundTrip(t *testing.T) {
	cases := []string{"", "a", "setA", "dot-target-17.png", "x"}
	for _, s := range cases {
		words := packString(s)
		idx := 0
		got := unpackString(words, &idx)
		if got != s {
			t.Errorf("round trip %q got %q", s, got)
		}
		if idx != len(words) {
			t.Errorf("round trip %q left idx %d, want %d", s, idx, len(words))
		}
	}
}

func TestUnpackStringTruncatedInputIsSafe(t *testing.T) {
	words := []int32{20} // claims 20 bytes but no payload words follow
	idx := 0
	got := unpackString(words, &idx)
	if got != "" {
		t.Fatalf("expected empty string for truncated input, got %q", got)
	}
}

func TestUnpackStringPastEndReturnsEmpty(t *testing.T) {
	idx := 5
	if got := unpackString(nil, &idx); got != "" {
		t.Fatalf("expected empty string reading past end, got %q", got)
	}
}

func TestPackUnpackStringsRoundTrip(t *testing.T) {
	in := []string{"setA", "setB", "trial-001"}
	words := packStrings(in)
	out := unpackStrings(words)
	if len(out) != len(in) {
		t.Fatalf("unpackStrings length = %d, want %d", len(out), len(in))
	}
	for i, s := range in {
		if out[i] != s {
			t.Errorf("strings[%d] = %q, want %q", i, out[i], s)
		}
	}
}

func TestPackUnpackEmptyStringsList(t *testing.T) {
	words := packStrings(nil)
	out := unpackStrings(words)
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %v", out)
	}
}

func TestDecodeMotionVectors(t *testing.T) {
	payload := []int32{1000, -500, 1, 0, 0, 0}
	vecs := decodeMotionVectors(payload, 2)
	if len(vecs) != 2 {
		t.Fatalf("expected 2 motion vectors, got %d", len(vecs))
	}
	if vecs[0].DeltaXDeg != 1 || vecs[0].DeltaYDeg != -0.5 || !vecs[0].On {
		t.Fatalf("vecs[0] = %+v, want {1 -0.5 true}", vecs[0])
	}
	if vecs[1].DeltaXDeg != 0 || vecs[1].DeltaYDeg != 0 || vecs[1].On {
		t.Fatalf("vecs[1] = %+v, want {0 0 false}", vecs[1])
	}
}

func TestDecodeMotionVectorsTruncatedPayloadStopsEarly(t *testing.T) {
	payload := []int32{1000, 0, 1} // only one full triple
	vecs := decodeMotionVectors(payload, 5)
	if len(vecs) != 1 {
		t.Fatalf("expected 1 motion vector from a truncated payload, got %d", len(vecs))
	}
}

func TestDecodeTargetDefs(t *testing.T) {
	payload := []int32{
		2,
		int32(target.KindPoint), int32(target.ApertureRect), 0, 0, 2000, 2000,
		int32(target.KindSpot), int32(target.ApertureOval), 3, 5, 4000, 3000,
	}
	defs := decodeTargetDefs(payload)
	if len(defs) != 2 {
		t.Fatalf("expected 2 target definitions, got %d", len(defs))
	}
	if defs[0].Kind != target.KindPoint || defs[0].OuterWDeg != 2 || defs[0].OuterHDeg != 2 {
		t.Fatalf("defs[0] = %+v", defs[0])
	}
	if defs[1].Kind != target.KindSpot || defs[1].Flicker.OnFrames != 3 || defs[1].Flicker.OffFrames != 5 {
		t.Fatalf("defs[1] = %+v", defs[1])
	}
	if defs[1].OuterWDeg != 4 || defs[1].OuterHDeg != 3 {
		t.Fatalf("defs[1] dims = (%v,%v), want (4,3)", defs[1].OuterWDeg, defs[1].OuterHDeg)
	}
}

func TestDecodeTargetDefsEmptyPayload(t *testing.T) {
	if defs := decodeTargetDefs(nil); defs != nil {
		t.Fatalf("expected nil for empty payload, got %v", defs)
	}
}

func TestDecodeTargetDefsTruncatedTrailingTarget(t *testing.T) {
	// Claims 2 targets but only carries enough words for one.
	payload := []int32{2, int32(target.KindPoint), int32(target.ApertureRect), 0, 0, 2000, 2000}
	defs := decodeTargetDefs(payload)
	if len(defs) != 1 {
		t.Fatalf("expected 1 target definition from a truncated trailing entry, got %d", len(defs))
	}
}
