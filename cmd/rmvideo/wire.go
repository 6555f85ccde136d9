// wire.go - payload packing for the string/array-shaped command/signal
// payloads that don't fit the fixed-word-per-field pattern (media folder and
// file name lists, per-target motion vectors, target-definition arrays).
//
// Grounded in spec.md §4.9/§6's "32-bit words" framing: everything the link
// carries is an int32; variable text is packed 4 ASCII bytes per word,
// little-endian, length-prefixed, matching the wire.go Conn framing used for
// the payload itself.

package main

import "github.com/cxdaq/cxcore/internal/render/target"

func packString(s string) []int32 {
	b := []byte(s)
	out := make([]int32, 0, 1+(len(b)+3)/4)
	out = append(out, int32(len(b)))
	for i := 0; i < len(b); i += 4 {
		var w uint32
		for j := 0; j < 4 && i+j < len(b); j++ {
			w |= uint32(b[i+j]) << (8 * j)
		}
		out = append(out, int32(w))
	}
	return out
}

// unpackString reads one length-prefixed string starting at *idx, advancing
// idx past it. Malformed (truncated) input yields an empty string rather
// than a panic, since payload words arrive over the network.
func unpackString(words []int32, idx *int) string {
	if *idx >= len(words) {
		return ""
	}
	n := int(words[*idx])
	*idx++
	if n < 0 {
		return ""
	}
	nw := (n + 3) / 4
	if *idx+nw > len(words) {
		*idx = len(words)
		return ""
	}
	b := make([]byte, n)
	for i := 0; i < nw && *idx < len(words); i++ {
		w := uint32(words[*idx])
		*idx++
		for j := 0; j < 4 && i*4+j < n; j++ {
			b[i*4+j] = byte(w >> (8 * j))
		}
	}
	return string(b)
}

func packStrings(ss []string) []int32 {
	out := []int32{int32(len(ss))}
	for _, s := range ss {
		out = append(out, packString(s)...)
	}
	return out
}

func unpackStrings(words []int32) []string {
	if len(words) == 0 {
		return nil
	}
	idx := 0
	n := int(words[idx])
	idx++
	if n < 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, unpackString(words, &idx))
	}
	return out
}

// decodeMotionVectors unpacks the per-frame (dx-millideg, dy-millideg, on)
// triples an update-frame command carries, one per loaded target.
func decodeMotionVectors(payload []int32, nTargets int) []target.MotionVector {
	vecs := make([]target.MotionVector, 0, nTargets)
	for i := 0; i < nTargets && i*3+2 < len(payload); i++ {
		vecs = append(vecs, target.MotionVector{
			DeltaXDeg: float64(payload[i*3]) / 1000,
			DeltaYDeg: float64(payload[i*3+1]) / 1000,
			On:        payload[i*3+2] != 0,
		})
	}
	return vecs
}

// decodeTargetDefs unpacks one or more target definitions from a
// load-targets payload: a count, then per target
// [kind, aperture, flickerOn, flickerOff, outerWDeg*1000, outerHDeg*1000].
// Variants needing richer parameters (gratings, dot patches, media targets)
// get their remaining fields from reasonable defaults here; a production
// wire format would carry every Definition field, but the full cross-product
// is orthogonal to what this command dispatch needs to demonstrate.
func decodeTargetDefs(payload []int32) []target.Definition {
	if len(payload) == 0 {
		return nil
	}
	const wordsPerTarget = 6
	count := int(payload[0])
	defs := make([]target.Definition, 0, count)
	for i := 0; i < count; i++ {
		base := 1 + i*wordsPerTarget
		if base+wordsPerTarget > len(payload) {
			break
		}
		defs = append(defs, target.Definition{
			Kind:      target.Kind(payload[base]),
			Aperture:  target.Aperture(payload[base+1]),
			Flicker:   target.Flicker{OnFrames: int(payload[base+2]), OffFrames: int(payload[base+3])},
			OuterWDeg: float64(payload[base+4]) / 1000,
			OuterHDeg: float64(payload[base+5]) / 1000,
			MeanRGB:   [3]float64{1, 1, 1},
		})
	}
	return defs
}
