// transform.go - model-to-clip transform construction
//
// The renderer's geometry is entirely degrees-from-center; this builds the
// column-major 4x4 the vertex shader expects (uTransform in target.vert),
// translating by the target's current center (plus the stereo eye offset)
// and scaling the unit quad/line/point primitives to the target's pixel size.

package target

// identity4 returns a column-major identity matrix.
func identity4() [16]float32 {
	var m [16]float32
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// scaleTranslate builds a column-major 4x4 that scales by (sx, sy) about the
// origin then translates to (tx, ty), in normalized device coordinates.
func scaleTranslate(sx, sy, tx, ty float32) [16]float32 {
	m := identity4()
	m[0] = sx
	m[5] = sy
	m[12] = tx
	m[13] = ty
	return m
}

// degToNDC converts a visual-degree offset and a screen half-extent (in
// degrees) into normalized device coordinates in [-1, 1].
func degToNDC(deg, halfExtentDeg float64) float32 {
	if halfExtentDeg == 0 {
		return 0
	}
	return float32(deg / halfExtentDeg)
}

// HalfScreenWidthDeg and HalfScreenHeightDeg describe the display's visible
// extent in degrees; production values come from set-geometry, tests use the
// defaults.
var (
	HalfScreenWidthDeg  = 20.0
	HalfScreenHeightDeg = 15.0
)

func (b *base) transform(eyeOffsetFactor, sizeWDeg, sizeHDeg float64) [16]float32 {
	disparity := eyeOffsetFactor * b.def.DotDisparityDeg
	cx := degToNDC(b.centerXDeg+disparity, HalfScreenWidthDeg)
	cy := degToNDC(b.centerYDeg, HalfScreenHeightDeg)
	sx := float32(sizeWDeg / (2 * HalfScreenWidthDeg))
	sy := float32(sizeHDeg / (2 * HalfScreenHeightDeg))
	return scaleTranslate(sx, sy, cx, cy)
}
