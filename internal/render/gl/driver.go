// driver.go - the GPU-facing interface targets and the renderer core draw through
//
// Modeled directly on the teacher's VideoOutput interface (video_interface.go):
// a minimal polymorphic surface with exactly one production backend (here, the
// cgo GLX backend in context_glx.go) plus a headless fake for tests, so the
// target engine and renderer core never need a build tag or a nil check.

package gl

// TextureKind selects which texture-pool bucket a request falls into (spec.md §4.5).
type TextureKind int

const (
	TextureAlphaMask TextureKind = iota
	TextureRGBAImage
	TextureRGBFrame
)

// TextureHandle is an opaque GPU texture reference.
type TextureHandle int

// Special selects the fragment shader's per-target compositing mode (spec.md §4.5).
type Special int32

const (
	SpecialDefault Special = 0
	SpecialImage   Special = 1
	SpecialDots    Special = 2
)

// GratingUniforms carries the up-to-two-grating shader parameters for one draw call.
type GratingUniforms struct {
	NGratings     int32
	CenterPx      [2][2]float32 // per grating: (cx, cy) in pixels
	PeriodPx      [2][2]float32 // per grating: (periodX, periodY) projected
	PhaseDeg      [2]float32
	MeanContrast  [2][2]float32 // per grating: (mean, contrast)
	SineNotSquare [2]bool
}

// DrawUniforms is the full uniform set for one draw call, matching spec.md §4.5's
// "typed union" design note: one program, two small integer selectors, branch-free
// on the CPU side.
type DrawUniforms struct {
	Transform [16]float32 // 4x4 model-to-clip
	ColorRGB  [3]float32
	Special   Special
	Gratings  GratingUniforms
	Texture   TextureHandle
}

// Driver is the GPU-facing surface. The renderer core and every Target
// implementation call only through this interface.
type Driver interface {
	// Vertex buffer: a single shared 50,000-vertex array (spec.md §4.5).
	UploadVertexSlice(start, count int, data []float32) error

	// Raw texture operations. Reuse by (kind, width, height) and watermark
	// eviction are layered on top by TexturePool, not done here.
	AcquireTexture(kind TextureKind, width, height int) (TextureHandle, error)
	UpdateTexture(h TextureHandle, width, height int, pixels []byte) error
	ReleaseTexture(h TextureHandle)

	// Per-frame draw loop.
	Clear(r, g, b, a float32)
	DrawArrays(vertexStart, vertexCount int, uniforms DrawUniforms) error
	SwapBuffers() error
	Finish() // blocks until the driver completes the swap (spec.md §4.7 step 2)

	Close() error
}

// VertexStride is attributes-per-vertex: (x, y, Tx, Ty), per spec.md §4.5.
const VertexStride = 4

// SharedVertexCount is the fixed size of the shared vertex array.
const SharedVertexCount = 50000

// Fixed primitive slot ranges preloaded at startup (spec.md §4.5).
const (
	QuadStart        = 0
	QuadCount        = 6
	VideoQuadStart   = 6
	VideoQuadCount   = 6
	LineStart        = 12
	LineCount        = 2
	PointStart       = 14
	PointCount       = 1
	DynamicPoolStart = 15
	DynamicPoolCount = SharedVertexCount - DynamicPoolStart
)
