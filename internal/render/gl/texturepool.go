// texturepool.go - dimension-bucketed texture cache with watermark eviction
//
// Grounded on the teacher's VideoOutput TextureCapable surface
// (video_interface.go: CreateTexture/UpdateTexture/DeleteTexture) generalized
// with the size bookkeeping spec.md §4.5 calls for: textures are expensive to
// allocate (alpha masks, image/movie frames), so requests for an already-held
// (kind, width, height) reuse the existing GPU object instead of churning.

package gl

import "sync"

const (
	highWatermarkBytes = 50 * 1024 * 1024
	lowWatermarkBytes  = 45 * 1024 * 1024
)

type pooledTexture struct {
	handle     TextureHandle
	kind       TextureKind
	w, h       int
	bytes      int
	refs       int
	lastUseSeq uint64
}

// TexturePool manages GPU texture lifetime above a Driver, evicting the
// least-recently-used unreferenced texture once held bytes exceed the high
// watermark, down to the low watermark.
type TexturePool struct {
	mu        sync.Mutex
	driver    Driver
	entries   []*pooledTexture
	heldBytes int
	seq       uint64
}

// NewTexturePool wraps a Driver with pooled texture allocation.
func NewTexturePool(d Driver) *TexturePool {
	return &TexturePool{driver: d}
}

func bytesPerPixel(kind TextureKind) int {
	switch kind {
	case TextureAlphaMask:
		return 1
	default:
		return 4
	}
}

// Acquire returns a texture matching (kind, w, h), reusing a pooled one if an
// unreferenced match exists, or allocating a new one via the driver.
func (p *TexturePool) Acquire(kind TextureKind, w, h int) (TextureHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++

	for _, e := range p.entries {
		if e.kind == kind && e.w == w && e.h == h && e.refs == 0 {
			e.refs = 1
			e.lastUseSeq = p.seq
			return e.handle, nil
		}
	}

	h2, err := p.driver.AcquireTexture(kind, w, h)
	if err != nil {
		return 0, err
	}
	nb := w * h * bytesPerPixel(kind)
	p.entries = append(p.entries, &pooledTexture{
		handle: h2, kind: kind, w: w, h: h, bytes: nb, refs: 1, lastUseSeq: p.seq,
	})
	p.heldBytes += nb
	p.evictIfNeeded()
	return h2, nil
}

// Release marks a texture as no longer in use by its caller. It remains
// pooled (eligible for reuse or eviction) rather than being freed immediately.
func (p *TexturePool) Release(h TextureHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		if e.handle == h && e.refs > 0 {
			e.refs--
		}
	}
}

// evictIfNeeded frees least-recently-used unreferenced textures until held
// bytes falls to the low watermark, once the high watermark is crossed.
// Caller holds p.mu.
func (p *TexturePool) evictIfNeeded() {
	if p.heldBytes <= highWatermarkBytes {
		return
	}
	for p.heldBytes > lowWatermarkBytes {
		victim := -1
		for i, e := range p.entries {
			if e.refs != 0 {
				continue
			}
			if victim == -1 || e.lastUseSeq < p.entries[victim].lastUseSeq {
				victim = i
			}
		}
		if victim == -1 {
			return // everything still referenced; can't evict further
		}
		e := p.entries[victim]
		p.driver.ReleaseTexture(e.handle)
		p.heldBytes -= e.bytes
		p.entries = append(p.entries[:victim], p.entries[victim+1:]...)
	}
}
