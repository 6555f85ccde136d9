// vertexbuf.go - free-list allocator over the shared 50,000-vertex buffer
//
// Grounded on the teacher's sprite/texture slot bookkeeping in
// video_interface.go's TextureCapable/SpriteCapable methods: a small fixed
// pool with a free-list, no per-frame heap allocation. Slots below
// DynamicPoolStart are reserved for the preloaded fixed primitives (quad,
// video quad, line, point) and are never handed out by Acquire.

package gl

import "fmt"

// VertexPool hands out fixed-size vertex ranges from the shared buffer's
// dynamic region to targets that need more than the fixed primitives
// (random-dot patches, plaids with many line segments).
type VertexPool struct {
	driver Driver
	free   []slot
}

type slot struct {
	start, count int
}

// NewVertexPool constructs a pool over the dynamic region of the shared buffer.
func NewVertexPool(d Driver) *VertexPool {
	return &VertexPool{
		driver: d,
		free:   []slot{{start: DynamicPoolStart, count: DynamicPoolCount}},
	}
}

// Acquire reserves a contiguous run of n vertices, first-fit.
func (p *VertexPool) Acquire(n int) (start int, err error) {
	for i, s := range p.free {
		if s.count >= n {
			start = s.start
			if s.count == n {
				p.free = append(p.free[:i], p.free[i+1:]...)
			} else {
				p.free[i] = slot{start: s.start + n, count: s.count - n}
			}
			return start, nil
		}
	}
	return 0, fmt.Errorf("gl: vertex pool exhausted requesting %d vertices", n)
}

// Release returns a previously acquired run to the free list, which is kept
// in address order so first-fit reuses the lowest free run. Adjacent runs
// are not coalesced; the pool's churn pattern (long-lived per-trial targets)
// makes fragmentation unlikely to matter within a single session.
func (p *VertexPool) Release(start, count int) {
	i := 0
	for i < len(p.free) && p.free[i].start < start {
		i++
	}
	p.free = append(p.free, slot{})
	copy(p.free[i+1:], p.free[i:])
	p.free[i] = slot{start: start, count: count}
}
