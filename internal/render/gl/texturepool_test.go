package gl

import "testing"

func TestTexturePoolReusesMatchingDimensions(t *testing.T) {
	p := NewTexturePool(NewFakeDriver())

	h1, err := p.Acquire(TextureAlphaMask, 64, 64)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	p.Release(h1)

	h2, err := p.Acquire(TextureAlphaMask, 64, 64)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected reuse of released texture %d, got %d", h1, h2)
	}
}

func TestTexturePoolEvictsUnderPressure(t *testing.T) {
	fd := NewFakeDriver()
	p := NewTexturePool(fd)

	// 512x(512+i) RGBA is just over 1MB each, and every height is distinct so
	// no released texture is reused; acquire+release enough to cross the high
	// watermark and force eviction back under the low watermark.
	const dim = 512
	var handles []TextureHandle
	for i := 0; i < 60; i++ {
		h, err := p.Acquire(TextureRGBAImage, dim, dim+i)
		if err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
		p.Release(h)
		handles = append(handles, h)
	}

	if p.heldBytes > highWatermarkBytes {
		t.Fatalf("held bytes %d exceeds high watermark %d after eviction pass", p.heldBytes, highWatermarkBytes)
	}
	if len(fd.Textures) == len(handles) {
		t.Fatal("expected some textures to have been evicted from the driver")
	}
}
