// fake_driver.go - in-memory Driver for headless operation and tests
//
// Mirrors the role the teacher's other backends (video_backend_ebiten.go,
// the Voodoo path) play alongside OpenGLOutput behind the same VideoOutput
// interface: a second, swappable implementation of the same surface, not a
// conditional inside the production one. Here it lets the anim/target
// packages be exercised without an X server.

package gl

import "fmt"

// FakeDriver records draw calls and swap counts instead of touching a GPU.
type FakeDriver struct {
	NextTex    TextureHandle
	Textures   map[TextureHandle]fakeTex
	SwapCount  int
	DrawCount  int
	LastClear  [4]float32
	VertexData []float32
	FailSwap   bool // test hook: simulate a dropped swap
}

type fakeTex struct {
	kind TextureKind
	w, h int
}

// NewFakeDriver constructs a ready-to-use headless driver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		Textures:   make(map[TextureHandle]fakeTex),
		VertexData: make([]float32, SharedVertexCount*VertexStride),
	}
}

func (f *FakeDriver) UploadVertexSlice(start, count int, data []float32) error {
	if len(data) != count*VertexStride {
		return fmt.Errorf("gl: fake driver vertex length mismatch")
	}
	copy(f.VertexData[start*VertexStride:], data)
	return nil
}

func (f *FakeDriver) AcquireTexture(kind TextureKind, width, height int) (TextureHandle, error) {
	f.NextTex++
	f.Textures[f.NextTex] = fakeTex{kind: kind, w: width, h: height}
	return f.NextTex, nil
}

func (f *FakeDriver) UpdateTexture(h TextureHandle, width, height int, pixels []byte) error {
	if _, ok := f.Textures[h]; !ok {
		return fmt.Errorf("gl: fake driver unknown texture %d", h)
	}
	return nil
}

func (f *FakeDriver) ReleaseTexture(h TextureHandle) {
	delete(f.Textures, h)
}

func (f *FakeDriver) Clear(r, g, b, a float32) {
	f.LastClear = [4]float32{r, g, b, a}
}

func (f *FakeDriver) DrawArrays(vertexStart, vertexCount int, u DrawUniforms) error {
	f.DrawCount++
	return nil
}

func (f *FakeDriver) SwapBuffers() error {
	if f.FailSwap {
		return fmt.Errorf("gl: fake driver simulated swap failure")
	}
	f.SwapCount++
	return nil
}

func (f *FakeDriver) Finish() {}

func (f *FakeDriver) Close() error { return nil }

var _ Driver = (*FakeDriver)(nil)
