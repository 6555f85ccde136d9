package video

import "testing"

type fakeDecoder struct {
	w, h     int
	interval float64
	frames   [][]byte
	idx      int
	rewinds  int
	failAt   int // index at which ReadFrame returns an error, -1 to disable
	reads    int
}

func (d *fakeDecoder) Width() int                     { return d.w }
func (d *fakeDecoder) Height() int                    { return d.h }
func (d *fakeDecoder) NativeFrameIntervalMs() float64 { return d.interval }

func (d *fakeDecoder) ReadFrame() ([]byte, bool, error) {
	d.reads++
	if d.failAt >= 0 && d.idx == d.failAt {
		return nil, false, errSimulatedDecode
	}
	if d.idx >= len(d.frames) {
		return nil, false, nil
	}
	f := d.frames[d.idx]
	d.idx++
	return f, true, nil
}

func (d *fakeDecoder) Rewind() error {
	d.rewinds++
	d.idx = 0
	return nil
}

func (d *fakeDecoder) Close() error { return nil }

type decodeError string

func (e decodeError) Error() string { return string(e) }

const errSimulatedDecode = decodeError("simulated decode failure")

func newFakeDecoder(n int) *fakeDecoder {
	frames := make([][]byte, n)
	for i := range frames {
		frames[i] = []byte{byte(i)}
	}
	return &fakeDecoder{w: 4, h: 4, frames: frames, failAt: -1}
}

func TestStreamOpenPrefillsRing(t *testing.T) {
	dec := newFakeDecoder(3) // fewer frames than RingSlots; loops via rewind
	s, err := Open(dec, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if dec.reads < RingSlots {
		t.Fatalf("expected Open to prefill %d slots, only read %d frames", RingSlots, dec.reads)
	}
	if _, ok := s.NextFrame(); !ok {
		t.Fatal("expected a frame available immediately after Open")
	}
}

func TestStreamStopOnEOFHalts(t *testing.T) {
	dec := newFakeDecoder(3)
	s, err := Open(dec, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if dec.rewinds != 0 {
		t.Fatal("expected no rewind when stop-on-EOF is set")
	}
	// Drain exactly the frames that were decoded.
	count := 0
	for {
		if _, ok := s.NextFrame(); !ok {
			break
		}
		s.AdvanceToNext()
		count++
	}
	if count != 3 {
		t.Fatalf("expected exactly 3 frames with stop-on-EOF, got %d", count)
	}
}

func TestStreamDisablesOnDecodeError(t *testing.T) {
	dec := newFakeDecoder(5)
	dec.failAt = 2
	s, err := Open(dec, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !s.disabled() {
		t.Fatal("expected stream to latch disabled-on-error after a decode failure")
	}
	if s.LastError() == nil {
		t.Fatal("expected LastError to be set")
	}
}
