package video

import (
	"testing"
	"time"
)

func TestBufferThreadServicesStreamsWhileEnabled(t *testing.T) {
	dec := newFakeDecoder(40)
	s, err := Open(dec, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	b := NewBufferThread()
	if err := b.OpenStream(s); err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	b.Start()
	defer b.Stop()

	// Drain the prefilled ring so the thread has room to decode more.
	for i := 0; i < RingSlots; i++ {
		s.AdvanceToNext()
	}

	b.Enable()
	deadline := time.After(2 * time.Second)
	for {
		wi := s.writeIdx
		if wi > RingSlots {
			break
		}
		select {
		case <-deadline:
			t.Fatal("buffer thread did not decode additional frames within the timeout")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestBufferThreadRejectsTooManyStreams(t *testing.T) {
	b := NewBufferThread()
	for i := 0; i < MaxStreams; i++ {
		dec := newFakeDecoder(12)
		s, err := Open(dec, false)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if err := b.OpenStream(s); err != nil {
			t.Fatalf("OpenStream %d: %v", i, err)
		}
	}
	dec := newFakeDecoder(12)
	s, err := Open(dec, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := b.OpenStream(s); err == nil {
		t.Fatal("expected an error opening beyond MaxStreams")
	}
}
