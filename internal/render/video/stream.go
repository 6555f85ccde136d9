// stream.go - a single video-buffer-thread-managed decode stream
//
// Grounded on spec.md §4.8 and §5's single-producer/single-consumer ring
// buffer rule: the write index is owned exclusively by the buffer thread,
// the read index exclusively by the main renderer thread, and each is a
// single word read and written with sync/atomic, so no lock is needed
// (matching the teacher's lock-free dirty-region bookkeeping style in
// video_interface.go, generalized from a map of regions to an index pair).

package video

import (
	"sync/atomic"
)

// RingSlots is the fixed prefill depth of each stream's frame ring
// (spec.md §4.8: "pre-fills the ring (10 slots) before returning").
const RingSlots = 10

// Decoder is the opaque external decoder boundary (spec.md §6 treats video
// codecs as opaque libraries returning raw pixel planes). ReadFrame returns
// one decoded frame converted to RGB24, or io.EOF-equivalent via ok=false
// with err=nil, or a non-nil err on unrecoverable decode failure.
type Decoder interface {
	Width() int
	Height() int
	NativeFrameIntervalMs() float64 // 0 if unknown
	ReadFrame() (rgb []byte, ok bool, err error)
	Rewind() error
	Close() error
}

// Stream is one open video target's decode pipeline: a ring of decoded RGB
// frames bridging the buffer thread (producer) and the render main thread
// (consumer).
type Stream struct {
	dec      Decoder
	ring     [][]byte
	w, h     int
	interval float64

	writeIdx uint32 // producer-owned
	readIdx  uint32 // consumer-owned

	stopOnEOF       bool
	disabledOnError int32 // atomic bool
	lastErr         error
}

// Open constructs a stream and pre-fills its ring synchronously, so the
// first render frame never stalls waiting on the buffer thread.
func Open(dec Decoder, stopOnEOF bool) (*Stream, error) {
	s := &Stream{
		dec:       dec,
		ring:      make([][]byte, RingSlots),
		w:         dec.Width(),
		h:         dec.Height(),
		interval:  dec.NativeFrameIntervalMs(),
		stopOnEOF: stopOnEOF,
	}
	for i := 0; i < RingSlots; i++ {
		if !s.decodeOne() {
			break
		}
	}
	return s, nil
}

// decodeOne reads and stores one frame at the current write index, advancing
// it. Called by the buffer thread (and once, synchronously, by Open).
func (s *Stream) decodeOne() bool {
	if atomic.LoadInt32(&s.disabledOnError) != 0 {
		return false
	}
	frame, ok, err := s.dec.ReadFrame()
	if err != nil {
		atomic.StoreInt32(&s.disabledOnError, 1)
		s.lastErr = err
		return false
	}
	if !ok {
		if s.stopOnEOF {
			return false
		}
		if rerr := s.dec.Rewind(); rerr != nil {
			atomic.StoreInt32(&s.disabledOnError, 1)
			s.lastErr = rerr
			return false
		}
		frame, ok, err = s.dec.ReadFrame()
		if err != nil || !ok {
			return false
		}
	}
	wi := atomic.LoadUint32(&s.writeIdx)
	slot := wi % RingSlots
	s.ring[slot] = frame
	atomic.StoreUint32(&s.writeIdx, wi+1)
	return true
}

// hasFreeSlot reports whether the ring has room for another decoded frame
// without overwriting one the consumer hasn't read yet.
func (s *Stream) hasFreeSlot() bool {
	wi := atomic.LoadUint32(&s.writeIdx)
	ri := atomic.LoadUint32(&s.readIdx)
	return wi-ri < RingSlots
}

func (s *Stream) disabled() bool { return atomic.LoadInt32(&s.disabledOnError) != 0 }

// Consumer-side surface (target.Stream):

func (s *Stream) FrameWidth() int                { return s.w }
func (s *Stream) FrameHeight() int               { return s.h }
func (s *Stream) NativeFrameIntervalMs() float64 { return s.interval }

// NextFrame returns the frame at the current read position without
// consuming it; callers must call AdvanceToNext to move on.
func (s *Stream) NextFrame() ([]byte, bool) {
	wi := atomic.LoadUint32(&s.writeIdx)
	ri := atomic.LoadUint32(&s.readIdx)
	if ri >= wi {
		return nil, false
	}
	return s.ring[ri%RingSlots], true
}

// AdvanceToNext moves the consumer's read cursor forward by one frame.
func (s *Stream) AdvanceToNext() {
	atomic.AddUint32(&s.readIdx, 1)
}

// LastError returns the decode error that latched disabled-on-error, if any.
func (s *Stream) LastError() error { return s.lastErr }

// Close releases the underlying decoder.
func (s *Stream) Close() error { return s.dec.Close() }
