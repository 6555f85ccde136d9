// buffer.go - the single background video-buffer thread
//
// Grounded on spec.md §4.8: one goroutine, pinned with runtime.LockOSThread
// plus golang.org/x/sys/unix.SchedSetaffinity to the highest-numbered CPU,
// servicing every open stream round-robin while its enable flag is set.
// The affinity call mirrors the teacher's direct-syscall style elsewhere in
// the pack (cgo hardware access in video_backend_opengl.go) but through the
// pure-Go x/sys/unix binding rather than cgo, since affinity is a plain
// syscall with no GL/X11 dependency.

package video

import (
	"runtime"
	"sync"
	"time"
)

// MaxStreams bounds the number of concurrently open streams the thread
// services (spec.md §4.6/4.8: "up to five streams").
const MaxStreams = 5

// BufferThread runs the decode loop for up to MaxStreams open streams.
type BufferThread struct {
	mu      sync.Mutex
	streams []*Stream
	enabled bool
	stop    chan struct{}
	done    chan struct{}
}

// NewBufferThread constructs an idle buffer thread; call Start to launch its
// goroutine and Enable to begin decoding.
func NewBufferThread() *BufferThread {
	return &BufferThread{stop: make(chan struct{})}
}

// OpenStream registers an already-opened stream for round-robin servicing.
// Returns an error if MaxStreams is already open.
func (b *BufferThread) OpenStream(s *Stream) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.streams) >= MaxStreams {
		return errTooManyStreams
	}
	b.streams = append(b.streams, s)
	return nil
}

// CloseStream unregisters and closes a stream.
func (b *BufferThread) CloseStream(s *Stream) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, st := range b.streams {
		if st == s {
			b.streams = append(b.streams[:i], b.streams[i+1:]...)
			break
		}
	}
	return s.Close()
}

// Enable sets the buffering flag; the decode loop only runs while set
// (spec.md §5: "idle unless its enable flag is set").
func (b *BufferThread) Enable() {
	b.mu.Lock()
	b.enabled = true
	b.mu.Unlock()
}

// Disable clears the buffering flag, idling the decode loop.
func (b *BufferThread) Disable() {
	b.mu.Lock()
	b.enabled = false
	b.mu.Unlock()
}

// Start launches the background goroutine, pinning it to the highest CPU.
func (b *BufferThread) Start() {
	b.done = make(chan struct{})
	go b.run()
}

// Stop terminates the goroutine and waits for it to exit.
func (b *BufferThread) Stop() {
	close(b.stop)
	<-b.done
}

func (b *BufferThread) run() {
	defer close(b.done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	pinToHighestCPU()

	for {
		select {
		case <-b.stop:
			return
		default:
		}

		b.mu.Lock()
		enabled := b.enabled
		streams := append([]*Stream(nil), b.streams...)
		b.mu.Unlock()

		if !enabled || len(streams) == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		didWork := false
		for _, s := range streams {
			if s.disabled() || !s.hasFreeSlot() {
				continue
			}
			s.decodeOne()
			didWork = true
		}
		if !didWork {
			time.Sleep(time.Millisecond)
		}
	}
}

type bufferThreadError string

func (e bufferThreadError) Error() string { return string(e) }

const errTooManyStreams = bufferThreadError("video: too many open streams")
