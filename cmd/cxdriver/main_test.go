package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cxdaq/cxcore/internal/proto"
)

func newTestSession(t *testing.T) (*session, *proto.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	s := &session{conn: proto.NewConn(a), signals: make(chan sigFrame, 4)}
	return s, proto.NewConn(b)
}

func TestEncodeMilliDeg(t *testing.T) {
	cases := map[float64]int32{0: 0, 1.5: 1500, -2.25: -2250}
	for in, want := range cases {
		if got := encodeMilliDeg(in); got != want {
			t.Errorf("encodeMilliDeg(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestSendCommandOutsideAnimationAllowed(t *testing.T) {
	s, peer := newTestSession(t)

	errCh := make(chan error, 1)
	go func() { errCh <- s.sendCommand(proto.CmdGetVersion) }()

	f, err := peer.ReadVariable()
	if err != nil {
		t.Fatalf("ReadVariable: %v", err)
	}
	if f.Tag != int32(proto.CmdGetVersion) {
		t.Fatalf("tag = %d, want %d", f.Tag, proto.CmdGetVersion)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("sendCommand: %v", err)
	}
}

func TestSendCommandRejectedDuringAnimation(t *testing.T) {
	s, _ := newTestSession(t)
	s.setAnimState(proto.StateAnimating)

	if err := s.sendCommand(proto.CmdLoadTargets, 1); err == nil {
		t.Fatal("expected CmdLoadTargets to be rejected while animating")
	}
}

func TestSendUpdateFrameRequiresAnimationState(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.sendUpdateFrame([]motionVec{{dx: 1, dy: 0, on: true}}); err == nil {
		t.Fatal("expected sendUpdateFrame to fail outside animation state")
	}
}

func TestSendUpdateFrameEncodesTriplesWhileAnimating(t *testing.T) {
	s, peer := newTestSession(t)
	s.setAnimState(proto.StateAnimating)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.sendUpdateFrame([]motionVec{{dx: 1.5, dy: -0.5, on: true}})
	}()

	f, err := peer.ReadVariable()
	if err != nil {
		t.Fatalf("ReadVariable: %v", err)
	}
	if f.Tag != int32(proto.CmdUpdateFrame) {
		t.Fatalf("tag = %d, want %d", f.Tag, proto.CmdUpdateFrame)
	}
	want := []int32{1500, -500, 1}
	for i, v := range want {
		if f.Payload[i] != v {
			t.Fatalf("payload[%d] = %d, want %d", i, f.Payload[i], v)
		}
	}
	if err := <-errCh; err != nil {
		t.Fatalf("sendUpdateFrame: %v", err)
	}
}

func TestAwaitSignalReturnsQueuedFrame(t *testing.T) {
	s, _ := newTestSession(t)
	s.signals <- sigFrame{sig: proto.SigCmdAck, payload: []int32{1}}

	f, err := s.awaitSignal(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("awaitSignal: %v", err)
	}
	if f.sig != proto.SigCmdAck {
		t.Fatalf("sig = %v, want SigCmdAck", f.sig)
	}
}

func TestAwaitSignalTimesOut(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.awaitSignal(context.Background(), 10*time.Millisecond); err == nil {
		t.Fatal("expected a timeout error when no signal arrives")
	}
}

func TestAwaitSignalRespectsContextCancellation(t *testing.T) {
	s, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.awaitSignal(ctx, time.Second); err == nil {
		t.Fatal("expected context cancellation to abort awaitSignal")
	}
}
