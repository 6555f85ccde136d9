package anim

import (
	"testing"
	"time"

	"github.com/cxdaq/cxcore/internal/render/gl"
	"github.com/cxdaq/cxcore/internal/render/target"
)

type fakeTarget struct {
	draws    int
	updates  int
	unloaded bool
}

func (f *fakeTarget) Initialize(def target.Definition) error { return nil }
func (f *fakeTarget) UpdateMotion(frameIntervalMs float64, v target.MotionVector) {
	f.updates++
}
func (f *fakeTarget) Draw(eyeOffsetFactor float64) { f.draws++ }
func (f *fakeTarget) Unload()                      { f.unloaded = true }

type scriptedCommands struct {
	script []scriptedCmd
	i      int
}

type scriptedCmd struct {
	kind CommandKind
	vecs []target.MotionVector
	ok   bool
}

func (s *scriptedCommands) ReadCommand() (CommandKind, []target.MotionVector, bool) {
	if s.i >= len(s.script) {
		return CmdNone, nil, false
	}
	c := s.script[s.i]
	s.i++
	return c.kind, c.vecs, c.ok
}

type recordingSignals struct {
	frames     []int
	skips      []int
	heartbeats int
	cmdErrors  int
}

func (r *recordingSignals) FrameSignal(frameIndex, skipCount int) {
	r.frames = append(r.frames, frameIndex)
	r.skips = append(r.skips, skipCount)
}
func (r *recordingSignals) Heartbeat(frameIndex int) { r.heartbeats++ }
func (r *recordingSignals) CommandError()            { r.cmdErrors++ }

func TestLoopExitsOnStopAnimate(t *testing.T) {
	ft := &fakeTarget{}
	cmds := &scriptedCommands{script: []scriptedCmd{
		{kind: CmdUpdateFrame, ok: true},
		{kind: CmdStopAnimate, ok: true},
	}}
	sig := &recordingSignals{}
	l := &Loop{
		Driver:   gl.NewFakeDriver(),
		Targets:  []target.Target{ft},
		Period:   time.Millisecond, // tiny period so the test runs fast
		Commands: cmds,
		Signals:  sig,
	}
	reason := l.Run(nil)
	if reason != ExitStopAnimate {
		t.Fatalf("expected ExitStopAnimate, got %v", reason)
	}
	if !ft.unloaded {
		t.Fatal("expected targets to be unloaded on exit")
	}
}

func TestLoopEmitsDuplicateFrameWithoutUpdate(t *testing.T) {
	ft := &fakeTarget{}
	cmds := &scriptedCommands{script: []scriptedCmd{
		{ok: false}, // no command this iteration
		{kind: CmdStopAnimate, ok: true},
	}}
	sig := &recordingSignals{}
	l := &Loop{
		Driver:   gl.NewFakeDriver(),
		Targets:  []target.Target{ft},
		Period:   time.Millisecond,
		Commands: cmds,
		Signals:  sig,
	}
	l.Run(nil)
	if len(sig.frames) == 0 || sig.skips[0] != 0 {
		t.Fatalf("expected a duplicate-frame (skip=0) signal on the first iteration, got %+v", sig)
	}
}

func TestLoopCommandErrorOnInvalidCommand(t *testing.T) {
	ft := &fakeTarget{}
	cmds := &scriptedCommands{script: []scriptedCmd{
		{kind: CmdOther, ok: true},
		{kind: CmdStopAnimate, ok: true},
	}}
	sig := &recordingSignals{}
	l := &Loop{
		Driver:   gl.NewFakeDriver(),
		Targets:  []target.Target{ft},
		Period:   time.Millisecond,
		Commands: cmds,
		Signals:  sig,
	}
	l.Run(nil)
	if sig.cmdErrors != 1 {
		t.Fatalf("expected exactly one command-error signal, got %d", sig.cmdErrors)
	}
}
