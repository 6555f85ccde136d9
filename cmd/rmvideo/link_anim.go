// link_anim.go - adapts the proto link to the render loop's small
// CommandSource/SignalSink interfaces (internal/render/anim), keeping the
// animation package itself free of any wire-protocol dependency.

package main

import (
	"time"

	"github.com/cxdaq/cxcore/internal/proto"
	"github.com/cxdaq/cxcore/internal/render/anim"
	"github.com/cxdaq/cxcore/internal/render/target"
	"github.com/cxdaq/cxcore/internal/rtlog"
)

// linkCommands reads one link frame per call, never blocking longer than a
// single poll: the animation loop must not stall waiting on the network.
type linkCommands struct {
	conn     *proto.Conn
	nTargets int
}

func (l *linkCommands) ReadCommand() (anim.CommandKind, []target.MotionVector, bool) {
	if err := l.conn.SetDeadline(time.Now()); err != nil {
		return anim.CmdNone, nil, false
	}
	fr, err := l.conn.ReadVariable()
	if err != nil {
		return anim.CmdNone, nil, false
	}
	switch proto.Command(fr.Tag) {
	case proto.CmdUpdateFrame:
		return anim.CmdUpdateFrame, decodeMotionVectors(fr.Payload, l.nTargets), true
	case proto.CmdStopAnimate:
		return anim.CmdStopAnimate, nil, true
	case proto.CmdShuttingDown:
		return anim.CmdShuttingDown, nil, true
	case proto.CmdExit:
		return anim.CmdExit, nil, true
	default:
		return anim.CmdOther, nil, true
	}
}

// linkSignals reports heartbeats and command errors back to the driver over
// the link; per-frame skip signals are logged locally only (at 500Hz they
// would flood the link for no operational benefit).
type linkSignals struct {
	conn *proto.Conn
}

func (l *linkSignals) FrameSignal(frameIndex, skipCount int) {
	if skipCount > 0 {
		rtlog.Default.Debug("frame skip", "frame", frameIndex, "skips", skipCount)
	}
}

func (l *linkSignals) Heartbeat(frameIndex int) {
	_ = l.conn.WriteVariable(int32(proto.SigAnimateMessage), []int32{int32(frameIndex)})
}

func (l *linkSignals) CommandError() {
	_ = l.conn.WriteVariable(int32(proto.SigCmdError), nil)
}
