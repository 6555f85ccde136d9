// loop.go - renderer main animation loop
//
// Grounded on spec.md §4.7's seven-step steady-state iteration. Kept
// decoupled from internal/proto's wire types through the small CommandSource
// interface below, in the same spirit as the teacher's VideoOutput
// interface decoupling backend specifics from the render loop caller.

package anim

import (
	"time"

	"github.com/cxdaq/cxcore/internal/render/gl"
	"github.com/cxdaq/cxcore/internal/render/target"
)

// CommandKind is the small subset of link commands valid during animation
// (spec.md §4.9: "During animation: only update-frame, stop-animate,
// shutting-down, exit").
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdUpdateFrame
	CmdStopAnimate
	CmdShuttingDown
	CmdExit
	CmdOther // any other command: yields a command-error signal, loop continues
)

// CommandSource is read once per iteration (spec.md §4.7 step 6).
type CommandSource interface {
	// ReadCommand returns immediately with CmdNone if nothing is queued.
	ReadCommand() (kind CommandKind, vectors []target.MotionVector, ok bool)
}

// SignalSink receives the loop's outward signals: frame/skip reports,
// heartbeats, and command-error notices.
type SignalSink interface {
	FrameSignal(frameIndex, skipCount int)
	Heartbeat(frameIndex int)
	CommandError()
}

// ExitReason reports which command terminated the loop.
type ExitReason int

const (
	ExitStopAnimate ExitReason = iota
	ExitShuttingDown
	ExitLinkLost
)

// Loop runs one full animation sequence (spec.md §4.7).
type Loop struct {
	Driver   gl.Driver
	Targets  []target.Target
	Stereo   bool
	Period   time.Duration
	Commands CommandSource
	Signals  SignalSink

	SyncFlashEnabled bool
	DrawSyncFlash    func(eyeOffsetFactor float64) // nil when disabled
}

// periodTracker implements spec.md §4.7 steps 3 and 5: skip detection and
// hysteresis-gated period refinement.
type periodTracker struct {
	period        time.Duration
	first         time.Time
	n             int
	divergeStreak int
	runningMean   time.Duration
}

func newPeriodTracker(period time.Duration) *periodTracker {
	return &periodTracker{period: period, runningMean: period}
}

// observe computes the elapsed-frame-count/skip accounting for one finish
// event and, when warranted, refines the period estimate.
func (p *periodTracker) observe(now time.Time) (frameIndex, skipCount int) {
	if p.n == 0 {
		p.first = now
		p.n = 1
		return 0, 0
	}
	elapsed := now.Sub(p.first)
	n := int(elapsed / p.period)
	skips := 0
	for time.Duration(elapsed)-time.Duration(n)*p.period > p.period-500*time.Microsecond {
		n++
		skips++
	}

	diff := elapsed - time.Duration(n)*p.period
	if diff < 0 {
		diff = -diff
	}
	if diff > 50*time.Microsecond {
		p.divergeStreak++
	} else {
		p.divergeStreak = 0
	}
	refine := false
	if p.divergeStreak >= 3 {
		settled := diff <= time.Duration(1.5*float64(p.runningMean))
		if settled || p.divergeStreak >= 3+5 {
			refine = true
		}
	}
	if refine && n > 0 {
		p.period = elapsed / time.Duration(n)
		p.divergeStreak = 0
	}
	p.runningMean = (p.runningMean*9 + p.period) / 10

	p.n = n
	return n, skips
}

// Run executes the loop to completion, returning why it exited.
func (l *Loop) Run(initialVectors []target.MotionVector) ExitReason {
	for i, v := range initialVectors {
		if i >= len(l.Targets) {
			break
		}
		l.Targets[i].UpdateMotion(0, v)
	}
	flashArmed := l.SyncFlashEnabled

	tracker := newPeriodTracker(l.Period)
	lastHeartbeat := time.Time{}
	frameIntervalMs := float64(l.Period) / float64(time.Millisecond)

	for {
		// Step 1: clear + draw.
		if l.Stereo {
			l.Driver.Clear(0, 0, 0, 1)
			for _, t := range l.Targets {
				t.Draw(-0.5)
			}
			if flashArmed && l.DrawSyncFlash != nil {
				l.DrawSyncFlash(-0.5)
			}
			l.Driver.Clear(0, 0, 0, 1)
			for _, t := range l.Targets {
				t.Draw(0.5)
			}
			if flashArmed && l.DrawSyncFlash != nil {
				l.DrawSyncFlash(0.5)
			}
		} else {
			l.Driver.Clear(0, 0, 0, 1)
			for _, t := range l.Targets {
				t.Draw(0)
			}
			if flashArmed && l.DrawSyncFlash != nil {
				l.DrawSyncFlash(0)
			}
		}

		// Step 2: swap + blocking finish.
		_ = l.Driver.SwapBuffers()
		l.Driver.Finish()
		now := time.Now()

		// Step 3: skip detection.
		frameIndex, skipCount := tracker.observe(now)
		if skipCount > 0 {
			l.Signals.FrameSignal(frameIndex, skipCount)
		}

		// Step 4: 1s heartbeat.
		if lastHeartbeat.IsZero() || now.Sub(lastHeartbeat) >= time.Second {
			l.Signals.Heartbeat(frameIndex)
			lastHeartbeat = now
		}

		// Step 6: read exactly one command.
		kind, vectors, ok := l.Commands.ReadCommand()
		gotUpdateFrame := false
		if ok {
			switch kind {
			case CmdUpdateFrame:
				for i, v := range vectors {
					if i >= len(l.Targets) {
						break
					}
					l.Targets[i].UpdateMotion(frameIntervalMs, v)
				}
				gotUpdateFrame = true
			case CmdStopAnimate:
				l.unloadAll()
				return ExitStopAnimate
			case CmdShuttingDown, CmdExit:
				l.unloadAll()
				return ExitShuttingDown
			default:
				l.Signals.CommandError()
			}
		}

		// Step 7: no updateFrame received this iteration; duplicate-frame
		// signal, target state carried unchanged into the next iteration.
		if !gotUpdateFrame {
			l.Signals.FrameSignal(frameIndex, 0)
		}
	}
}

func (l *Loop) unloadAll() {
	for _, t := range l.Targets {
		t.Unload()
	}
}
