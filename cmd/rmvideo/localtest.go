// localtest.go - the "-connect" alternative: run a canned or scripted
// animation sequence locally with no driver attached (spec.md §6's
// test-sequence-file CLI mode), useful for exercising the render pipeline
// and rig calibration without the full two-process link.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cxdaq/cxcore/internal/render/anim"
	"github.com/cxdaq/cxcore/internal/render/gl"
	"github.com/cxdaq/cxcore/internal/render/target"
	"github.com/cxdaq/cxcore/internal/rtlog"
)

type scriptStep struct {
	kind anim.CommandKind
	reps int
}

// parseTestSequence reads a whitespace-token-per-line script:
//
//	load <kind>      - kind is a target.Kind ordinal
//	animate <frames> - run that many update-frame iterations
//	stop
//
// An empty path yields the built-in default: one point target, 100 frames.
func parseTestSequence(path string) (kind target.Kind, steps []scriptStep, err error) {
	if path == "" {
		return target.KindPoint, []scriptStep{{anim.CmdUpdateFrame, 100}, {anim.CmdStopAnimate, 1}}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("rmvideo: open test sequence %s: %w", path, err)
	}
	defer f.Close()

	kind = target.KindPoint
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "load":
			if len(fields) >= 2 {
				n, _ := strconv.Atoi(fields[1])
				kind = target.Kind(n)
			}
		case "animate":
			frames := 100
			if len(fields) >= 2 {
				if n, perr := strconv.Atoi(fields[1]); perr == nil {
					frames = n
				}
			}
			steps = append(steps, scriptStep{anim.CmdUpdateFrame, frames})
		case "stop":
			steps = append(steps, scriptStep{anim.CmdStopAnimate, 1})
		}
	}
	if err := sc.Err(); err != nil {
		return 0, nil, fmt.Errorf("rmvideo: read test sequence: %w", err)
	}
	if len(steps) == 0 {
		steps = []scriptStep{{anim.CmdUpdateFrame, 100}, {anim.CmdStopAnimate, 1}}
	}
	return kind, steps, nil
}

// scriptedCommands feeds a parsed script to anim.Loop one call at a time.
type scriptedCommands struct {
	steps []scriptStep
	i     int
	rep   int
}

func (s *scriptedCommands) ReadCommand() (anim.CommandKind, []target.MotionVector, bool) {
	for s.i < len(s.steps) {
		step := s.steps[s.i]
		if s.rep >= step.reps {
			s.i++
			s.rep = 0
			continue
		}
		s.rep++
		if step.kind == anim.CmdUpdateFrame {
			return anim.CmdUpdateFrame, []target.MotionVector{{DeltaXDeg: 0.01, DeltaYDeg: 0, On: true}}, true
		}
		return step.kind, nil, true
	}
	return anim.CmdNone, nil, false
}

type logSignals struct{}

func (logSignals) FrameSignal(frameIndex, skipCount int) {
	if skipCount > 0 {
		rtlog.Default.Debug("frame skip", "frame", frameIndex, "skips", skipCount)
	}
}
func (logSignals) Heartbeat(frameIndex int) { rtlog.Default.Info("heartbeat", "frame", frameIndex) }
func (logSignals) CommandError()            { rtlog.Default.Error("command error in local test sequence") }

func runLocalTestSequence(testSeqPath string, d gl.Driver, vpool *gl.VertexPool, period time.Duration) {
	kind, steps, err := parseTestSequence(testSeqPath)
	if err != nil {
		rtlog.Fatal("parse test sequence", "err", err)
	}

	var t target.Target
	switch kind {
	case target.KindRandomDots:
		t = target.NewRandomDotsTarget(d, vpool)
	case target.KindFlowField:
		t = target.NewFlowFieldTarget(d, vpool)
	case target.KindGrating:
		t = target.NewGratingTarget(d, false)
	case target.KindPlaid:
		t = target.NewGratingTarget(d, true)
	case target.KindBar:
		t = target.NewBarTarget(d)
	case target.KindSpot:
		t = target.NewSpotTarget(d)
	default:
		t = target.NewPointTarget(d)
	}
	def := target.Definition{Kind: kind, OuterWDeg: 2, OuterHDeg: 2, MeanRGB: [3]float64{1, 1, 1}, DotCount: 50, PercentCoherent: 100}
	if err := t.Initialize(def); err != nil {
		rtlog.Fatal("initialize local test target", "err", err)
	}

	loop := &anim.Loop{
		Driver:   d,
		Targets:  []target.Target{t},
		Period:   period,
		Commands: &scriptedCommands{steps: steps},
		Signals:  logSignals{},
	}
	reason := loop.Run(nil)
	rtlog.Default.Info("local test sequence finished", "reason", reason)
}
