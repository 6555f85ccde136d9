// main.go - cxdriver entry point: board acquisition, link dial, operator console
//
// Follows the teacher's main.go shape (main.go in the repository root): parse
// arguments, acquire hardware, wire peripherals, start goroutines, run.
// No GUI framework and no experiment-file interpreter here (both are explicit
// Non-goals); the operator drives the session through single-key commands on
// the console, read raw via golang.org/x/term the same way a real rig's
// terminal session would avoid line-buffered input for low-latency keys.

package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/cxdaq/cxcore/internal/daq"
	"github.com/cxdaq/cxcore/internal/latch"
	"github.com/cxdaq/cxcore/internal/proto"
	"github.com/cxdaq/cxcore/internal/rtcfg"
	"github.com/cxdaq/cxcore/internal/rtlog"
)

func main() {
	cfg := rtcfg.ParseDriverConfig(os.Args[1:])
	rtlog.Default.Info("cxdriver starting", "renderAddr", cfg.RenderAddr, "board", cfg.BoardResource)

	regs, err := openRegisterFile(cfg.BoardResource)
	if err != nil {
		rtlog.Fatal("open board registers", "err", err)
	}

	// Device IDs are board-specific (the original targets National Instruments
	// 6363/6509 boards; see ni6363regs.h in original_source). A null board
	// (regs == nil) runs the full command/link surface headless.
	desc := daq.DeviceDescriptor{VendorID: 0x1093, ProductID: 0x0602, Instance: 0}
	board, err := daq.OpenBoard(desc, regs, daq.BoardConfig{
		AOChannels:      4,
		ChairChannel:    0,
		ChairDegPerVolt: 15.0,
		TimerMode:       daq.TimerModeMultiplexed,
	})
	if err != nil {
		rtlog.Fatal("open board", "err", err)
	}
	rtlog.Default.Info("board opened", "board", board.String())

	var scheduleMu sync.Mutex
	mux := latch.NewMux(board.EventTimer(), rand.New(rand.NewSource(time.Now().UnixNano())), func(ms int, fn func()) {
		time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
			scheduleMu.Lock()
			defer scheduleMu.Unlock()
			fn()
		})
	})
	psg := latch.NewPSG(mux)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		rtlog.Default.Info("cxdriver received termination signal")
		cancel()
	}()

	client := proto.NewClient(proto.ClientConfig{Addr: cfg.RenderAddr, Retry: cfg.RetryLink})
	conn, err := client.Dial(ctx)
	if err != nil {
		rtlog.Fatal("dial renderer", "err", err)
	}
	defer conn.Close()
	rtlog.Default.Info("link established", "addr", cfg.RenderAddr)

	d := &session{board: board, mux: mux, psg: psg, conn: conn, signals: make(chan sigFrame, 8)}

	go d.pollBoardAndLink(ctx)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		d.runOperatorConsole(ctx)
	} else {
		d.runDemoSequence(ctx)
	}

	rtlog.Default.Info("cxdriver exiting")
}

// sigFrame is one decoded renderer->driver frame handed from the poller to
// whichever command handler is waiting on it.
type sigFrame struct {
	sig     proto.Signal
	payload []int32
}

// session holds the driver's link state and command-gating state machine,
// shared between the operator console/demo driver and the board/link poller.
type session struct {
	board *daq.Board
	mux   *latch.Mux
	psg   *latch.PSG

	conn    *proto.Conn
	writeMu sync.Mutex

	stateMu sync.Mutex
	state   proto.AnimState

	signals chan sigFrame
}

func (s *session) animState() proto.AnimState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *session) setAnimState(st proto.AnimState) {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()
}

// sendCommand gates cmd against the current animation state and writes it
// with a length-prefixed payload (spec.md §4.9/§6 framing).
func (s *session) sendCommand(cmd proto.Command, payload ...int32) error {
	if !proto.Gate(s.animState(), cmd) {
		return fmt.Errorf("cxdriver: command %d invalid in current animation state", cmd)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteVariable(int32(cmd), payload)
}

// sendUpdateFrame writes the hot-path per-refresh motion update: one
// (dx-millideg, dy-millideg, on) triple per target, length-prefixed like
// every other command so the renderer's dispatch loop never has to guess
// which framing a given tag uses.
func (s *session) sendUpdateFrame(vecs []motionVec) error {
	if !proto.Gate(s.animState(), proto.CmdUpdateFrame) {
		return fmt.Errorf("cxdriver: update-frame sent outside animation")
	}
	payload := make([]int32, 0, len(vecs)*3)
	for _, v := range vecs {
		on := int32(0)
		if v.on {
			on = 1
		}
		payload = append(payload, encodeMilliDeg(v.dx), encodeMilliDeg(v.dy), on)
	}
	return s.sendCommand(proto.CmdUpdateFrame, payload...)
}

// awaitSignal blocks for the next decoded renderer frame, or returns an error
// if timeout elapses or ctx is canceled first.
func (s *session) awaitSignal(ctx context.Context, timeout time.Duration) (sigFrame, error) {
	select {
	case f := <-s.signals:
		return f, nil
	case <-time.After(timeout):
		return sigFrame{}, fmt.Errorf("cxdriver: timed out waiting for renderer signal")
	case <-ctx.Done():
		return sigFrame{}, ctx.Err()
	}
}

type motionVec struct {
	dx, dy float64
	on     bool
}

func encodeMilliDeg(v float64) int32 { return int32(math.Round(v * 1000)) }

// pollBoardAndLink is the single "event-timer-FIFO/network-link polling
// thread" spec.md §5 requires at no less than 1ms resolution: on each tick it
// acknowledges a pending AI interrupt, drains any queued digital-input
// events, and polls the link (bounded read deadline) for the renderer's next
// signal frame, handing it to whichever command handler is waiting.
func (s *session) pollBoardAndLink(ctx context.Context) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	masks := make([]uint16, 32)
	ticks := make([]uint32, 32)
	slow := make([]int16, 64)
	fast := make([]int16, 256)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if s.board.AnalogIn().AcknowledgeInterrupt() {
			var slowN, fastN int
			_ = s.board.AnalogIn().Unload(slow, &slowN, fast, &fastN, false)
		}

		if n, err := s.board.EventTimer().Unload(len(masks), masks, ticks); err == nil && n > 0 {
			for i := 0; i < n; i++ {
				rtlog.Default.Debug("digital input event", "mask", masks[i], "tick", ticks[i])
			}
		}

		if err := s.conn.SetDeadline(time.Now().Add(500 * time.Microsecond)); err != nil {
			rtlog.Default.Error("set link deadline", "err", err)
			return
		}
		fr, err := s.conn.ReadVariable()
		if err != nil {
			if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
				continue
			}
			rtlog.Default.Error("link read failed, link lost", "err", err)
			return
		}
		select {
		case s.signals <- sigFrame{sig: proto.Signal(fr.Tag), payload: fr.Payload}:
		default:
			rtlog.Default.Error("dropping renderer signal: handler not waiting")
		}
	}
}

// runOperatorConsole reads single raw keystrokes and maps them onto driver
// actions, for interactive use at a real console.
func (s *session) runOperatorConsole(ctx context.Context) {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		rtlog.Default.Error("console raw mode unavailable, falling back to scripted demo", "err", err)
		s.runDemoSequence(ctx)
		return
	}
	defer term.Restore(fd, old)

	fmt.Fprint(os.Stdout, "cxdriver console: [v]ideo-modes [l]oad-point-target [a]nimate [r]eward [p]ulse-seq [q]uit\r\n")
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		switch buf[0] {
		case 'v':
			s.cmdGetVideoModes(ctx)
		case 'l':
			s.cmdLoadPointTarget(ctx)
		case 'a':
			s.cmdRunAnimation(ctx)
		case 'r':
			s.cmdDeliverReward()
		case 'p':
			s.cmdPulseSequence()
		case 'q', 3: // 'q' or Ctrl-C
			s.cmdShutdown(ctx)
			return
		}
	}
}

// runDemoSequence exercises the same command surface non-interactively, used
// when stdin isn't a terminal (headless CI-style runs, or a rig without a
// console attached).
func (s *session) runDemoSequence(ctx context.Context) {
	s.cmdGetVideoModes(ctx)
	s.cmdLoadPointTarget(ctx)
	s.cmdRunAnimation(ctx)
	s.cmdDeliverReward()
	s.cmdPulseSequence()
	s.cmdShutdown(ctx)
}

func (s *session) cmdGetVideoModes(ctx context.Context) {
	if err := s.sendCommand(proto.CmdGetAllVideoModes); err != nil {
		rtlog.Default.Error("get-video-modes", "err", err)
		return
	}
	fr, err := s.awaitSignal(ctx, time.Second)
	if err != nil {
		rtlog.Default.Error("get-video-modes: no reply", "err", err)
		return
	}
	rtlog.Default.Info("video modes reply", "signal", fr.sig, "words", len(fr.payload))
}

// cmdLoadPointTarget loads the simplest possible target (a single white
// point target, no flicker) so the [a] animation demo has something to draw.
// The wire encoding here is a count of 1 followed by one minimal definition:
// [kind=0, apertureRect=0, flickerOn=0, flickerOff=0, outerWDeg*1000=0,
// outerHDeg*1000=0]; cmd/rmvideo's load-targets handler is the authority on
// the full target-definition wire format.
func (s *session) cmdLoadPointTarget(ctx context.Context) {
	if err := s.sendCommand(proto.CmdLoadTargets, 1, 0, 0, 0, 0, 0, 0); err != nil {
		rtlog.Default.Error("load-targets", "err", err)
		return
	}
	fr, err := s.awaitSignal(ctx, time.Second)
	if err != nil {
		rtlog.Default.Error("load-targets: no reply", "err", err)
		return
	}
	if fr.sig != proto.SigCmdAck {
		rtlog.Default.Error("load-targets rejected", "signal", fr.sig)
	}
}

// cmdRunAnimation starts animation, drives a short linear sweep via
// update-frame at a nominal 500Hz refresh, then stops.
func (s *session) cmdRunAnimation(ctx context.Context) {
	if err := s.sendCommand(proto.CmdStartAnimate); err != nil {
		rtlog.Default.Error("start-animate", "err", err)
		return
	}
	if fr, err := s.awaitSignal(ctx, time.Second); err != nil || fr.sig != proto.SigCmdAck {
		rtlog.Default.Error("start-animate rejected", "err", err)
		return
	}
	s.setAnimState(proto.StateAnimating)
	defer s.setAnimState(proto.StateIdle)

	const frames = 200
	const frameInterval = 2 * time.Millisecond // nominal 500Hz
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		dx := 0.01 * float64(i) // slow rightward sweep, deg/frame
		if err := s.sendUpdateFrame([]motionVec{{dx: dx, dy: 0, on: true}}); err != nil {
			rtlog.Default.Error("update-frame", "err", err)
			return
		}
	}
	if err := s.sendCommand(proto.CmdStopAnimate); err != nil {
		rtlog.Default.Error("stop-animate", "err", err)
	}
}

func (s *session) cmdDeliverReward() {
	withheld, err := s.mux.DeliverReward(1, 50, 50)
	if err != nil {
		rtlog.Default.Error("deliver-reward", "err", err)
		return
	}
	rtlog.Default.Info("reward delivered", "withheld", withheld)
}

func (s *session) cmdPulseSequence() {
	params := latch.PSGParams{
		Mode: latch.PSGTrain,
		Amp1: 2000, PW1: 200,
		InterPulseMs:   10,
		InterTrainMs:   50,
		PulsesPerTrain: 5,
		TrainsPerSeq:   1,
	}
	if err := s.psg.Configure(params); err != nil {
		rtlog.Default.Error("psg configure", "err", err)
		return
	}
	if err := s.psg.Start(); err != nil {
		rtlog.Default.Error("psg start", "err", err)
		return
	}
	time.Sleep(100 * time.Millisecond)
	if err := s.psg.Stop(); err != nil {
		rtlog.Default.Error("psg stop", "err", err)
	}
}

func (s *session) cmdShutdown(ctx context.Context) {
	if err := s.sendCommand(proto.CmdShuttingDown); err != nil {
		rtlog.Default.Error("shutting-down", "err", err)
		return
	}
	_, _ = s.awaitSignal(ctx, time.Second)
}
