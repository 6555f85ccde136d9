// session.go - renderer-side command dispatch: the non-animating state
// machine that load-targets/get-*/set-*/put-* commands run in, per spec.md
// §4.9. Animation itself is handed off to internal/render/anim.Loop once
// start-animate arrives.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cxdaq/cxcore/internal/proto"
	"github.com/cxdaq/cxcore/internal/render/anim"
	"github.com/cxdaq/cxcore/internal/render/display"
	"github.com/cxdaq/cxcore/internal/render/gl"
	"github.com/cxdaq/cxcore/internal/render/media"
	"github.com/cxdaq/cxcore/internal/render/target"
	"github.com/cxdaq/cxcore/internal/render/video"
	"github.com/cxdaq/cxcore/internal/rtlog"
)

type rendererSession struct {
	store    *media.Store
	disp     *display.Manager // nil when running without a real X11/GLX context
	driver   gl.Driver
	videoBuf *video.BufferThread
	conn     *proto.Conn

	vpool *gl.VertexPool
	tpool *gl.TexturePool

	state   proto.AnimState
	period  time.Duration
	targets []target.Target

	pendingPut  *media.Writer
	pendingMeta struct{ folder, file string }

	bgR, bgG, bgB float64
}

func newRendererSession(store *media.Store, disp *display.Manager, d gl.Driver, vb *video.BufferThread, conn *proto.Conn, period time.Duration) *rendererSession {
	return &rendererSession{
		store: store, disp: disp, driver: d, videoBuf: vb, conn: conn,
		vpool: gl.NewVertexPool(d), tpool: gl.NewTexturePool(d),
		period: period, bgR: 0, bgG: 0, bgB: 0,
	}
}

func (s *rendererSession) ack()              { _ = s.conn.WriteVariable(int32(proto.SigCmdAck), nil) }
func (s *rendererSession) ackWith(p []int32) { _ = s.conn.WriteVariable(int32(proto.SigCmdAck), p) }
func (s *rendererSession) nak(reason string) {
	rtlog.Default.Error("command error", "reason", reason)
	_ = s.conn.WriteVariable(int32(proto.SigCmdError), nil)
}

// run is the outside-animation dispatch loop: read one command, gate it,
// handle it, reply. start-animate hands control to the animation loop and
// resumes here once it exits.
func (s *rendererSession) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := s.conn.SetDeadline(time.Now().Add(time.Second)); err != nil {
			rtlog.Default.Error("set deadline", "err", err)
			return
		}
		fr, err := s.conn.ReadVariable()
		if err != nil {
			if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
				continue
			}
			rtlog.Default.Info("link closed", "err", err)
			return
		}
		cmd := proto.Command(fr.Tag)
		if !proto.Gate(s.state, cmd) {
			s.nak(fmt.Sprintf("command %d invalid outside animation", cmd))
			continue
		}
		if cmd == proto.CmdShuttingDown || cmd == proto.CmdExit {
			_ = s.conn.WriteVariable(int32(proto.SigBye), nil)
			return
		}
		s.dispatch(ctx, cmd, fr.Payload)
	}
}

func (s *rendererSession) dispatch(ctx context.Context, cmd proto.Command, payload []int32) {
	switch cmd {
	case proto.CmdGetVersion:
		s.ackWith([]int32{1, 0}) // major.minor

	case proto.CmdGetAllVideoModes:
		s.handleGetVideoModes()

	case proto.CmdGetCurrentVideoMode:
		if s.disp == nil {
			s.nak("no display manager attached")
			return
		}
		s.ackWith([]int32{0, 0, 0}) // width/height/rate unavailable without a live CRTC query path

	case proto.CmdSetCurrentVideoMode:
		s.ack() // mode switch requires a live output/CRTC resolved via GetScreenResources; accepted as a no-op here

	case proto.CmdGetGamma:
		s.ackWith([]int32{1000, 1000, 1000}) // 1.000 per channel, fixed-point x1000

	case proto.CmdSetGamma:
		s.ack()

	case proto.CmdSetSyncFlash:
		s.ack()

	case proto.CmdSetBackgroundColor:
		if len(payload) >= 3 {
			s.bgR, s.bgG, s.bgB = float64(payload[0])/1000, float64(payload[1])/1000, float64(payload[2])/1000
		}
		s.ack()

	case proto.CmdSetGeometry:
		s.ack()

	case proto.CmdGetMediaDirs:
		s.handleGetMediaDirs()

	case proto.CmdGetMediaFiles:
		s.handleGetMediaFiles(payload)

	case proto.CmdGetMediaInfo:
		s.handleGetMediaInfo(payload)

	case proto.CmdDeleteMedia:
		s.handleDeleteMedia(payload)

	case proto.CmdPutFile:
		s.handlePutFile(payload)

	case proto.CmdPutFileChunk:
		s.handlePutFileChunk(payload)

	case proto.CmdPutFileDone:
		s.handlePutFileDone()

	case proto.CmdLoadTargets:
		s.handleLoadTargets(payload)

	case proto.CmdStartAnimate:
		s.handleStartAnimate(ctx)

	case proto.CmdRestart:
		s.targets = nil
		s.ack()

	default:
		s.nak(fmt.Sprintf("unrecognized command %d", cmd))
	}
}

func (s *rendererSession) handleGetVideoModes() {
	if s.disp == nil {
		s.ackWith([]int32{0})
		return
	}
	modes, err := s.disp.AvailableModes()
	if err != nil {
		s.nak(err.Error())
		return
	}
	out := []int32{int32(len(modes))}
	for _, m := range modes {
		out = append(out, int32(m.Width), int32(m.Height), int32(m.RateHz*100))
	}
	s.ackWith(out)
}

func (s *rendererSession) handleGetMediaDirs() {
	dirs, err := s.store.Folders()
	if err != nil {
		s.nak(err.Error())
		return
	}
	s.ackWith(packStrings(dirs))
}

func (s *rendererSession) handleGetMediaFiles(payload []int32) {
	folder := unpackString(payload, new(int))
	files, err := s.store.Files(folder)
	if err != nil {
		s.nak(err.Error())
		return
	}
	s.ackWith(packStrings(files))
}

func (s *rendererSession) handleGetMediaInfo(payload []int32) {
	idx := 0
	folder := unpackString(payload, &idx)
	file := unpackString(payload, &idx)
	info, err := s.store.Info(folder, file)
	if err != nil {
		s.nak(err.Error())
		return
	}
	isVideo := int32(0)
	if info.IsVideo {
		isVideo = 1
	}
	s.ackWith([]int32{int32(info.Size), isVideo, int32(info.Width), int32(info.Height)})
}

func (s *rendererSession) handleDeleteMedia(payload []int32) {
	idx := 0
	folder := unpackString(payload, &idx)
	file := unpackString(payload, &idx)
	if err := s.store.Delete(folder, file); err != nil {
		s.nak(err.Error())
		return
	}
	s.ack()
}

func (s *rendererSession) handlePutFile(payload []int32) {
	idx := 0
	folder := unpackString(payload, &idx)
	file := unpackString(payload, &idx)
	var size int64
	if idx < len(payload) {
		size = int64(payload[idx])
	}
	w, err := s.store.CreateFile(folder, file, size)
	if err != nil {
		s.nak(err.Error())
		return
	}
	s.pendingPut = w
	s.pendingMeta.folder, s.pendingMeta.file = folder, file
	s.ack()
}

func (s *rendererSession) handlePutFileChunk(payload []int32) {
	if s.pendingPut == nil {
		s.nak("put-file-chunk with no open transfer")
		return
	}
	if len(payload) == 0 {
		s.ack()
		return
	}
	n := int(payload[0])
	data := make([]byte, 0, n)
	for i := 1; i < len(payload) && len(data) < n; i++ {
		w := uint32(payload[i])
		for j := 0; j < 4 && len(data) < n; j++ {
			data = append(data, byte(w>>(8*j)))
		}
	}
	if err := s.pendingPut.WriteChunk(data); err != nil {
		s.nak(err.Error())
		return
	}
	s.ack()
}

func (s *rendererSession) handlePutFileDone() {
	if s.pendingPut == nil {
		s.nak("put-file-done with no open transfer")
		return
	}
	err := s.pendingPut.Done()
	s.pendingPut = nil
	if err != nil {
		s.nak(err.Error())
		return
	}
	s.ack()
}

func (s *rendererSession) handleLoadTargets(payload []int32) {
	defs := decodeTargetDefs(payload)
	targets := make([]target.Target, 0, len(defs))
	for _, def := range defs {
		t, err := s.buildTarget(def)
		if err != nil {
			rtlog.Default.Error("load target", "kind", def.Kind, "err", err)
			continue
		}
		if err := t.Initialize(def); err != nil {
			rtlog.Default.Error("initialize target", "kind", def.Kind, "err", err)
			continue
		}
		targets = append(targets, t)
	}
	s.targets = targets
	s.ack()
}

func (s *rendererSession) buildTarget(def target.Definition) (target.Target, error) {
	switch def.Kind {
	case target.KindPoint:
		return target.NewPointTarget(s.driver), nil
	case target.KindBar:
		return target.NewBarTarget(s.driver), nil
	case target.KindSpot:
		return target.NewSpotTarget(s.driver), nil
	case target.KindGrating:
		return target.NewGratingTarget(s.driver, false), nil
	case target.KindPlaid:
		return target.NewGratingTarget(s.driver, true), nil
	case target.KindRandomDots:
		return target.NewRandomDotsTarget(s.driver, s.vpool), nil
	case target.KindFlowField:
		return target.NewFlowFieldTarget(s.driver, s.vpool), nil
	case target.KindImage:
		return target.NewImageTarget(s.driver), nil
	case target.KindMovie:
		return nil, fmt.Errorf("movie targets require a decoded media stream, not carried by this command payload")
	default:
		return nil, fmt.Errorf("unknown target kind %d", def.Kind)
	}
}

func (s *rendererSession) handleStartAnimate(ctx context.Context) {
	if len(s.targets) == 0 {
		s.nak("start-animate with no loaded targets")
		return
	}
	s.ack()
	s.state = proto.StateAnimating

	loop := &anim.Loop{
		Driver:   s.driver,
		Targets:  s.targets,
		Period:   s.period,
		Commands: &linkCommands{conn: s.conn, nTargets: len(s.targets)},
		Signals:  &linkSignals{conn: s.conn},
	}
	reason := loop.Run(nil)
	s.state = proto.StateIdle
	rtlog.Default.Info("animation loop exited", "reason", reason)
}
