// main.go - rmvideo entry point: display/context setup, video buffer
// thread, and either a driver link session or a local test sequence.
//
// Follows the teacher's flat main.go shape: acquire resources in order,
// fail fast with a diagnostic on any step that can't be skipped, hand off to
// the long-running loop last.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cxdaq/cxcore/internal/proto"
	"github.com/cxdaq/cxcore/internal/render/display"
	"github.com/cxdaq/cxcore/internal/render/gl"
	"github.com/cxdaq/cxcore/internal/render/media"
	"github.com/cxdaq/cxcore/internal/render/video"
	"github.com/cxdaq/cxcore/internal/rtcfg"
	"github.com/cxdaq/cxcore/internal/rtlog"
)

func main() {
	cfg := rtcfg.ParseRendererConfig(os.Args[1:])
	rtlog.Default.Info("rmvideo starting", "listen", cfg.ListenAddr, "connect", cfg.Connect, "media", cfg.MediaRoot)

	store, err := media.New(cfg.MediaRoot)
	if err != nil {
		rtlog.Fatal("open media store", "err", err)
	}

	driver, disp, period := acquireDisplay()
	defer func() {
		if disp != nil {
			_ = disp.Close()
		} else {
			_ = driver.Close()
		}
	}()

	vb := video.NewBufferThread()
	vb.Start()
	defer vb.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		rtlog.Default.Info("rmvideo received termination signal")
		cancel()
	}()

	if !cfg.Connect {
		vpool := gl.NewVertexPool(driver)
		runLocalTestSequence(cfg.TestSeq, driver, vpool, period)
		return
	}

	server, err := proto.Listen(cfg.ListenAddr)
	if err != nil {
		rtlog.Fatal("listen", "err", err)
	}
	defer server.Close()
	rtlog.Default.Info("waiting for driver connection", "addr", server.Addr())

	conn, err := server.AcceptOne(ctx)
	if err != nil {
		rtlog.Fatal("accept driver connection", "err", err)
	}
	defer conn.Close()
	rtlog.Default.Info("driver connected")

	sess := newRendererSession(store, disp, driver, vb, conn, period)
	sess.run(ctx)
	rtlog.Default.Info("rmvideo exiting")
}

// acquireDisplay opens the real X11/RandR/GLX stack when available and
// falls back to a headless FakeDriver otherwise (off Linux, or without an
// X server), so the rest of the pipeline never has to special-case absence
// of real hardware.
func acquireDisplay() (gl.Driver, *display.Manager, time.Duration) {
	defaultPeriod := time.Second / 60

	disp, err := display.Open()
	if err != nil {
		rtlog.Default.Error("display manager unavailable, running headless", "err", err)
		return gl.NewFakeDriver(), nil, defaultPeriod
	}

	modes, err := disp.AvailableModes()
	if err != nil {
		rtlog.Default.Error("enumerate video modes", "err", err)
		_ = disp.Close()
		return gl.NewFakeDriver(), nil, defaultPeriod
	}
	accept := display.Acceptable(modes)
	if len(accept) == 0 {
		rtlog.Default.Error("no acceptable video mode found, running headless")
		_ = disp.Close()
		return gl.NewFakeDriver(), nil, defaultPeriod
	}
	current := accept[0]
	if err := disp.EnsureAcceptableMode(current); err != nil {
		rtlog.Default.Error("ensure acceptable mode", "err", err)
		_ = disp.Close()
		return gl.NewFakeDriver(), nil, defaultPeriod
	}

	drv, err := disp.CreateGLContext(true)
	if err != nil {
		rtlog.Default.Error("create GL context, running headless", "err", err)
		_ = disp.Close()
		return gl.NewFakeDriver(), nil, defaultPeriod
	}

	period, err := display.MeasureRefreshPeriod(drv, 0, 0)
	if err != nil {
		rtlog.Default.Error("measure refresh period, using nominal 60Hz", "err", err)
		period = defaultPeriod
	}
	return drv, disp, period
}
