//go:build linux

package display

import "github.com/cxdaq/cxcore/internal/render/gl"

// CreateGLContext creates the production GLX driver sized to the current
// mode, preferring a stereo visual and falling back to mono. GLX context
// creation is Linux-only (spec.md's Non-goals exclude cross-platform display
// portability); mode enumeration in display.go stays portable pure-Go xgb.
func (m *Manager) CreateGLContext(preferStereo bool) (gl.Driver, error) {
	d, err := gl.NewGLXDriver(int(m.current.Width), int(m.current.Height), preferStereo)
	if err != nil {
		return nil, err
	}
	m.driver = d
	return d, nil
}
