//go:build !linux

package display

import (
	"fmt"

	"github.com/cxdaq/cxcore/internal/render/gl"
)

// CreateGLContext is unavailable off Linux; use gl.NewFakeDriver directly
// for headless development and tests on other platforms.
func (m *Manager) CreateGLContext(preferStereo bool) (gl.Driver, error) {
	return nil, fmt.Errorf("display: GLX context creation requires linux")
}
