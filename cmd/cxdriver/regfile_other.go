//go:build !linux

package main

import (
	"fmt"

	"github.com/cxdaq/cxcore/internal/daq"
)

// openRegisterFile: mmap'd BAR access is Linux-only. An empty path still
// yields a null board on any platform, which is how this binary runs in
// development off the target rig.
func openRegisterFile(path string) (daq.RegisterFile, error) {
	if path == "" {
		return nil, nil
	}
	return nil, fmt.Errorf("cxdriver: mmap'd board access requires linux (board resource %q given)", path)
}
