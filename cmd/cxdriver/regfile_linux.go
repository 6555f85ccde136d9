//go:build linux

package main

import "github.com/cxdaq/cxcore/internal/daq"

// registerWindowBytes covers the AI/AO/ET register windows laid out in
// internal/daq/registers.go.
const registerWindowBytes = 0x0300

// openRegisterFile mmaps the PCIe BAR resource file naming the physical
// board. An empty path means "no board": callers get a null-object board.
func openRegisterFile(path string) (daq.RegisterFile, error) {
	if path == "" {
		return nil, nil
	}
	return daq.OpenMmapRegisterFile(path, registerWindowBytes)
}
