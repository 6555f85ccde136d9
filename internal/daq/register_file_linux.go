//go:build linux

// register_file_linux.go - mmap'd PCIe BAR register access
//
// Grounded in the teacher's direct-hardware-access idiom (cgo X11/GLX in
// video_backend_opengl.go, cgo ALSA in audio_backend_alsa.go): this system also
// talks straight to memory-mapped hardware rather than going through an OS driver
// abstraction. Here the "native" layer is golang.org/x/sys/unix.Mmap over a
// resource file exposed by the kernel's UIO/PCI sysfs framework, rather than cgo,
// since no vendor C SDK is available for this board in the example pack.

package daq

import (
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MmapRegisterFile maps a PCIe BAR resource file (e.g.
// /sys/bus/pci/devices/.../resource0) and exposes it as a little-endian 16-bit
// register space.
type MmapRegisterFile struct {
	f    *os.File
	mem  []byte
	name string
}

// OpenMmapRegisterFile mmaps length bytes of the given resource file.
func OpenMmapRegisterFile(path string, length int) (*MmapRegisterFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("daq: open %s: %w", path, err)
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("daq: mmap %s: %w", path, err)
	}
	return &MmapRegisterFile{f: f, mem: mem, name: path}, nil
}

func (m *MmapRegisterFile) ReadReg(reg uint16) (uint16, error) {
	off := int(reg)
	if off+2 > len(m.mem) {
		return 0, fmt.Errorf("daq: register %#04x out of bounds", reg)
	}
	return binary.LittleEndian.Uint16(m.mem[off : off+2]), nil
}

func (m *MmapRegisterFile) WriteReg(reg uint16, value uint16) error {
	off := int(reg)
	if off+2 > len(m.mem) {
		return fmt.Errorf("daq: register %#04x out of bounds", reg)
	}
	binary.LittleEndian.PutUint16(m.mem[off:off+2], value)
	return nil
}

func (m *MmapRegisterFile) String() string { return "daq.MmapRegisterFile(" + m.name + ")" }

// Close unmaps the register window and closes the resource file.
func (m *MmapRegisterFile) Close() error {
	err := unix.Munmap(m.mem)
	m.f.Close()
	return err
}

var _ RegisterFile = (*MmapRegisterFile)(nil)
