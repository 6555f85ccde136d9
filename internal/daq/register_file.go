// register_file.go - memory-mapped register access for the DAQ board

package daq

import (
	"fmt"
	"sync"
)

// RegisterFile is the narrow read/write surface every DAQ engine programs through.
// It is shaped like periph.io/x/conn/v3/mmr.Dev16's ReadUint16/WriteUint16 pair
// (a 16-bit register space addressed by register number, little-endian) but
// declared as a plain interface rather than embedding that concrete struct type.
// A real board backs this with an mmap'd PCIe BAR; tests back it with
// FakeRegisterFile.
type RegisterFile interface {
	ReadReg(reg uint16) (uint16, error)
	WriteReg(reg uint16, value uint16) error
}

// FakeRegisterFile is an in-memory RegisterFile used by tests. (A board opened
// with no register file at all gets the Null* placeholders instead, not this
// fake.) It is not a hardware model of any particular engine: it only stores the
// last value written to each register and returns it on read.
type FakeRegisterFile struct {
	mu   sync.Mutex
	regs map[uint16]uint16
}

// NewFakeRegisterFile returns an empty fake register space.
func NewFakeRegisterFile() *FakeRegisterFile {
	return &FakeRegisterFile{regs: make(map[uint16]uint16)}
}

func (f *FakeRegisterFile) ReadReg(reg uint16) (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[reg], nil
}

func (f *FakeRegisterFile) WriteReg(reg uint16, value uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs[reg] = value
	return nil
}

func (f *FakeRegisterFile) String() string { return "daq.FakeRegisterFile" }

// Close is a no-op: there is no real resource backing a fake register space.
func (f *FakeRegisterFile) Close() error { return nil }

var _ RegisterFile = (*FakeRegisterFile)(nil)

// ErrDeviceUnavailable is returned by every operation on a null-object HAL
// implementation, matching CCxNullAI/CCxNullAO/CCxNullEvtTmr's EMSG_DEVNOTAVAIL.
var ErrDeviceUnavailable = fmt.Errorf("daq: device not available")
