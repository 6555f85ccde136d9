// board.go - device manager: acquires the physical board and owns the three
// capability handles that all share its register mapping.
//
// Grounded in _examples/original_source/src/cxdriver/cxdevicemgr.cpp (CCxDeviceMgr),
// generalized per spec.md's Design Notes: "one owner type that at construction
// hands out three borrowed capability handles whose lifetimes are tied to the
// owner." Missing devices are represented by the Null* placeholders so callers
// never branch on presence.

package daq

import "fmt"

// DeviceDescriptor identifies a PCIe device by vendor/product IDs and an instance
// ordinal, per spec.md §3. In this pure-Go rewrite it also carries the mapped
// register base and last-error text directly (no separate native handle type).
type DeviceDescriptor struct {
	VendorID  uint16
	ProductID uint16
	Instance  int
	BaseAddr  uintptr
	IRQVector int
	LastError string
}

// TimerMode selects which EventTimer variant Board.EventTimer hands out.
type TimerMode int

const (
	TimerModeMultiplexed TimerMode = iota // default: latched-device multiplexer (spec.md §4.3)
	TimerModeAlternate                    // dedicated-line rig, no multiplexer (spec.md §9 Open Question)
)

// Board is the multifunction PCIe board owner. Construction acquires the
// physical device (or fails over to an all-null configuration); thereafter the
// three capability handles are fixed for the board's lifetime.
type Board struct {
	desc DeviceDescriptor

	ai AnalogInput
	ao AnalogOutput
	et EventTimer
}

// BoardConfig selects how many AO channels exist, which (if any) is the chair
// velocity channel, its calibration factor, and which EventTimer variant to use.
type BoardConfig struct {
	AOChannels      int
	ChairChannel    int // -1 for none
	ChairDegPerVolt float64
	TimerMode       TimerMode
}

// OpenBoard acquires the board described by desc. regs is nil to force an
// all-null board (used when no hardware is present, or in tests); a non-nil regs
// wires up the three real engines sharing that register file.
func OpenBoard(desc DeviceDescriptor, regs RegisterFile, cfg BoardConfig) (*Board, error) {
	b := &Board{desc: desc}
	if regs == nil {
		b.ai = NullAnalogInput{}
		b.ao = NullAnalogOutput{}
		b.et = NullEventTimer{}
		return b, nil
	}

	b.ai = NewAITimerEngine(regs)
	b.ao = NewAOTimerEngine(regs, cfg.AOChannels, cfg.ChairChannel, cfg.ChairDegPerVolt)
	switch cfg.TimerMode {
	case TimerModeAlternate:
		b.et = NewEventTimerEngineAlt(regs)
	default:
		b.et = NewEventTimerEngine(regs)
	}
	return b, nil
}

// AnalogIn returns the board's analog-input capability handle.
func (b *Board) AnalogIn() AnalogInput { return b.ai }

// AnalogOut returns the board's analog-output capability handle.
func (b *Board) AnalogOut() AnalogOutput { return b.ao }

// EventTimer returns the board's digital event-timer capability handle.
func (b *Board) EventTimer() EventTimer { return b.et }

// Descriptor returns the device descriptor this board was opened with.
func (b *Board) Descriptor() DeviceDescriptor { return b.desc }

func (b *Board) String() string {
	return fmt.Sprintf("daq.Board{vendor=%#04x product=%#04x instance=%d}", b.desc.VendorID, b.desc.ProductID, b.desc.Instance)
}
