// psg.go - electrical pulse-sequence generator (PSG/SGM) protocol
//
// Grounded in _examples/original_source/src/cxdriver/devices/cxeventtimer.h's
// SGM_* parameter-address constants: the PSG is addressed through device 0x5,
// with DO<11..8> carrying a parameter address and DO<7..0> its encoded value.

package latch

import (
	"fmt"
	"time"
)

// PSGMode enumerates the six valid pulse-sequence modes (spec.md §4.3).
type PSGMode int

const (
	PSGNoop PSGMode = iota
	PSGSingle
	PSGDual
	PSGBiphasic
	PSGTrain
	PSGBiphasicTrain
)

// parameter addresses within device 0x5's data field (DO<11..8>), following the
// original's SGM_* layout.
const (
	sgmAddrMode uint16 = 0x8 << 8
	sgmAddrAmp1 uint16 = 0x6 << 8
	sgmAddrPW1  uint16 = 0x4 << 8
	sgmAddrAmp2 uint16 = 0x7 << 8
	sgmAddrPW2  uint16 = 0x5 << 8
	sgmAddrNP   uint16 = 0x1 << 8
	sgmAddrNT   uint16 = 0x0 << 8
	sgmAddrIPI  uint16 = 0x3 << 8
	sgmAddrITI  uint16 = 0x2 << 8
	sgmAddrCtrl uint16 = 0xF << 8

	sgmCtrlStop  uint16 = 0x9E
	sgmCtrlStart uint16 = 0x3E
	sgmCtrlReady uint16 = 0x1E // "ready, not running" / ext-trig-disabled value
	sgmCtrlExtOn uint16 = 0x1F
)

// PSGParams is the unencoded parameter record for a pulse sequence, matching the
// CSGMParms fields in the original (spec.md §3 "Pulse-sequence generator state").
type PSGParams struct {
	Mode           PSGMode
	ExternalTrig   bool
	Amp1, Amp2     float64 // mV, -10240..10160
	PW1, PW2       int     // us, 50..2500
	InterPulseMs   int     // 1..250
	InterTrainMs   int     // 10..2500
	PulsesPerTrain int     // 1..250
	TrainsPerSeq   int     // 1..250
}

// PSGState tracks {idle, programmed, running} plus the currently-cached
// parameter record (spec.md §3).
type PSGState int

const (
	PSGIdle PSGState = iota
	PSGProgrammed
	PSGRunning
)

// PSG drives the pulse-sequence generator through a Mux.
type PSG struct {
	mux     *Mux
	state   PSGState
	params  PSGParams
	sleepFn func(time.Duration)
}

// NewPSG constructs a PSG controller layered on the given multiplexer.
func NewPSG(mux *Mux) *PSG {
	return &PSG{mux: mux, sleepFn: time.Sleep}
}

func encodeAmp(mv float64) (byte, error) {
	if mv < -10240 || mv > 10160 {
		return 0, fmt.Errorf("psg: amplitude %gmV out of range", mv)
	}
	return byte((mv + 10240) / 80), nil // 0..255, resolution 80mV matching the 8-bit span over [-10240,10160]
}

func encodePulseWidth(us int) (byte, error) {
	if us < 50 || us > 2500 {
		return 0, fmt.Errorf("psg: pulse width %dus out of range", us)
	}
	return byte(us / 10), nil // 5..250, resolution 10us
}

func encodeIntertrain(ms int) (byte, error) {
	if ms < 10 || ms > 2500 {
		return 0, fmt.Errorf("psg: intertrain interval %dms out of range", ms)
	}
	return byte(ms / 10), nil // 1..250, resolution 10ms
}

func encodeCount(n int) (byte, error) {
	if n < 1 || n > 250 {
		return 0, fmt.Errorf("psg: count %d out of range", n)
	}
	return byte(n), nil
}

func encodeInterpulse(ms int) (byte, error) {
	if ms < 1 || ms > 250 {
		return 0, fmt.Errorf("psg: interpulse interval %dms out of range", ms)
	}
	return byte(ms), nil
}

// modeUsesField reports whether a given parameter is relevant to mode, so
// Configure can skip fields the selected mode doesn't use, per spec.md §4.3.
func modeUsesField(mode PSGMode, field string) bool {
	switch field {
	case "amp1", "pw1":
		return true // every mode uses pulse 1
	case "amp2", "pw2":
		return mode == PSGDual || mode == PSGBiphasic || mode == PSGBiphasicTrain
	case "ipi":
		return mode == PSGDual || mode == PSGBiphasic || mode == PSGTrain || mode == PSGBiphasicTrain
	case "nPulses", "nTrains", "iti":
		return mode == PSGTrain || mode == PSGBiphasicTrain
	}
	return false
}

// Configure validates ranges, encodes each field, and writes parameters in the
// strict order {mode, amp1, pw1, amp2, pw2, nPulses, nTrains, ipi, iti} through
// the latched protocol, with a 5ms sleep between writes for hardware setup time.
func (p *PSG) Configure(params PSGParams) error {
	if params.Mode < PSGNoop || params.Mode > PSGBiphasicTrain {
		return fmt.Errorf("psg: invalid mode %d", params.Mode)
	}

	type step struct {
		name string
		addr uint16
		enc  func() (byte, error)
	}
	steps := []step{
		{"mode", sgmAddrMode, func() (byte, error) { return byte(params.Mode), nil }},
		{"amp1", sgmAddrAmp1, func() (byte, error) { return encodeAmp(params.Amp1) }},
		{"pw1", sgmAddrPW1, func() (byte, error) { return encodePulseWidth(params.PW1) }},
		{"amp2", sgmAddrAmp2, func() (byte, error) { return encodeAmp(params.Amp2) }},
		{"pw2", sgmAddrPW2, func() (byte, error) { return encodePulseWidth(params.PW2) }},
		{"nPulses", sgmAddrNP, func() (byte, error) { return encodeCount(params.PulsesPerTrain) }},
		{"nTrains", sgmAddrNT, func() (byte, error) { return encodeCount(params.TrainsPerSeq) }},
		{"ipi", sgmAddrIPI, func() (byte, error) { return encodeInterpulse(params.InterPulseMs) }},
		{"iti", sgmAddrITI, func() (byte, error) { return encodeIntertrain(params.InterTrainMs) }},
	}

	for i, s := range steps {
		if s.name != "mode" && !modeUsesField(params.Mode, s.name) {
			continue
		}
		val, err := s.enc()
		if err != nil {
			return err
		}
		if _, err := p.mux.write(addrSGM, s.addr|uint16(val)); err != nil {
			return err
		}
		if i < len(steps)-1 {
			p.sleepFn(5 * time.Millisecond)
		}
	}

	ctrl := sgmCtrlReady
	if params.ExternalTrig {
		ctrl = sgmCtrlExtOn
	}
	if _, err := p.mux.write(addrSGM, sgmAddrCtrl|ctrl); err != nil {
		return err
	}

	p.params = params
	p.state = PSGProgrammed
	return nil
}

// Start writes the software-start bit.
func (p *PSG) Start() error {
	if p.state != PSGProgrammed {
		return fmt.Errorf("psg: start requires a programmed sequence")
	}
	if _, err := p.mux.write(addrSGM, sgmAddrCtrl|sgmCtrlStart); err != nil {
		return err
	}
	p.state = PSGRunning
	return nil
}

// Stop writes a stop command and, after 5ms, restores the disabled-external-
// trigger state.
func (p *PSG) Stop() error {
	if _, err := p.mux.write(addrSGM, sgmAddrCtrl|sgmCtrlStop); err != nil {
		return err
	}
	p.sleepFn(5 * time.Millisecond)
	if _, err := p.mux.write(addrSGM, sgmAddrCtrl|sgmCtrlReady); err != nil {
		return err
	}
	p.state = PSGProgrammed
	return nil
}

// Reset stops the sequence and reverts cached state to noop/idle.
func (p *PSG) Reset() error {
	if err := p.Stop(); err != nil {
		return err
	}
	p.params = PSGParams{Mode: PSGNoop}
	p.state = PSGIdle
	return nil
}

// State returns the PSG's current lifecycle state.
func (p *PSG) State() PSGState { return p.state }

// Params returns the last-configured parameter record.
func (p *PSG) Params() PSGParams { return p.params }
