// latch.go - the latched-device multiplexer protocol layered atop EventTimer.SetDO
//
// Grounded in _examples/original_source/src/cxdriver/devices/cxeventtimer.{h,cpp}
// (CCxEventTimer's DD_MARKERS/DD_ADJREWARD/DD_SGM/DD_MISC/DD_WRITER addressing).
// This is a software-layered multiplexer, not a hardware function: Mux owns a
// shadow copy of each latched device's last-written data and emits the correct
// full 16-bit port value on every write, per spec.md's Design Notes ("Latched
// multiplexer state").

package latch

import (
	"math/rand"

	"github.com/cxdaq/cxcore/internal/daq"
)

// Device addresses: the upper nibble (bits 15-12) of the DIO port.
const (
	addrMarkers uint16 = 0x1 << 12
	addrReward  uint16 = 0x4 << 12
	addrSGM     uint16 = 0x5 << 12
	addrMisc    uint16 = 0x6 << 12
	addrWriter  uint16 = 0x7 << 12
	dataMask    uint16 = 0x0FFF
)

// MiscState holds the two independently-mutable bits of the "miscellaneous"
// latched device (spec.md §4.3 device 0x6).
type MiscState struct {
	Fixation    bool
	AudioReward bool
}

func (m MiscState) encode() uint16 {
	var v uint16
	if m.Fixation {
		v |= 1 << 0
	}
	if m.AudioReward {
		v |= 1 << 1
	}
	return v
}

// Mux is the software multiplexer: it shadows the last-written data for each
// latched device and issues addressed writes through an daq.EventTimer's SetDO.
type Mux struct {
	et   daq.EventTimer
	misc MiscState
	rng  *rand.Rand

	// scheduleAudioOff is a test/production hook invoked to schedule lowering the
	// audio-reward bit after a delay; in production this arms a one-shot timer.
	scheduleAudioOff func(ms int, fn func())
}

// NewMux constructs a multiplexer layered on the given event timer.
func NewMux(et daq.EventTimer, rng *rand.Rand, scheduleAudioOff func(ms int, fn func())) *Mux {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Mux{et: et, rng: rng, scheduleAudioOff: scheduleAudioOff}
}

func (m *Mux) write(addr, data uint16) (uint16, error) {
	return m.et.SetDO(addr | (data & dataMask))
}

// TriggerMarkers issues two back-to-back latched writes (raise then lower) to
// deliver simultaneous positive pulses on the selected 12 marker lines.
func (m *Mux) TriggerMarkers(mask12 uint16) error {
	if _, err := m.write(addrMarkers, mask12); err != nil {
		return err
	}
	_, err := m.write(addrMarkers, 0)
	return err
}

// WriteChar transmits one 8-bit ASCII byte through the character writer device.
func (m *Mux) WriteChar(b byte) error {
	_, err := m.write(addrWriter, uint16(b))
	return err
}

// SetFixationStatus mutates only the fixation bit of the miscellaneous device,
// preserving the current audio-reward bit.
func (m *Mux) SetFixationStatus(on bool) error {
	m.misc.Fixation = on
	_, err := m.write(addrMisc, m.misc.encode())
	return err
}

// SetAudioRewardBit mutates only the audio-reward bit, preserving fixation.
func (m *Mux) SetAudioRewardBit(on bool) error {
	m.misc.AudioReward = on
	_, err := m.write(addrMisc, m.misc.encode())
	return err
}

// RewardLimits bound the three DeliverReward parameters (spec.md §4.3).
const (
	MinVariableRatio        = 1
	MaxVariableRatio        = 10
	MaxAdjustableDurationMs = 4000
)

func clipInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DeliverReward implements the five-step reward-delivery sequence of spec.md
// §4.3, including variable-ratio withholding, the adjustable-duration write to
// device 0x4, the audio-reward pulse on device 0x6, and the character-writer
// acknowledgement.
func (m *Mux) DeliverReward(variableRatio, adjustableDurationMs, audioDurationMs int) (withheld bool, err error) {
	variableRatio = clipInt(variableRatio, MinVariableRatio, MaxVariableRatio)
	adjustableDurationMs = clipInt(adjustableDurationMs, 0, MaxAdjustableDurationMs)
	audioDurationMs = clipInt(audioDurationMs, 0, MaxAdjustableDurationMs)

	withheld = adjustableDurationMs <= 0
	if !withheld && variableRatio > 1 {
		withheld = m.rng.Intn(variableRatio) == 0
	}

	if !withheld {
		if _, err = m.write(addrReward, uint16(adjustableDurationMs)); err != nil {
			return withheld, err
		}
	}

	if audioDurationMs > 0 {
		if err = m.SetAudioRewardBit(true); err != nil {
			return withheld, err
		}
		if m.scheduleAudioOff != nil {
			m.scheduleAudioOff(audioDurationMs, func() { _ = m.SetAudioRewardBit(false) })
		}
	}

	if !withheld {
		if err = m.WriteChar(0x05); err != nil {
			return withheld, err
		}
		for _, c := range itoaDigits(adjustableDurationMs) {
			if err = m.WriteChar(byte(c)); err != nil {
				return withheld, err
			}
		}
		err = m.WriteChar(0)
	}
	return withheld, err
}

func itoaDigits(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
