// analog_out.go - AnalogOutput capability: the AOTimer engine plus chair helpers

package daq

import "sync"

const (
	aoMaxChannels = 16
	aoFullScale   = 10.0
	aoMinB2S      = -32768
	aoMaxB2S      = 32767
)

// AnalogOutput is the HAL capability for immediate-mode DAC updates, modeled on
// CCxAnalogOut. channel == -1 broadcasts to every channel.
type AnalogOutput interface {
	Out(channel int, code int16) error
	OutVolts(channel int, volts float64) error

	// UpdateChair converts a commanded velocity (deg/s) to a DAC code through a
	// calibrated factor, adding a one-LSB drift-compensation term whenever
	// |currPosDeg - expectedPosDeg| exceeds 0.05 degrees.
	UpdateChair(velDegPerSec, currPosDeg, expectedPosDeg float64) error
	// SettleChair drives the chair toward zero using the six-step piecewise
	// velocity profile described in spec.md §4.2.
	SettleChair(currPosDeg float64) (velDegPerSec float64, err error)
	// InitChair writes zero to all channels.
	InitChair() error

	LastError() error
}

// chairVelocityThresholds and chairVelocitySteps implement the six-step settle
// profile: magnitude decreases as |current| crosses each threshold, in degrees,
// with a dead band below the last one.
var chairVelocityThresholds = [...]float64{25, 12.5, 2.5, 1.25, 0.25, 0.125, 0.05}
var chairVelocitySteps = [...]float64{120, 60, 30, 15, 6, 2}

const chairDriftLSB = 1.0 / 32768.0 * aoFullScale
const chairDriftDeadbandDeg = 0.05

// AOTimerEngine is the real immediate-update AOTimer implementation.
type AOTimerEngine struct {
	errorHolder
	regs RegisterFile

	mu            sync.Mutex
	channels      int
	chairChannel  int // -1 if none designated
	voltsPerCode  float64
	degPerVoltVel float64 // calibration factor: deg/s of chair velocity per volt on the chair channel
}

// NewAOTimerEngine constructs the engine; chairChannel selects which output (if
// any, -1 for none) is the chair velocity channel.
func NewAOTimerEngine(regs RegisterFile, channels, chairChannel int, degPerVoltVel float64) *AOTimerEngine {
	return &AOTimerEngine{
		errorHolder:   errorHolder{deviceName: "AOTimer"},
		regs:          regs,
		channels:      channels,
		chairChannel:  chairChannel,
		voltsPerCode:  aoFullScale / 32768.0,
		degPerVoltVel: degPerVoltVel,
	}
}

func (e *AOTimerEngine) Out(channel int, code int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if channel < -1 || channel >= e.channels {
		e.setError(&DeviceError{e.deviceName, "channel out of range"})
		return e.lastErr
	}
	if channel == -1 {
		for ch := 0; ch < e.channels; ch++ {
			if err := e.regs.WriteReg(regAOChannelBase+uint16(ch)*2, uint16(code)); err != nil {
				e.setError(&DeviceError{e.deviceName, "write failed"})
				return e.lastErr
			}
		}
		return nil
	}
	if err := e.regs.WriteReg(regAOChannelBase+uint16(channel)*2, uint16(code)); err != nil {
		e.setError(&DeviceError{e.deviceName, "write failed"})
		return e.lastErr
	}
	e.clearError()
	return nil
}

func (e *AOTimerEngine) OutVolts(channel int, volts float64) error {
	return e.Out(channel, clipToB2S(volts, e.voltsPerCode))
}

func clipToB2S(volts, voltsPerCode float64) int16 {
	if volts > aoFullScale {
		volts = aoFullScale
	}
	if volts < -aoFullScale {
		volts = -aoFullScale
	}
	code := int(volts / voltsPerCode)
	if code > aoMaxB2S {
		code = aoMaxB2S
	}
	if code < aoMinB2S {
		code = aoMinB2S
	}
	return int16(code)
}

func (e *AOTimerEngine) UpdateChair(velDegPerSec, currPosDeg, expectedPosDeg float64) error {
	if e.chairChannel < 0 {
		return &DeviceError{e.deviceName, "no chair channel configured"}
	}
	volts := velDegPerSec / e.degPerVoltVel
	if abs(currPosDeg-expectedPosDeg) > chairDriftDeadbandDeg {
		if currPosDeg < expectedPosDeg {
			volts += chairDriftLSB
		} else {
			volts -= chairDriftLSB
		}
	}
	return e.OutVolts(e.chairChannel, volts)
}

// SettleChair returns the velocity command it applied, per the six-threshold
// piecewise-constant profile, with a dead band below the smallest threshold.
func (e *AOTimerEngine) SettleChair(currPosDeg float64) (float64, error) {
	if e.chairChannel < 0 {
		return 0, &DeviceError{e.deviceName, "no chair channel configured"}
	}
	mag := abs(currPosDeg)
	if mag < chairVelocityThresholds[len(chairVelocityThresholds)-1] {
		if err := e.OutVolts(e.chairChannel, 0); err != nil {
			return 0, err
		}
		return 0, nil
	}
	step := chairVelocitySteps[len(chairVelocitySteps)-1]
	for i, thresh := range chairVelocityThresholds[:len(chairVelocityThresholds)-1] {
		if mag >= thresh {
			step = chairVelocitySteps[i]
			break
		}
	}
	vel := step
	if currPosDeg > 0 {
		vel = -step
	}
	if err := e.UpdateChair(vel, currPosDeg, currPosDeg); err != nil {
		return 0, err
	}
	return vel, nil
}

func (e *AOTimerEngine) InitChair() error {
	return e.Out(-1, 0)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// NullAnalogOutput is the "no device installed" placeholder.
type NullAnalogOutput struct{}

func (NullAnalogOutput) Out(int, int16) error                        { return ErrDeviceUnavailable }
func (NullAnalogOutput) OutVolts(int, float64) error                 { return ErrDeviceUnavailable }
func (NullAnalogOutput) UpdateChair(float64, float64, float64) error { return ErrDeviceUnavailable }
func (NullAnalogOutput) SettleChair(float64) (float64, error)        { return 0, ErrDeviceUnavailable }
func (NullAnalogOutput) InitChair() error                            { return ErrDeviceUnavailable }
func (NullAnalogOutput) LastError() error                            { return ErrDeviceUnavailable }

var _ AnalogOutput = (*AOTimerEngine)(nil)
var _ AnalogOutput = NullAnalogOutput{}
