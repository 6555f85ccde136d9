// analog_in.go - AnalogInput capability: the AITimer engine

package daq

import (
	"sync"
	"time"
)

// Bipolar full-scale range assumed for every AI channel (spec.md §3).
const (
	aiMinB2S    = -32768
	aiMaxB2S    = 32767
	aiFullScale = 10.0 // volts, bipolar +/-10V
)

// AIConfig is the validated configuration accepted by AnalogInput.Configure.
type AIConfig struct {
	ChannelCount    int // >= 1
	ScanIntervalUs  int // >= 1000
	FastChannel     int // index into [0, ChannelCount), or -1 for "none"
	InterruptEnable bool
}

// AnalogInput is the HAL capability for continuous multi-channel sampling, modeled
// on CCxAnalogIn in the original driver. A device-unavailable placeholder
// (NullAnalogInput) implements the same interface so callers never branch on
// whether a physical board was found.
type AnalogInput interface {
	Configure(cfg AIConfig) error
	Start() error
	Stop() error
	// Unload drains the slow and fast streams. slowDst/fastDst are filled in place;
	// *slowCount/*fastCount report how many samples were written. If block is true,
	// Unload waits (bounded by the timeout described in spec.md §4.1) for at least
	// one full slow scan.
	Unload(slowDst []int16, slowCount *int, fastDst []int16, fastCount *int, block bool) error
	IsEmpty() bool
	AcknowledgeInterrupt() bool

	GetFIFOSize() int
	CanCalibrate() bool
	Calibrate() error
	ToVolts(code int16) float64
	ToRaw(volts float64) int16
	NearestVolts(volts float64) float64
	LastError() error
}

// aiFIFODepth is the onboard sample FIFO depth in samples; spec.md requires it
// exceed one slow scan plus one fast burst, checked in Configure.
const aiFIFODepth = 8192

// AITimerEngine is the real multi-rate AITimer implementation: exactly ChannelCount
// slow samples per ScanIntervalUs, plus (if FastChannel is set) 25kHz "ghost mode"
// sampling of that one channel interleaved between slow scans.
type AITimerEngine struct {
	errorHolder
	regs RegisterFile

	mu       sync.Mutex
	cfg      AIConfig
	armed    bool
	running  bool
	b2sScale float64 // volts per LSB

	slowFIFO []int16 // chronological, intra-scan-ordered
	fastFIFO []int16

	scanInterval time.Duration
}

const fastChannelRateHz = 25000

// NewAITimerEngine constructs the engine bound to the AI register window.
func NewAITimerEngine(regs RegisterFile) *AITimerEngine {
	return &AITimerEngine{
		errorHolder: errorHolder{deviceName: "AITimer"},
		regs:        regs,
		b2sScale:    aiFullScale / 32768.0,
		cfg:         AIConfig{FastChannel: -1},
	}
}

// Configure programs the scan set. See spec.md §4.1 for the full contract.
func (e *AITimerEngine) Configure(cfg AIConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cfg.ChannelCount < 1 || cfg.ChannelCount > 32 {
		e.setError(&DeviceError{e.deviceName, "channel count out of range"})
		return e.lastErr
	}
	if cfg.ScanIntervalUs < 1000 {
		e.setError(&DeviceError{e.deviceName, "scan interval below 1000us"})
		return e.lastErr
	}
	if cfg.FastChannel >= cfg.ChannelCount {
		e.setError(&DeviceError{e.deviceName, "fast channel index out of range"})
		return e.lastErr
	}

	fastBurst := 0
	if cfg.FastChannel >= 0 {
		// Number of 25kHz ticks that occur during one slow scan interval.
		fastBurst = int(float64(cfg.ScanIntervalUs) / 1e6 * fastChannelRateHz)
		if fastBurst < 1 {
			fastBurst = 1
		}
	}
	if cfg.ChannelCount+fastBurst >= aiFIFODepth {
		e.setError(&DeviceError{e.deviceName, "FIFO too shallow for requested scan"})
		return e.lastErr
	}

	e.cfg = cfg
	e.scanInterval = time.Duration(cfg.ScanIntervalUs) * time.Microsecond
	e.slowFIFO = e.slowFIFO[:0]
	e.fastFIFO = e.fastFIFO[:0]
	e.armed = true
	e.running = false
	e.clearError()

	// Program mode/load registers: scan-set size and intra-scan clock divisor.
	_ = e.regs.WriteReg(regAIModeLoad, uint16(cfg.ChannelCount))
	_ = e.regs.WriteReg(regAIScanInterval, uint16(cfg.ScanIntervalUs))
	if cfg.InterruptEnable {
		_ = e.regs.WriteReg(regAIIntEnable, 1)
	} else {
		_ = e.regs.WriteReg(regAIIntEnable, 0)
	}
	return nil
}

// Start issues a single Start1 strobe. Must return in tens of microseconds.
func (e *AITimerEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.armed {
		e.setError(&DeviceError{e.deviceName, "start before configure"})
		return e.lastErr
	}
	if err := e.regs.WriteReg(regAIStart1, 1); err != nil {
		e.setError(&DeviceError{e.deviceName, "start1 strobe failed"})
		return e.lastErr
	}
	e.running = true
	return nil
}

func (e *AITimerEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	return e.regs.WriteReg(regAIStart1, 0)
}

// AcknowledgeInterrupt is the ISR-safe path: read AI Interrupt Status, and if the
// start-of-scan bit is set, strobe Interrupt_2 to acknowledge and re-enable.
// Must not block and must not touch the DIO port.
func (e *AITimerEngine) AcknowledgeInterrupt() bool {
	status, err := e.regs.ReadReg(regAIIntStatus)
	if err != nil {
		return false
	}
	if status&aiStartOfScanBit == 0 {
		return false
	}
	_ = e.regs.WriteReg(regAIInterrupt2, aiAckStrobe)
	return true
}

// PushSample is test/simulation-side injection of one converted sample into the
// onboard FIFO, used by fakes that stand in for the physical converter.
func (e *AITimerEngine) PushSample(slow []int16, fast []int16) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.slowFIFO)+len(slow) > aiFIFODepth {
		e.setError(ErrOverflow)
		return
	}
	e.slowFIFO = append(e.slowFIFO, slow...)
	e.fastFIFO = append(e.fastFIFO, fast...)
}

// Unload drains both streams in a single pass. See spec.md §4.1.
func (e *AITimerEngine) Unload(slowDst []int16, slowCount *int, fastDst []int16, fastCount *int, block bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lastErr != nil {
		*slowCount, *fastCount = 0, 0
		return e.lastErr
	}

	if block && len(e.slowFIFO) < e.cfg.ChannelCount {
		timeout := time.Duration(len(slowDst)/max1(e.cfg.ChannelCount)+1) * e.scanInterval
		deadline := time.Now().Add(timeout)
		for len(e.slowFIFO) < e.cfg.ChannelCount && time.Now().Before(deadline) {
			e.mu.Unlock()
			time.Sleep(time.Millisecond)
			e.mu.Lock()
		}
		if len(e.slowFIFO) < e.cfg.ChannelCount {
			e.setError(ErrTimeout)
			*slowCount, *fastCount = 0, 0
			return e.lastErr
		}
	}

	n := copy(slowDst, e.slowFIFO)
	e.slowFIFO = e.slowFIFO[n:]
	*slowCount = n

	fn := copy(fastDst, e.fastFIFO)
	if fn < len(e.fastFIFO) && len(fastDst) > 0 {
		e.setError(ErrLostFastData)
	}
	e.fastFIFO = e.fastFIFO[fn:]
	*fastCount = fn

	return e.lastErr
}

func (e *AITimerEngine) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.slowFIFO) == 0 && len(e.fastFIFO) == 0
}

func (e *AITimerEngine) GetFIFOSize() int { return aiFIFODepth }

func (e *AITimerEngine) CanCalibrate() bool { return false }

func (e *AITimerEngine) Calibrate() error {
	e.setError(ErrNotSupported)
	return e.lastErr
}

func (e *AITimerEngine) ToVolts(code int16) float64 {
	return float64(code) * e.b2sScale
}

func (e *AITimerEngine) ToRaw(volts float64) int16 {
	if volts > aiFullScale {
		volts = aiFullScale
	}
	if volts < -aiFullScale {
		volts = -aiFullScale
	}
	code := int(volts / e.b2sScale)
	if code > aiMaxB2S {
		code = aiMaxB2S
	}
	if code < aiMinB2S {
		code = aiMinB2S
	}
	return int16(code)
}

func (e *AITimerEngine) NearestVolts(volts float64) float64 {
	return e.ToVolts(e.ToRaw(volts))
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// NullAnalogInput is the "no device installed" placeholder: every operation
// returns ErrDeviceUnavailable, so callers never need a presence check.
type NullAnalogInput struct{}

func (NullAnalogInput) Configure(AIConfig) error { return ErrDeviceUnavailable }
func (NullAnalogInput) Start() error             { return ErrDeviceUnavailable }
func (NullAnalogInput) Stop() error              { return ErrDeviceUnavailable }
func (NullAnalogInput) Unload(slowDst []int16, slowCount *int, fastDst []int16, fastCount *int, block bool) error {
	*slowCount, *fastCount = 0, 0
	return ErrDeviceUnavailable
}
func (NullAnalogInput) IsEmpty() bool                { return true }
func (NullAnalogInput) AcknowledgeInterrupt() bool   { return false }
func (NullAnalogInput) GetFIFOSize() int             { return 0 }
func (NullAnalogInput) CanCalibrate() bool           { return false }
func (NullAnalogInput) Calibrate() error             { return ErrDeviceUnavailable }
func (NullAnalogInput) ToVolts(int16) float64        { return 0 }
func (NullAnalogInput) ToRaw(float64) int16          { return 0 }
func (NullAnalogInput) NearestVolts(float64) float64 { return 0 }
func (NullAnalogInput) LastError() error             { return ErrDeviceUnavailable }

var _ AnalogInput = (*AITimerEngine)(nil)
var _ AnalogInput = NullAnalogInput{}
