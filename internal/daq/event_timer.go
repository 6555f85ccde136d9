// event_timer.go - EventTimer capability: digital-input timestamping + strobed DO

package daq

import (
	"sync"
	"time"
)

// TimestampedEvent is a (mask, time) pair recorded on any enabled channel's rising
// edge. Time is in raw clock ticks at the configured clock period.
type TimestampedEvent struct {
	Mask uint16
	Time uint32
}

// ETConfig is the validated configuration accepted by EventTimer.Configure.
type ETConfig struct {
	ClockUs    int    // 1..10000
	EnableMask uint16 // which of the 16 DI channels are timestamped
}

// DOBusyWaits are the three configurable busy-wait intervals (microseconds) used
// between the steps of a latched DO write: write command, assert ready low,
// release ready high. Each must be in [0, 20].
type DOBusyWaits struct {
	WriteUs, AssertUs, ReleaseUs int
}

// DefaultDOBusyWaits matches spec.md §3's 3us default for each step.
var DefaultDOBusyWaits = DOBusyWaits{WriteUs: 3, AssertUs: 3, ReleaseUs: 3}

const (
	doBusyWaitMin = 0
	doBusyWaitMax = 20
)

// EventTimer is the HAL capability for digital-input edge timestamping plus the
// strobed 16-bit output port used to address latched external devices. Modeled on
// CCxEventTimer.
type EventTimer interface {
	Configure(cfg ETConfig) error
	Start() error
	Stop() error
	Unload(maxEvents int, masksOut []uint16, timesOut []uint32) (int, error)
	// SetDO issues the three-step latched write and returns the DO-port value that
	// was in force immediately before this write.
	SetDO(value uint16) (previous uint16, err error)

	SetBusyWaits(w DOBusyWaits) error
	Now() uint32 // current raw tick count, for callers translating ticks to seconds
	ClockPeriod() time.Duration

	LastError() error
}

// EventTimerEngine is the real CCxEventTimer-equivalent: a software-layered
// multiplexer atop the DIO output port sits in package latch, not here — this type
// only implements the hardware-facing primitives (configure/start/stop/unload/setDO).
type EventTimerEngine struct {
	errorHolder
	regs RegisterFile

	mu        sync.Mutex
	cfg       ETConfig
	running   bool
	waits     DOBusyWaits
	doValue   uint16
	startTime time.Time
	fifo      []TimestampedEvent
	sleepFn   func(time.Duration)
}

// NewEventTimerEngine constructs the engine bound to the DIO/counter window.
func NewEventTimerEngine(regs RegisterFile) *EventTimerEngine {
	return &EventTimerEngine{
		errorHolder: errorHolder{deviceName: "EventTimer"},
		regs:        regs,
		waits:       DefaultDOBusyWaits,
		sleepFn:     time.Sleep,
	}
}

func (e *EventTimerEngine) Configure(cfg ETConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg.ClockUs < 1 || cfg.ClockUs > 10000 {
		e.setError(&DeviceError{e.deviceName, "clock period out of range"})
		return e.lastErr
	}
	e.cfg = cfg
	e.fifo = e.fifo[:0]
	e.running = false
	e.clearError()
	_ = e.regs.WriteReg(regETClockLoad, uint16(cfg.ClockUs))
	_ = e.regs.WriteReg(regETEnableMask, cfg.EnableMask)
	return nil
}

func (e *EventTimerEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
	e.startTime = time.Now()
	return e.regs.WriteReg(regETControl, etControlRun)
}

func (e *EventTimerEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	return e.regs.WriteReg(regETControl, 0)
}

// recordEvent is called by the polling side (or a test) when a rising edge is
// observed; it preserves strict chronological ordering within and across cycles.
func (e *EventTimerEngine) recordEvent(mask uint16, tick uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastErr != nil {
		return
	}
	status, _ := e.regs.ReadReg(regETStatus)
	if status&(etStatusClockOverflow|etStatusFIFOOverflow) != 0 {
		e.setError(ErrClockOverflow)
		return
	}
	e.fifo = append(e.fifo, TimestampedEvent{Mask: mask, Time: tick})
}

// InjectEvent is the test/simulation-side hook standing in for the real detector
// hardware (used by loopback-style tests described in spec.md §8 scenario 1).
func (e *EventTimerEngine) InjectEvent(mask uint16, tick uint32) {
	e.recordEvent(mask, tick)
}

func (e *EventTimerEngine) Unload(maxEvents int, masksOut []uint16, timesOut []uint32) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastErr != nil {
		return 0, e.lastErr
	}
	n := maxEvents
	if n > len(e.fifo) {
		n = len(e.fifo)
	}
	if n > len(masksOut) {
		n = len(masksOut)
	}
	if n > len(timesOut) {
		n = len(timesOut)
	}
	for i := 0; i < n; i++ {
		masksOut[i] = e.fifo[i].Mask
		timesOut[i] = e.fifo[i].Time
	}
	e.fifo = e.fifo[n:]
	return n, nil
}

func (e *EventTimerEngine) SetBusyWaits(w DOBusyWaits) error {
	clamp := func(v int) int {
		if v < doBusyWaitMin {
			return doBusyWaitMin
		}
		if v > doBusyWaitMax {
			return doBusyWaitMax
		}
		return v
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.waits = DOBusyWaits{clamp(w.WriteUs), clamp(w.AssertUs), clamp(w.ReleaseUs)}
	return nil
}

// SetDO issues the three ordered steps from spec.md §3: write the 16-bit command,
// assert data-ready low, release data-ready high, each separated by its configured
// busy-wait. Must only ever be called from the main runtime thread, never the ISR.
func (e *EventTimerEngine) SetDO(value uint16) (uint16, error) {
	e.mu.Lock()
	waits := e.waits
	prev := e.doValue
	e.mu.Unlock()

	if err := e.regs.WriteReg(regETDOPort, value); err != nil {
		e.setError(&DeviceError{e.deviceName, "DO write failed"})
		return prev, e.lastErr
	}
	e.sleepFn(time.Duration(waits.WriteUs) * time.Microsecond)

	if err := e.regs.WriteReg(regETDataReady, 0); err != nil {
		e.setError(&DeviceError{e.deviceName, "data-ready assert failed"})
		return prev, e.lastErr
	}
	e.sleepFn(time.Duration(waits.AssertUs) * time.Microsecond)

	if err := e.regs.WriteReg(regETDataReady, 1); err != nil {
		e.setError(&DeviceError{e.deviceName, "data-ready release failed"})
		return prev, e.lastErr
	}
	e.sleepFn(time.Duration(waits.ReleaseUs) * time.Microsecond)

	e.mu.Lock()
	e.doValue = value
	e.mu.Unlock()
	return prev, nil
}

func (e *EventTimerEngine) Now() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return 0
	}
	elapsed := time.Since(e.startTime)
	return uint32(elapsed.Microseconds() / int64(max1(e.cfg.ClockUs)))
}

func (e *EventTimerEngine) ClockPeriod() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(e.cfg.ClockUs) * time.Microsecond
}

// NullEventTimer is the "no device installed" placeholder.
type NullEventTimer struct{}

func (NullEventTimer) Configure(ETConfig) error { return ErrDeviceUnavailable }
func (NullEventTimer) Start() error             { return ErrDeviceUnavailable }
func (NullEventTimer) Stop() error              { return ErrDeviceUnavailable }
func (NullEventTimer) Unload(int, []uint16, []uint32) (int, error) {
	return 0, ErrDeviceUnavailable
}
func (NullEventTimer) SetDO(uint16) (uint16, error)   { return 0, ErrDeviceUnavailable }
func (NullEventTimer) SetBusyWaits(DOBusyWaits) error { return ErrDeviceUnavailable }
func (NullEventTimer) Now() uint32                    { return 0 }
func (NullEventTimer) ClockPeriod() time.Duration     { return 0 }
func (NullEventTimer) LastError() error               { return ErrDeviceUnavailable }

var _ EventTimer = (*EventTimerEngine)(nil)
var _ EventTimer = NullEventTimer{}
