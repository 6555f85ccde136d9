// event_timer_alt.go - non-multiplexed EventTimer variant (CCxEventTimerAlt)
//
// Grounded in _examples/original_source/src/cxdriver/devices/cxeventtimeralt.cpp:
// some rigs wire reward and marker pulses to dedicated DIO lines instead of the
// addressed latched-device multiplexer (package latch) layered on the
// EventTimerEngine in event_timer.go. This answers spec.md
// §9's Open Question by factoring the alternative behind the same EventTimer
// interface rather than branching inside EventTimerEngine.

package daq

import (
	"sync"
	"time"
)

// Dedicated-line assignments for the non-multiplexed rig. Unlike the multiplexed
// engine, these bits mean the same thing on every write - there is no device
// address nibble to decode.
const (
	AltLineRewardBit   = 1 << 0
	AltLineAudioBit    = 1 << 1
	AltLineFixationBit = 1 << 2
	AltLineMarkerBase  = 4 // markers occupy bits [4, 16)
)

// EventTimerEngineAlt implements EventTimer using dedicated output lines rather
// than the latched multiplexer. It still honors the same Configure/Start/Stop/
// Unload/SetDO contract so package latch and cmd/cxdriver need not know which
// variant they're driving.
type EventTimerEngineAlt struct {
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

// NewEventTimerEngineAlt constructs the dedicated-line variant.
func NewEventTimerEngineAlt(regs RegisterFile) *EventTimerEngineAlt {
	return &EventTimerEngineAlt{
		errorHolder: errorHolder{deviceName: "EventTimerAlt"},
		regs:        regs,
		waits:       DefaultDOBusyWaits,
		sleepFn:     time.Sleep,
	}
}

func (e *EventTimerEngineAlt) Configure(cfg ETConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg.ClockUs < 1 || cfg.ClockUs > 10000 {
		e.setError(&DeviceError{e.deviceName, "clock period out of range"})
		return e.lastErr
	}
	e.cfg = cfg
	e.fifo = e.fifo[:0]
	e.clearError()
	_ = e.regs.WriteReg(regETClockLoad, uint16(cfg.ClockUs))
	_ = e.regs.WriteReg(regETEnableMask, cfg.EnableMask)
	return nil
}

func (e *EventTimerEngineAlt) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
	e.startTime = time.Now()
	return e.regs.WriteReg(regETControl, etControlRun)
}

func (e *EventTimerEngineAlt) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	return e.regs.WriteReg(regETControl, 0)
}

func (e *EventTimerEngineAlt) InjectEvent(mask uint16, tick uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastErr != nil {
		return
	}
	e.fifo = append(e.fifo, TimestampedEvent{Mask: mask, Time: tick})
}

func (e *EventTimerEngineAlt) Unload(maxEvents int, masksOut []uint16, timesOut []uint32) (int, error) {
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

// SetDO on the alt engine still performs the three-step latched write timing
// (the hardware strobe shape is identical); only the bit semantics differ.
func (e *EventTimerEngineAlt) SetDO(value uint16) (uint16, error) {
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

func (e *EventTimerEngineAlt) SetBusyWaits(w DOBusyWaits) error {
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

func (e *EventTimerEngineAlt) Now() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return 0
	}
	return uint32(time.Since(e.startTime).Microseconds() / int64(max1(e.cfg.ClockUs)))
}

func (e *EventTimerEngineAlt) ClockPeriod() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(e.cfg.ClockUs) * time.Microsecond
}

// TriggerMarkerLine raises then lowers a single dedicated marker line directly,
// bypassing any multiplexer addressing - the alt-mode equivalent of
// latch.Mux.TriggerMarkers for rigs without the external multiplexer box.
func (e *EventTimerEngineAlt) TriggerMarkerLine(line int) error {
	if line < 0 || line >= 12 {
		return &DeviceError{e.deviceName, "marker line out of range"}
	}
	bit := uint16(1) << uint(AltLineMarkerBase+line)
	if _, err := e.SetDO(bit); err != nil {
		return err
	}
	_, err := e.SetDO(0)
	return err
}

var _ EventTimer = (*EventTimerEngineAlt)(nil)
