package daq

import (
	"testing"
	"time"
)

// TestEventTimerLoopbackOrdering exercises spec.md §8 scenario 1: injected
// edges must be drained in strict chronological order regardless of which
// mask fired, matching the DIO loopback scenario's 17-event sequence shape.
func TestEventTimerLoopbackOrdering(t *testing.T) {
	e := NewEventTimerEngine(NewFakeRegisterFile())
	if err := e.Configure(ETConfig{ClockUs: 10, EnableMask: 0xFFFF}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	masks := []uint16{0x0001, 0x0002, 0x0004, 0xFFFF}
	for i, m := range masks {
		e.InjectEvent(m, uint32(i*10))
	}

	gotMasks := make([]uint16, len(masks))
	gotTimes := make([]uint32, len(masks))
	n, err := e.Unload(len(masks), gotMasks, gotTimes)
	if err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if n != len(masks) {
		t.Fatalf("Unload drained %d events, want %d", n, len(masks))
	}
	for i, m := range masks {
		if gotMasks[i] != m {
			t.Errorf("event %d mask = %#x, want %#x", i, gotMasks[i], m)
		}
		if gotTimes[i] != uint32(i*10) {
			t.Errorf("event %d time = %d, want %d", i, gotTimes[i], i*10)
		}
	}
}

func TestEventTimerConfigureRejectsClockOutOfRange(t *testing.T) {
	e := NewEventTimerEngine(NewFakeRegisterFile())
	if err := e.Configure(ETConfig{ClockUs: 0}); err == nil {
		t.Fatal("expected an error for a zero clock period")
	}
	if err := e.Configure(ETConfig{ClockUs: 20000}); err == nil {
		t.Fatal("expected an error for a clock period above 10000us")
	}
}

func TestEventTimerSetDOReturnsPreviousValueAndWritesRegister(t *testing.T) {
	regs := NewFakeRegisterFile()
	e := NewEventTimerEngine(regs)
	e.sleepFn = func(d time.Duration) {} // no real waiting in a test

	prev, err := e.SetDO(0x1234)
	if err != nil {
		t.Fatalf("SetDO: %v", err)
	}
	if prev != 0 {
		t.Fatalf("first SetDO previous = %#x, want 0", prev)
	}

	prev, err = e.SetDO(0x5678)
	if err != nil {
		t.Fatalf("SetDO: %v", err)
	}
	if prev != 0x1234 {
		t.Fatalf("second SetDO previous = %#x, want %#x", prev, 0x1234)
	}

	got, err := regs.ReadReg(regETDOPort)
	if err != nil {
		t.Fatalf("ReadReg: %v", err)
	}
	if got != 0x5678 {
		t.Fatalf("DO port register = %#x, want %#x", got, 0x5678)
	}
}

func TestEventTimerSetBusyWaitsClampsToRange(t *testing.T) {
	e := NewEventTimerEngine(NewFakeRegisterFile())
	if err := e.SetBusyWaits(DOBusyWaits{WriteUs: -5, AssertUs: 100, ReleaseUs: 10}); err != nil {
		t.Fatalf("SetBusyWaits: %v", err)
	}
	if e.waits.WriteUs != doBusyWaitMin {
		t.Errorf("WriteUs = %d, want clamp to %d", e.waits.WriteUs, doBusyWaitMin)
	}
	if e.waits.AssertUs != doBusyWaitMax {
		t.Errorf("AssertUs = %d, want clamp to %d", e.waits.AssertUs, doBusyWaitMax)
	}
	if e.waits.ReleaseUs != 10 {
		t.Errorf("ReleaseUs = %d, want 10 unchanged", e.waits.ReleaseUs)
	}
}

func TestNullEventTimerAlwaysUnavailable(t *testing.T) {
	var n NullEventTimer
	if err := n.Start(); err != ErrDeviceUnavailable {
		t.Fatalf("Start = %v, want ErrDeviceUnavailable", err)
	}
	if _, err := n.SetDO(1); err != ErrDeviceUnavailable {
		t.Fatalf("SetDO = %v, want ErrDeviceUnavailable", err)
	}
}
