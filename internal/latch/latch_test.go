package latch

import (
	"testing"

	"github.com/cxdaq/cxcore/internal/daq"
)

// fakeEventTimer records every SetDO write in order, standing in for the
// physical DIO port so tests can inspect exactly what Mux/PSG wrote without
// a real board.
type fakeEventTimer struct {
	daq.NullEventTimer
	writes []uint16
	prev   uint16
}

func (f *fakeEventTimer) SetDO(value uint16) (uint16, error) {
	prev := f.prev
	f.writes = append(f.writes, value)
	f.prev = value
	return prev, nil
}

func TestTriggerMarkersRaisesThenLowers(t *testing.T) {
	et := &fakeEventTimer{}
	m := NewMux(et, nil, nil)

	if err := m.TriggerMarkers(0x00FF); err != nil {
		t.Fatalf("TriggerMarkers: %v", err)
	}
	if len(et.writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(et.writes))
	}
	if et.writes[0] != addrMarkers|0x00FF {
		t.Errorf("first write = %#x, want marker device with mask set", et.writes[0])
	}
	if et.writes[1] != addrMarkers {
		t.Errorf("second write = %#x, want marker device with mask cleared", et.writes[1])
	}
}

func TestWriteCharAddressesWriterDevice(t *testing.T) {
	et := &fakeEventTimer{}
	m := NewMux(et, nil, nil)

	if err := m.WriteChar('A'); err != nil {
		t.Fatalf("WriteChar: %v", err)
	}
	want := addrWriter | uint16('A')
	if et.writes[0] != want {
		t.Fatalf("write = %#x, want %#x", et.writes[0], want)
	}
}

func TestFixationAndAudioRewardBitsAreIndependentlyMutable(t *testing.T) {
	et := &fakeEventTimer{}
	m := NewMux(et, nil, nil)

	if err := m.SetFixationStatus(true); err != nil {
		t.Fatalf("SetFixationStatus: %v", err)
	}
	if err := m.SetAudioRewardBit(true); err != nil {
		t.Fatalf("SetAudioRewardBit: %v", err)
	}
	// The second write must still carry the fixation bit set by the first.
	last := et.writes[len(et.writes)-1]
	if last&addrMisc != addrMisc {
		t.Fatalf("last write %#x not addressed to the misc device", last)
	}
	if last&0x0FFF != 0x3 {
		t.Fatalf("last write data = %#x, want both fixation and audio-reward bits set (0x3)", last&0x0FFF)
	}

	if err := m.SetFixationStatus(false); err != nil {
		t.Fatalf("SetFixationStatus: %v", err)
	}
	last = et.writes[len(et.writes)-1]
	if last&0x0FFF != 0x2 {
		t.Fatalf("after clearing fixation, data = %#x, want only audio-reward bit set (0x2)", last&0x0FFF)
	}
}

// TestDeliverRewardVariableRatioConvergence is spec.md §8 scenario 3:
// deliverReward(5, 100, 0) x 10,000 must withhold in [1900, 2100] times.
func TestDeliverRewardVariableRatioConvergence(t *testing.T) {
	et := &fakeEventTimer{}
	m := NewMux(et, nil, nil)

	withheldCount := 0
	const trials = 10000
	for i := 0; i < trials; i++ {
		withheld, err := m.DeliverReward(5, 100, 0)
		if err != nil {
			t.Fatalf("DeliverReward: %v", err)
		}
		if withheld {
			withheldCount++
		}
	}
	if withheldCount < 1900 || withheldCount > 2100 {
		t.Fatalf("withheld count = %d, want in [1900, 2100]", withheldCount)
	}
}

func TestDeliverRewardZeroDurationAlwaysWithheld(t *testing.T) {
	et := &fakeEventTimer{}
	m := NewMux(et, nil, nil)

	withheld, err := m.DeliverReward(1, 0, 0)
	if err != nil {
		t.Fatalf("DeliverReward: %v", err)
	}
	if !withheld {
		t.Fatal("a zero adjustable duration must always be withheld")
	}
}

func TestDeliverRewardWritesDurationAndAcknowledgement(t *testing.T) {
	et := &fakeEventTimer{}
	m := NewMux(et, nil, nil)

	withheld, err := m.DeliverReward(1, 100, 0)
	if err != nil {
		t.Fatalf("DeliverReward: %v", err)
	}
	if withheld {
		t.Fatal("variable ratio of 1 must never withhold")
	}
	if et.writes[0] != addrReward|100 {
		t.Fatalf("first write = %#x, want the reward device with duration 100", et.writes[0])
	}
	// Followed by the character-writer acknowledgement: 0x05, then digits, then 0.
	if et.writes[1] != addrWriter|0x05 {
		t.Fatalf("second write = %#x, want the ack start byte", et.writes[1])
	}
	last := et.writes[len(et.writes)-1]
	if last != addrWriter {
		t.Fatalf("last write = %#x, want a trailing NUL on the writer device", last)
	}
}

func TestDeliverRewardSchedulesAudioOffAfterDelay(t *testing.T) {
	et := &fakeEventTimer{}
	var scheduledMs int
	var scheduledFn func()
	m := NewMux(et, nil, func(ms int, fn func()) {
		scheduledMs = ms
		scheduledFn = fn
	})

	if _, err := m.DeliverReward(1, 100, 50); err != nil {
		t.Fatalf("DeliverReward: %v", err)
	}
	if scheduledMs != 50 {
		t.Fatalf("scheduled delay = %d, want 50", scheduledMs)
	}
	if scheduledFn == nil {
		t.Fatal("expected a scheduled audio-off callback")
	}
	scheduledFn()
	last := et.writes[len(et.writes)-1]
	if last&0x0FFF != 0 {
		t.Fatalf("after the scheduled callback, misc data = %#x, want audio-reward bit cleared", last&0x0FFF)
	}
}
