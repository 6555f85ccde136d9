package latch

import (
	"testing"
	"time"
)

func TestModeUsesFieldTable(t *testing.T) {
	cases := []struct {
		mode  PSGMode
		field string
		want  bool
	}{
		{PSGSingle, "amp1", true},
		{PSGSingle, "amp2", false},
		{PSGSingle, "ipi", false},
		{PSGDual, "amp2", true},
		{PSGDual, "ipi", true},
		{PSGDual, "nPulses", false},
		{PSGTrain, "nPulses", true},
		{PSGTrain, "nTrains", true},
		{PSGTrain, "iti", true},
		{PSGTrain, "amp2", false},
		{PSGBiphasic, "amp2", true},
		{PSGBiphasicTrain, "nTrains", true},
	}
	for _, c := range cases {
		if got := modeUsesField(c.mode, c.field); got != c.want {
			t.Errorf("modeUsesField(%v, %q) = %v, want %v", c.mode, c.field, got, c.want)
		}
	}
}

// TestEncodeDecodeRoundTrip is the PSG round-trip encode/decode idempotence
// property from spec.md §8: every in-range field, re-derived from its encoded
// byte, must land within the field's stated resolution of the original value.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Run("amp", func(t *testing.T) {
		for _, mv := range []float64{-10240, -40, 0, 40, 10160} {
			b, err := encodeAmp(mv)
			if err != nil {
				t.Fatalf("encodeAmp(%v): %v", mv, err)
			}
			got := float64(b)*80 - 10240
			if got < mv-40 || got > mv+40 {
				t.Errorf("encodeAmp(%v) decoded = %v, outside one-LSB tolerance", mv, got)
			}
		}
		if _, err := encodeAmp(-10241); err == nil {
			t.Error("expected an error for an amplitude below range")
		}
		if _, err := encodeAmp(10161); err == nil {
			t.Error("expected an error for an amplitude above range")
		}
	})

	t.Run("pulseWidth", func(t *testing.T) {
		b, err := encodePulseWidth(1000)
		if err != nil {
			t.Fatalf("encodePulseWidth: %v", err)
		}
		if got := int(b) * 10; got != 1000 {
			t.Errorf("encodePulseWidth(1000) decoded = %d, want 1000", got)
		}
		if _, err := encodePulseWidth(49); err == nil {
			t.Error("expected an error below 50us")
		}
		if _, err := encodePulseWidth(2501); err == nil {
			t.Error("expected an error above 2500us")
		}
	})

	t.Run("intertrain", func(t *testing.T) {
		if _, err := encodeIntertrain(9); err == nil {
			t.Error("expected an error below 10ms")
		}
		if _, err := encodeIntertrain(2501); err == nil {
			t.Error("expected an error above 2500ms")
		}
		b, err := encodeIntertrain(500)
		if err != nil {
			t.Fatalf("encodeIntertrain: %v", err)
		}
		if got := int(b) * 10; got != 500 {
			t.Errorf("encodeIntertrain(500) decoded = %d, want 500", got)
		}
	})

	t.Run("count", func(t *testing.T) {
		if _, err := encodeCount(0); err == nil {
			t.Error("expected an error for a count below 1")
		}
		if _, err := encodeCount(251); err == nil {
			t.Error("expected an error for a count above 250")
		}
		b, err := encodeCount(250)
		if err != nil {
			t.Fatalf("encodeCount: %v", err)
		}
		if int(b) != 250 {
			t.Errorf("encodeCount(250) = %d, want 250", b)
		}
	})

	t.Run("interpulse", func(t *testing.T) {
		if _, err := encodeInterpulse(0); err == nil {
			t.Error("expected an error for an interval below 1ms")
		}
		if _, err := encodeInterpulse(251); err == nil {
			t.Error("expected an error for an interval above 250ms")
		}
		b, err := encodeInterpulse(250)
		if err != nil {
			t.Fatalf("encodeInterpulse: %v", err)
		}
		if int(b) != 250 {
			t.Errorf("encodeInterpulse(250) = %d, want 250", b)
		}
	})
}

func TestPSGConfigureWritesOnlyFieldsTheModeUses(t *testing.T) {
	et := &fakeEventTimer{}
	mux := NewMux(et, nil, nil)
	p := NewPSG(mux)

	params := PSGParams{
		Mode: PSGSingle,
		Amp1: 0, PW1: 100,
		Amp2: 0, PW2: 100, // unused by PSGSingle, must not fail validation
		InterPulseMs: 0, InterTrainMs: 0, PulsesPerTrain: 0, TrainsPerSeq: 0,
	}
	if err := p.Configure(params); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	// mode, amp1, pw1, then the control word: 4 writes, none for the
	// fields PSGSingle doesn't use.
	if len(et.writes) != 4 {
		t.Fatalf("expected 4 writes for PSGSingle, got %d: %#v", len(et.writes), et.writes)
	}
	if p.State() != PSGProgrammed {
		t.Fatalf("state = %v, want PSGProgrammed", p.State())
	}
}

func TestPSGConfigureRejectsInvalidMode(t *testing.T) {
	mux := NewMux(&fakeEventTimer{}, nil, nil)
	p := NewPSG(mux)
	if err := p.Configure(PSGParams{Mode: PSGMode(99)}); err == nil {
		t.Fatal("expected an error for an out-of-range mode")
	}
}

func TestPSGConfigureFailsOnOutOfRangeField(t *testing.T) {
	mux := NewMux(&fakeEventTimer{}, nil, nil)
	p := NewPSG(mux)
	err := p.Configure(PSGParams{Mode: PSGSingle, Amp1: 99999, PW1: 100})
	if err == nil {
		t.Fatal("expected an error for an out-of-range amplitude")
	}
	if p.State() == PSGProgrammed {
		t.Fatal("a failed Configure must not leave the PSG programmed")
	}
}

func TestPSGStartRequiresProgrammed(t *testing.T) {
	mux := NewMux(&fakeEventTimer{}, nil, nil)
	p := NewPSG(mux)
	if err := p.Start(); err == nil {
		t.Fatal("expected an error starting before Configure")
	}
}

func TestPSGLifecycleConfigureStartStopReset(t *testing.T) {
	et := &fakeEventTimer{}
	mux := NewMux(et, nil, nil)
	p := NewPSG(mux)
	p.sleepFn = func(d time.Duration) {}

	params := PSGParams{Mode: PSGTrain, Amp1: 1000, PW1: 200, InterPulseMs: 10, InterTrainMs: 50, PulsesPerTrain: 5, TrainsPerSeq: 1}
	if err := p.Configure(params); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if p.State() != PSGRunning {
		t.Fatalf("state = %v, want PSGRunning", p.State())
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.State() != PSGProgrammed {
		t.Fatalf("state after Stop = %v, want PSGProgrammed", p.State())
	}
	if err := p.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if p.State() != PSGIdle {
		t.Fatalf("state after Reset = %v, want PSGIdle", p.State())
	}
	if p.Params().Mode != PSGNoop {
		t.Fatalf("params after Reset = %+v, want Mode PSGNoop", p.Params())
	}
}
