package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cxdaq/cxcore/internal/render/anim"
	"github.com/cxdaq/cxcore/internal/render/target"
)

func TestParseTestSequenceDefaultsWithNoPath(t *testing.T) {
	kind, steps, err := parseTestSequence("")
	if err != nil {
		t.Fatalf("parseTestSequence: %v", err)
	}
	if kind != target.KindPoint {
		t.Fatalf("default kind = %v, want KindPoint", kind)
	}
	if len(steps) != 2 || steps[0].kind != anim.CmdUpdateFrame || steps[0].reps != 100 || steps[1].kind != anim.CmdStopAnimate {
		t.Fatalf("default steps = %+v", steps)
	}
}

func TestParseTestSequenceFromScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seq.txt")
	script := "load 5\nanimate 30\nstop\n"
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	kind, steps, err := parseTestSequence(path)
	if err != nil {
		t.Fatalf("parseTestSequence: %v", err)
	}
	if kind != target.Kind(5) {
		t.Fatalf("kind = %v, want 5", kind)
	}
	if len(steps) != 2 || steps[0].kind != anim.CmdUpdateFrame || steps[0].reps != 30 || steps[1].kind != anim.CmdStopAnimate {
		t.Fatalf("steps = %+v", steps)
	}
}

func TestParseTestSequenceMissingFileErrors(t *testing.T) {
	if _, _, err := parseTestSequence(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected an error for a nonexistent test sequence file")
	}
}

func TestScriptedCommandsRunsStepsInOrderThenExhausts(t *testing.T) {
	sc := &scriptedCommands{steps: []scriptStep{
		{anim.CmdUpdateFrame, 2},
		{anim.CmdStopAnimate, 1},
	}}

	kind, vecs, ok := sc.ReadCommand()
	if !ok || kind != anim.CmdUpdateFrame || len(vecs) != 1 {
		t.Fatalf("step 1 = (%v, %v, %v)", kind, vecs, ok)
	}
	kind, _, ok = sc.ReadCommand()
	if !ok || kind != anim.CmdUpdateFrame {
		t.Fatalf("step 2 = (%v, %v)", kind, ok)
	}
	kind, _, ok = sc.ReadCommand()
	if !ok || kind != anim.CmdStopAnimate {
		t.Fatalf("step 3 = (%v, %v)", kind, ok)
	}
	if _, _, ok = sc.ReadCommand(); ok {
		t.Fatal("expected scriptedCommands to be exhausted after its final step")
	}
}
