package state

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ckpt.json")

	if _, found, err := LoadCheckpoint(path); err != nil || found {
		t.Fatalf("load missing: found=%v err=%v", found, err)
	}

	want := Checkpoint{
		ChainID:         137,
		ExecutorAddress: "0x00000000000000000000000000000000000000e1",
		CyclesRun:       12,
		AttemptsSent:    3,
		LastLedgerTotal: "490",
		UpdatedAtMs:     1700000000000,
	}
	if err := SaveCheckpoint(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, found, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatalf("checkpoint not found after save")
	}
	if got != want {
		t.Fatalf("checkpoint=%+v want %+v", got, want)
	}
}

func TestCheckpointCompatible(t *testing.T) {
	ckpt := Checkpoint{ChainID: 137, ExecutorAddress: "0xabc"}

	if !ckpt.Compatible(137, "0xabc") {
		t.Fatalf("same deployment reported incompatible")
	}
	if ckpt.Compatible(1, "0xabc") {
		t.Fatalf("chain mismatch reported compatible")
	}
	if ckpt.Compatible(137, "0xdef") {
		t.Fatalf("executor mismatch reported compatible")
	}
}

func TestCheckpointCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := LoadCheckpoint(path); err == nil {
		t.Fatalf("expected parse error for corrupt checkpoint")
	}
}

func TestCheckpointEmptyPathDisabled(t *testing.T) {
	if err := SaveCheckpoint("", Checkpoint{ChainID: 1}); err != nil {
		t.Fatalf("save with empty path: %v", err)
	}
	if _, found, err := LoadCheckpoint(""); err != nil || found {
		t.Fatalf("load with empty path: found=%v err=%v", found, err)
	}
}
