package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Checkpoint persists the monitor's run state across restarts so operators
// can tell whether the ledger moved while the process was down.
type Checkpoint struct {
	ChainID         int64  `json:"chain_id"`
	ExecutorAddress string `json:"executor_address"`

	CyclesRun       uint64 `json:"cycles_run"`
	AttemptsSent    uint64 `json:"attempts_sent"`
	LastLedgerTotal string `json:"last_ledger_total"`
	UpdatedAtMs     int64  `json:"updated_at_ms"`
}

// Compatible reports whether the checkpoint belongs to the same deployment.
func (c Checkpoint) Compatible(chainID int64, executor string) bool {
	return c.ChainID == chainID && c.ExecutorAddress == executor
}

func LoadCheckpoint(path string) (Checkpoint, bool, error) {
	if path == "" {
		return Checkpoint{}, false, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, err
	}

	var ckpt Checkpoint
	if err := json.Unmarshal(b, &ckpt); err != nil {
		return Checkpoint{}, false, fmt.Errorf("parse checkpoint %s: %w", path, err)
	}
	return ckpt, true, nil
}

func SaveCheckpoint(path string, ckpt Checkpoint) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(ckpt, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
