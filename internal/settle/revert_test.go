package settle

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func errorStringPayload(t *testing.T, reason string) []byte {
	t.Helper()
	packed, err := revertStringArgs.Pack(reason)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	return append(append([]byte{}, selector...), packed...)
}

func TestRevertReason_Decodes(t *testing.T) {
	payload := errorStringPayload(t, "UNISWAP: INSUFFICIENT_OUTPUT_AMOUNT")
	if got := RevertReason(payload); got != "UNISWAP: INSUFFICIENT_OUTPUT_AMOUNT" {
		t.Fatalf("reason=%q", got)
	}
}

func TestRevertReason_ShortPayload(t *testing.T) {
	for _, payload := range [][]byte{nil, {}, make([]byte, 4), make([]byte, 67)} {
		if got := RevertReason(payload); got != silentRevertReason {
			t.Fatalf("len=%d reason=%q want %q", len(payload), got, silentRevertReason)
		}
	}
}

func TestRevertReason_GarbagePayload(t *testing.T) {
	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = 0xff
	}
	if got := RevertReason(payload); got != silentRevertReason {
		t.Fatalf("reason=%q want %q", got, silentRevertReason)
	}
}
