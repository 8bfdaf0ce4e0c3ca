package settle

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

const silentRevertReason = "reverted silently"

// minRevertPayload is selector (4) + string head (32) + length word (32):
// anything shorter cannot carry an ABI-encoded Error(string).
const minRevertPayload = 68

var revertStringArgs abi.Arguments

func init() {
	stringTy, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	revertStringArgs = abi.Arguments{{Type: stringTy}}
}

// RevertReason extracts a human-readable reason from a revert payload.
// It attempts a structured Error(string) decode past the 4-byte selector and
// falls back to a generic reason on any decode fault; the fallback path never
// fails.
func RevertReason(payload []byte) string {
	if len(payload) < minRevertPayload {
		return silentRevertReason
	}
	vals, err := revertStringArgs.Unpack(payload[4:])
	if err != nil || len(vals) != 1 {
		return silentRevertReason
	}
	s, ok := vals[0].(string)
	if !ok || s == "" {
		return silentRevertReason
	}
	return s
}
