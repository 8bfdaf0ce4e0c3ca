package settle

import "errors"

// Every failure inside the settlement callback aborts the whole unit; the
// host discards all state changes made so far. These sentinels classify why.
var (
	ErrUnauthorized        = errors.New("caller is not the lending pool")
	ErrWrongAsset          = errors.New("borrowed asset is not the configured loan asset")
	ErrDecodeParams        = errors.New("malformed settlement params")
	ErrSlippageExceeded    = errors.New("received output below minimum acceptable")
	ErrInsufficientReserve = errors.New("reserve below principal plus premium")
	ErrApprovalFailed      = errors.New("allowance grant failed")
)

// SwapError reports a failed router call together with the best reason that
// could be recovered from the failure payload.
type SwapError struct {
	Reason string
}

func (e *SwapError) Error() string {
	return "swap failed: " + e.Reason
}

// RevertError carries the raw failure payload of a reverted call. Hosts that
// can surface revert data (the chain sim, eth_call) wrap it in this type so
// the engine can attempt a structured reason decode.
type RevertError struct {
	Data []byte
}

func (e *RevertError) Error() string {
	return "execution reverted"
}
