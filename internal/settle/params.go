package settle

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Params is the parameter blob exchanged between the off-chain builder and
// the settlement callback, ABI-encoded as (address, bytes, uint256).
//
// Field order is the wire contract: any reordering or type change breaks
// every deployed counterpart. There is no version byte.
type Params struct {
	Router       common.Address
	SwapCalldata []byte
	MinOut       *big.Int
}

var paramsArgs abi.Arguments

func init() {
	addressTy, err := abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	bytesTy, err := abi.NewType("bytes", "", nil)
	if err != nil {
		panic(err)
	}
	uint256Ty, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	paramsArgs = abi.Arguments{
		{Name: "router", Type: addressTy},
		{Name: "swapCalldata", Type: bytesTy},
		{Name: "minOut", Type: uint256Ty},
	}
}

// Encode packs the params into the wire blob.
func (p Params) Encode() ([]byte, error) {
	if p.Router == (common.Address{}) {
		return nil, fmt.Errorf("params: router address missing")
	}
	if len(p.SwapCalldata) == 0 {
		return nil, fmt.Errorf("params: swap calldata missing")
	}
	if p.MinOut == nil || p.MinOut.Sign() < 0 {
		return nil, fmt.Errorf("params: minOut missing or negative")
	}
	return paramsArgs.Pack(p.Router, p.SwapCalldata, p.MinOut)
}

// DecodeParams parses the wire blob. Any malformed encoding fails with
// ErrDecodeParams.
func DecodeParams(blob []byte) (Params, error) {
	vals, err := paramsArgs.Unpack(blob)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrDecodeParams, err)
	}
	if len(vals) != 3 {
		return Params{}, fmt.Errorf("%w: got %d values", ErrDecodeParams, len(vals))
	}

	router, ok := vals[0].(common.Address)
	if !ok {
		return Params{}, fmt.Errorf("%w: router has type %T", ErrDecodeParams, vals[0])
	}
	calldata, ok := vals[1].([]byte)
	if !ok {
		return Params{}, fmt.Errorf("%w: calldata has type %T", ErrDecodeParams, vals[1])
	}
	minOut, ok := vals[2].(*big.Int)
	if !ok {
		return Params{}, fmt.Errorf("%w: minOut has type %T", ErrDecodeParams, vals[2])
	}
	if router == (common.Address{}) || len(calldata) == 0 {
		return Params{}, fmt.Errorf("%w: empty router or calldata", ErrDecodeParams)
	}

	return Params{Router: router, SwapCalldata: calldata, MinOut: minOut}, nil
}
