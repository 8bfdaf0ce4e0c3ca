package chainsim

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flasharb/internal/settle"
)

// ScriptedRouter plays the aggregator's execution router: on Call it pulls
// the configured source amount from the payer through the transfer proxy's
// allowance and credits the scripted output of the destination token.
//
// FailWith, when set, makes Call fail instead (to script reverts).
type ScriptedRouter struct {
	chain *Chain
	addr  common.Address
	proxy common.Address

	srcToken  common.Address
	destToken common.Address
	payer     common.Address
	srcAmount *big.Int

	// DeliverAmount is what the swap actually yields; set below the quoted
	// amount to exercise slippage handling.
	DeliverAmount *big.Int

	FailWith error

	calls int
}

func NewScriptedRouter(chain *Chain, addr, proxy, srcToken, destToken, payer common.Address, srcAmount, deliver *big.Int) *ScriptedRouter {
	return &ScriptedRouter{
		chain:         chain,
		addr:          addr,
		proxy:         proxy,
		srcToken:      srcToken,
		destToken:     destToken,
		payer:         payer,
		srcAmount:     new(big.Int).Set(srcAmount),
		DeliverAmount: new(big.Int).Set(deliver),
	}
}

// Address returns the router's own address (the settlement params target).
func (r *ScriptedRouter) Address() common.Address {
	return r.addr
}

// Calls reports how many times the router was invoked.
func (r *ScriptedRouter) Calls() int {
	return r.calls
}

// Call implements settle.Router.
func (r *ScriptedRouter) Call(target common.Address, calldata []byte) error {
	r.calls++
	if target != r.addr {
		return &settle.RevertError{}
	}
	if len(calldata) == 0 {
		return &settle.RevertError{}
	}
	if r.FailWith != nil {
		return r.FailWith
	}

	if err := r.chain.TransferFrom(r.srcToken, r.proxy, r.payer, r.addr, r.srcAmount); err != nil {
		return fmt.Errorf("router pull: %w", err)
	}
	r.chain.Mint(r.destToken, r.payer, r.DeliverAmount)
	return nil
}
