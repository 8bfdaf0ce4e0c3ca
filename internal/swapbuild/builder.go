// Package swapbuild turns an accepted quote into settlement parameters:
// slippage-bounded minimum output plus router call data from the aggregator.
package swapbuild

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"flasharb/internal/aggr"
	"flasharb/internal/bpsmath"
	"flasharb/internal/settle"
)

// MinOut returns floor(destAmount * (10000 - slippageBps) / 10000): the
// lowest output the settlement will accept. Integer arithmetic throughout;
// fractional tolerances must already be whole basis points.
func MinOut(destAmount *big.Int, slippageBps uint64) (*big.Int, error) {
	if destAmount == nil || destAmount.Sign() <= 0 {
		return nil, fmt.Errorf("dest amount must be positive")
	}
	if slippageBps > bpsmath.Scale {
		return nil, fmt.Errorf("slippage %d bps exceeds %d", slippageBps, bpsmath.Scale)
	}
	return bpsmath.RetainAfterBps(destAmount, slippageBps), nil
}

// swapBuilder is the aggregator's transaction-build surface.
type swapBuilder interface {
	BuildSwap(ctx context.Context, q aggr.Quote, minDestAmount *big.Int, slippageBps uint64, user common.Address, deadline time.Time) (aggr.BuildResult, error)
}

type Builder struct {
	aggr        swapBuilder
	slippageBps uint64
	deadline    time.Duration
}

func NewBuilder(client swapBuilder, slippageBps uint64, deadline time.Duration) (*Builder, error) {
	if client == nil {
		return nil, fmt.Errorf("aggregator client required")
	}
	if slippageBps > bpsmath.Scale {
		return nil, fmt.Errorf("slippage %d bps exceeds %d", slippageBps, bpsmath.Scale)
	}
	if deadline <= 0 {
		deadline = 2 * time.Minute
	}
	return &Builder{aggr: client, slippageBps: slippageBps, deadline: deadline}, nil
}

// Build produces the settlement params and their encoded blob for one quote.
// user is the on-chain account that holds the funds and runs the swap.
func (b *Builder) Build(ctx context.Context, q aggr.Quote, user common.Address) (settle.Params, []byte, error) {
	minOut, err := MinOut(q.DestAmount, b.slippageBps)
	if err != nil {
		return settle.Params{}, nil, fmt.Errorf("%w: %v", aggr.ErrBuildFailed, err)
	}

	res, err := b.aggr.BuildSwap(ctx, q, minOut, b.slippageBps, user, time.Now().Add(b.deadline))
	if err != nil {
		return settle.Params{}, nil, err
	}

	params := settle.Params{
		Router:       res.To,
		SwapCalldata: res.Data,
		MinOut:       minOut,
	}
	blob, err := params.Encode()
	if err != nil {
		return settle.Params{}, nil, fmt.Errorf("%w: %v", aggr.ErrBuildFailed, err)
	}
	return params, blob, nil
}
