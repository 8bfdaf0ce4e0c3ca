package arbbot

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"flasharb/internal/aggr"
	"flasharb/internal/bpsmath"
	"flasharb/internal/evaluate"
	"flasharb/internal/settle"
)

// quoter prices one swap leg.
type quoter interface {
	GetPrice(ctx context.Context, src, dest common.Address, amount *big.Int, maxImpactBps uint64) (aggr.Quote, error)
}

// paramsBuilder turns an accepted quote into settlement params.
type paramsBuilder interface {
	Build(ctx context.Context, q aggr.Quote, user common.Address) (settle.Params, []byte, error)
}

// submitter fires the loan-initiation call (live) or replays the settlement
// against the sim (dry-run) and reports the outcome.
type submitter interface {
	Submit(ctx context.Context, size *big.Int, params settle.Params, blob []byte, q aggr.Quote) (attemptResult, error)
}

type attemptResult struct {
	TxHash      common.Hash
	Received    *big.Int
	LedgerTotal *big.Int
}

type attemptDeps struct {
	quoter  quoter
	builder paramsBuilder

	executor        common.Address
	loanAsset       common.Address
	destAsset       common.Address
	swapFractionBps uint64
	maxImpactBps    uint64
	thresholdUSD    decimal.Decimal
}

type attemptOutcome struct {
	// Skipped is true when the quote priced below the profit threshold;
	// no build or submission happened.
	Skipped   bool
	Quote     aggr.Quote
	ProfitUSD decimal.Decimal
	Params    settle.Params
	Result    attemptResult
}

// runAttempt resolves one configured loan size end to end:
// quote -> evaluate -> (skip | build -> submit).
func runAttempt(ctx context.Context, deps attemptDeps, sub submitter, size *big.Int) (attemptOutcome, error) {
	swapAmount := bpsmath.ApplyBpsBig(size, deps.swapFractionBps)
	if swapAmount.Sign() <= 0 {
		return attemptOutcome{}, fmt.Errorf("loan size %s too small to swap", size)
	}

	quote, err := deps.quoter.GetPrice(ctx, deps.loanAsset, deps.destAsset, swapAmount, deps.maxImpactBps)
	if err != nil {
		return attemptOutcome{}, err
	}

	ok, profit := evaluate.Profitable(quote, deps.thresholdUSD)
	if !ok {
		return attemptOutcome{Skipped: true, Quote: quote, ProfitUSD: profit}, nil
	}

	params, blob, err := deps.builder.Build(ctx, quote, deps.executor)
	if err != nil {
		return attemptOutcome{Quote: quote, ProfitUSD: profit}, err
	}

	result, err := sub.Submit(ctx, size, params, blob, quote)
	if err != nil {
		return attemptOutcome{Quote: quote, ProfitUSD: profit, Params: params}, err
	}

	return attemptOutcome{Quote: quote, ProfitUSD: profit, Params: params, Result: result}, nil
}
