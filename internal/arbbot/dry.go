package arbbot

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"flasharb/internal/aggr"
	"flasharb/internal/bpsmath"
	"flasharb/internal/chainsim"
	"flasharb/internal/erc20"
	"flasharb/internal/settle"
)

// drySubmitter replays the settlement against an in-memory chain seeded from
// the executor's live reserve. Nothing is sent; the outcome mirrors what the
// on-chain callback would have done with the quote's numbers.
type drySubmitter struct {
	caller erc20.Caller

	executor        common.Address
	pool            common.Address
	loanAsset       common.Address
	destAsset       common.Address
	transferProxy   common.Address
	swapFractionBps uint64
	premiumBps      uint64
}

func (s *drySubmitter) Submit(ctx context.Context, size *big.Int, params settle.Params, blob []byte, q aggr.Quote) (attemptResult, error) {
	readCtx, cancel := context.WithTimeout(ctx, 12*time.Second)
	reserve, err := erc20.BalanceOf(readCtx, s.caller, s.loanAsset, s.executor)
	cancel()
	if err != nil {
		return attemptResult{}, fmt.Errorf("read executor reserve: %w", err)
	}

	chain := chainsim.New()
	chain.SetBalance(s.loanAsset, s.executor, reserve)

	pool := chainsim.NewPool(chain, s.pool, s.loanAsset, s.premiumBps)
	pool.Fund(size)

	swapAmount := bpsmath.ApplyBpsBig(size, s.swapFractionBps)
	router := chainsim.NewScriptedRouter(chain, params.Router, s.transferProxy, s.loanAsset, s.destAsset, s.executor, swapAmount, q.DestAmount)

	ledger := settle.NewLedger()
	engine, err := settle.New(settle.Config{
		Self:            s.executor,
		Pool:            s.pool,
		LoanAsset:       s.loanAsset,
		DestAsset:       s.destAsset,
		TransferProxy:   s.transferProxy,
		SwapFractionBps: s.swapFractionBps,
	}, chain.Account(s.executor), router, ledger)
	if err != nil {
		return attemptResult{}, err
	}

	if err := pool.Flash(engine, s.executor, s.executor, size, blob); err != nil {
		return attemptResult{}, err
	}
	return attemptResult{
		Received:    ledger.Total(),
		LedgerTotal: ledger.Total(),
	}, nil
}
