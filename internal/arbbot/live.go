package arbbot

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"flasharb/internal/aggr"
	"flasharb/internal/chainwatch"
	"flasharb/internal/executor"
	"flasharb/internal/settle"
)

// liveSubmitter sends the loan-initiation transaction to the deployed
// executor and blocks until it is mined. The caller's context bounds the
// confirmation wait; a canceled context abandons the wait, not the
// transaction.
type liveSubmitter struct {
	client  *ethclient.Client
	exec    *executor.Executor
	pk      *ecdsa.PrivateKey
	chainID *big.Int
}

func newLiveSubmitter(client *ethclient.Client, exec *executor.Executor, pk *ecdsa.PrivateKey, chainID *big.Int) *liveSubmitter {
	return &liveSubmitter{client: client, exec: exec, pk: pk, chainID: chainID}
}

func (s *liveSubmitter) Submit(ctx context.Context, size *big.Int, params settle.Params, blob []byte, q aggr.Quote) (attemptResult, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.pk, s.chainID)
	if err != nil {
		return attemptResult{}, err
	}
	opts.Context = ctx

	tx, err := s.exec.InitiateFlashLoan(opts, size, blob)
	if err != nil {
		return attemptResult{}, fmt.Errorf("initiate flash loan: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, s.client, tx)
	if err != nil {
		return attemptResult{}, fmt.Errorf("wait mined %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return attemptResult{TxHash: tx.Hash()}, fmt.Errorf("settlement reverted (tx=%s)", tx.Hash().Hex())
	}

	result := attemptResult{TxHash: tx.Hash()}
	if ev, ok := chainwatch.FindSettled(receipt, s.exec.Address()); ok {
		result.Received = ev.Received
	}
	if total, err := s.exec.TotalProfit(ctx); err == nil {
		result.LedgerTotal = total
	}
	return result, nil
}
