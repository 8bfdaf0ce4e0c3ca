// Package executor binds the deployed flash-loan executor contract: loan
// initiation and the profit-ledger query.
package executor

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const executorABIJSON = `[
  {"inputs":[
    {"internalType":"uint256","name":"amount","type":"uint256"},
    {"internalType":"bytes","name":"params","type":"bytes"}
  ],"name":"initiateFlashLoan","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[],"name":"totalProfit","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

type Executor struct {
	addr     common.Address
	contract *bind.BoundContract
}

// New binds the executor at addr. backend is typically *ethclient.Client.
func New(addr common.Address, backend bind.ContractBackend) (*Executor, error) {
	if addr == (common.Address{}) {
		return nil, fmt.Errorf("executor address missing")
	}
	parsed, err := abi.JSON(strings.NewReader(executorABIJSON))
	if err != nil {
		return nil, fmt.Errorf("executor abi parse: %w", err)
	}
	return &Executor{
		addr:     addr,
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
	}, nil
}

func (e *Executor) Address() common.Address {
	return e.addr
}

// TotalProfit reads the on-chain profit ledger.
func (e *Executor) TotalProfit(ctx context.Context) (*big.Int, error) {
	var out []any
	if err := e.contract.Call(&bind.CallOpts{Context: ctx}, &out, "totalProfit"); err != nil {
		return nil, fmt.Errorf("totalProfit: %w", err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("totalProfit: unexpected result len %d", len(out))
	}
	total, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("totalProfit: unexpected type %T", out[0])
	}
	return total, nil
}

// InitiateFlashLoan submits the loan-initiation transaction. Privileged:
// the contract rejects callers other than its owner.
func (e *Executor) InitiateFlashLoan(opts *bind.TransactOpts, amount *big.Int, params []byte) (*types.Transaction, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("loan amount must be positive")
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("settlement params missing")
	}
	return e.contract.Transact(opts, "initiateFlashLoan", amount, params)
}
