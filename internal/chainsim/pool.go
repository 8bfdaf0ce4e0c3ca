package chainsim

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flasharb/internal/bpsmath"
)

// Borrower is the settlement callback the pool invokes after disbursing.
type Borrower interface {
	OnFlashLoan(caller, asset common.Address, principal, premium *big.Int, initiator common.Address, params []byte) (bool, error)
}

// Pool is a flash-lending pool over a sim chain. Flash is the transactional
// boundary: it snapshots token state before disbursing and restores it on any
// failure, so a failed settlement leaves no observable change.
type Pool struct {
	chain      *Chain
	addr       common.Address
	asset      common.Address
	premiumBps uint64
}

func NewPool(chain *Chain, addr, asset common.Address, premiumBps uint64) *Pool {
	return &Pool{chain: chain, addr: addr, asset: asset, premiumBps: premiumBps}
}

// Fund seeds the pool's lendable liquidity.
func (p *Pool) Fund(amount *big.Int) {
	p.chain.Mint(p.asset, p.addr, amount)
}

// Premium returns the fee charged on a principal.
func (p *Pool) Premium(principal *big.Int) *big.Int {
	return bpsmath.ApplyBpsBig(principal, p.premiumBps)
}

// Flash lends principal to the borrower, runs the callback, then pulls
// principal+premium back through the borrower's allowance. Any callback
// error, false return, or failed pull rewinds the chain and reports failure.
func (p *Pool) Flash(borrower Borrower, borrowerAddr, initiator common.Address, principal *big.Int, params []byte) error {
	if principal == nil || principal.Sign() <= 0 {
		return fmt.Errorf("chainsim pool: principal must be positive")
	}
	premium := p.Premium(principal)

	snap := p.chain.Snapshot()
	if err := p.chain.Transfer(p.asset, p.addr, borrowerAddr, principal); err != nil {
		return fmt.Errorf("chainsim pool: disburse: %w", err)
	}

	ok, err := borrower.OnFlashLoan(p.addr, p.asset, principal, premium, initiator, params)
	if err != nil {
		p.chain.Restore(snap)
		return err
	}
	if !ok {
		p.chain.Restore(snap)
		return errors.New("chainsim pool: callback signaled failure")
	}

	repay := new(big.Int).Add(principal, premium)
	if err := p.chain.TransferFrom(p.asset, p.addr, borrowerAddr, p.addr, repay); err != nil {
		p.chain.Restore(snap)
		return fmt.Errorf("chainsim pool: repayment pull: %w", err)
	}
	return nil
}
