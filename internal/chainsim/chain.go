// Package chainsim is an in-memory stand-in for the chain: ERC-20 balances
// and allowances, a flash-lending pool with snapshot/rollback semantics, and
// a scriptable router. It backs the settlement engine in tests and dry-run
// cycles.
package chainsim

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"flasharb/internal/erc20"
)

type balanceKey struct {
	token, owner common.Address
}

type allowanceKey struct {
	token, owner, spender common.Address
}

// Chain holds token state. All amounts are stored by value; callers never
// share big.Int instances with the chain.
type Chain struct {
	mu         sync.Mutex
	balances   map[balanceKey]*big.Int
	allowances map[allowanceKey]*big.Int
}

func New() *Chain {
	return &Chain{
		balances:   make(map[balanceKey]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
	}
}

// SetBalance overwrites owner's balance of token (test/dry-run seeding).
func (c *Chain) SetBalance(token, owner common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[balanceKey{token, owner}] = new(big.Int).Set(amount)
}

func (c *Chain) BalanceOf(token, owner common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.balanceLocked(token, owner)), nil
}

func (c *Chain) Allowance(token, owner, spender common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.allowanceLocked(token, owner, spender)), nil
}

// ApproveFrom sets (not raises) spender's allowance from owner.
func (c *Chain) ApproveFrom(token, owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("chainsim: approve amount missing or negative")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allowances[allowanceKey{token, owner, spender}] = new(big.Int).Set(amount)
	return nil
}

// Transfer moves amount of token from one owner to another.
func (c *Chain) Transfer(token, from, to common.Address, amount *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transferLocked(token, from, to, amount)
}

// TransferFrom moves amount from `from` to `to` on behalf of spender,
// consuming allowance. An effectively-unlimited allowance (max uint256) is
// not decremented, matching common ERC-20 behavior.
func (c *Chain) TransferFrom(token, spender, from, to common.Address, amount *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := allowanceKey{token, from, spender}
	allowed := c.allowanceLocked(token, from, spender)
	if allowed.Cmp(amount) < 0 {
		return fmt.Errorf("chainsim: allowance %s below transfer %s (token=%s spender=%s)", allowed, amount, token.Hex(), spender.Hex())
	}
	if err := c.transferLocked(token, from, to, amount); err != nil {
		return err
	}
	if allowed.Cmp(erc20.MaxUint256()) < 0 {
		c.allowances[key] = new(big.Int).Sub(allowed, amount)
	}
	return nil
}

// Mint credits amount of token to owner out of thin air (router fills).
func (c *Chain) Mint(token, owner common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bal := c.balanceLocked(token, owner)
	c.balances[balanceKey{token, owner}] = new(big.Int).Add(bal, amount)
}

func (c *Chain) balanceLocked(token, owner common.Address) *big.Int {
	if b, ok := c.balances[balanceKey{token, owner}]; ok {
		return b
	}
	return new(big.Int)
}

func (c *Chain) allowanceLocked(token, owner, spender common.Address) *big.Int {
	if a, ok := c.allowances[allowanceKey{token, owner, spender}]; ok {
		return a
	}
	return new(big.Int)
}

func (c *Chain) transferLocked(token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("chainsim: transfer amount missing or negative")
	}
	bal := c.balanceLocked(token, from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("chainsim: balance %s below transfer %s (token=%s from=%s)", bal, amount, token.Hex(), from.Hex())
	}
	c.balances[balanceKey{token, from}] = new(big.Int).Sub(bal, amount)
	toBal := c.balanceLocked(token, to)
	c.balances[balanceKey{token, to}] = new(big.Int).Add(toBal, amount)
	return nil
}

// Snapshot captures the full token state.
type Snapshot struct {
	balances   map[balanceKey]*big.Int
	allowances map[allowanceKey]*big.Int
}

func (c *Chain) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		balances:   make(map[balanceKey]*big.Int, len(c.balances)),
		allowances: make(map[allowanceKey]*big.Int, len(c.allowances)),
	}
	for k, v := range c.balances {
		s.balances[k] = new(big.Int).Set(v)
	}
	for k, v := range c.allowances {
		s.allowances[k] = new(big.Int).Set(v)
	}
	return s
}

// Restore rewinds the chain to a snapshot, discarding every change since.
func (c *Chain) Restore(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances = make(map[balanceKey]*big.Int, len(s.balances))
	c.allowances = make(map[allowanceKey]*big.Int, len(s.allowances))
	for k, v := range s.balances {
		c.balances[k] = new(big.Int).Set(v)
	}
	for k, v := range s.allowances {
		c.allowances[k] = new(big.Int).Set(v)
	}
}

// Account binds the chain to one acting address, satisfying the settlement
// engine's TokenState (Approve acts as the bound owner).
type Account struct {
	chain *Chain
	addr  common.Address
}

func (c *Chain) Account(addr common.Address) *Account {
	return &Account{chain: c, addr: addr}
}

func (a *Account) BalanceOf(token, owner common.Address) (*big.Int, error) {
	return a.chain.BalanceOf(token, owner)
}

func (a *Account) Allowance(token, owner, spender common.Address) (*big.Int, error) {
	return a.chain.Allowance(token, owner, spender)
}

func (a *Account) Approve(token, spender common.Address, amount *big.Int) error {
	return a.chain.ApproveFrom(token, a.addr, spender, amount)
}
