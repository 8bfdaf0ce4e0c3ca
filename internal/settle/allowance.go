package settle

import (
	"fmt"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flasharb/internal/erc20"
)

// TokenState is the engine's view of ERC-20 state. Implementations act on
// behalf of one owner account (the settlement holder) for Approve.
type TokenState interface {
	BalanceOf(token, owner common.Address) (*big.Int, error)
	Allowance(token, owner, spender common.Address) (*big.Int, error)
	Approve(token, spender common.Address, amount *big.Int) error
}

// AllowanceManager grants spend authorization before swaps. Grants are
// persistent and never lowered here; when a top-up is needed it goes straight
// to the maximum representable value so repeated settlements skip the grant.
type AllowanceManager struct {
	state TokenState
	owner common.Address
	logf  func(format string, args ...any)
}

func NewAllowanceManager(state TokenState, owner common.Address) *AllowanceManager {
	return &AllowanceManager{state: state, owner: owner, logf: log.Printf}
}

// SetLogf replaces the observation sink (default log.Printf).
func (m *AllowanceManager) SetLogf(logf func(format string, args ...any)) {
	if logf != nil {
		m.logf = logf
	}
}

// Ensure makes sure spender may move at least amount of token from the owner.
// Idempotent: a sufficient existing allowance issues no grant call.
func (m *AllowanceManager) Ensure(token, spender common.Address, amount *big.Int) error {
	before, err := m.state.Allowance(token, m.owner, spender)
	if err != nil {
		return fmt.Errorf("%w: read allowance for %s: %v", ErrApprovalFailed, spender.Hex(), err)
	}
	if before.Cmp(amount) >= 0 {
		m.logf("[allow] token=%s spender=%s sufficient (have=%s need=%s)", token.Hex(), spender.Hex(), before, amount)
		return nil
	}

	if err := m.state.Approve(token, spender, erc20.MaxUint256()); err != nil {
		return fmt.Errorf("%w: approve %s on %s: %v", ErrApprovalFailed, spender.Hex(), token.Hex(), err)
	}

	after, err := m.state.Allowance(token, m.owner, spender)
	if err != nil {
		return fmt.Errorf("%w: re-read allowance for %s: %v", ErrApprovalFailed, spender.Hex(), err)
	}
	m.logf("[allow] token=%s spender=%s granted before=%s after=%s", token.Hex(), spender.Hex(), before, after)
	if after.Cmp(amount) < 0 {
		return fmt.Errorf("%w: allowance still below %s after grant", ErrApprovalFailed, amount)
	}
	return nil
}
