// Package settle implements the atomic settlement of one flash loan: swap a
// fraction of the principal through the quoted router, enforce slippage and
// repayment bounds, and record profit. The host that invokes the callback
// owns atomicity: any returned error must discard every state change made
// during the callback.
package settle

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flasharb/internal/bpsmath"
)

// Router executes opaque swap call data against a target contract. A failed
// call should surface its failure payload as a *RevertError when available.
type Router interface {
	Call(target common.Address, calldata []byte) error
}

// Config fixes the engine's collaborators and policy. All addresses and the
// swap split are injected here; nothing is a literal in the engine.
type Config struct {
	// Self is the account holding the borrowed funds and the reserve.
	Self common.Address
	// Pool is the only caller allowed to invoke the settlement callback.
	Pool common.Address
	// LoanAsset is the single asset loans are denominated in.
	LoanAsset common.Address
	// DestAsset is the swap's destination asset; profit is measured in it.
	DestAsset common.Address
	// TransferProxy is the secondary spender some aggregators pull through.
	TransferProxy common.Address
	// SwapFractionBps is the share of the principal that is swapped
	// (default 5000 = half). The rest plus the pre-funded reserve must
	// cover principal+premium.
	SwapFractionBps uint64
}

const DefaultSwapFractionBps = 5000

func (c Config) validate() error {
	for _, f := range []struct {
		name string
		addr common.Address
	}{
		{"self", c.Self},
		{"pool", c.Pool},
		{"loan asset", c.LoanAsset},
		{"dest asset", c.DestAsset},
		{"transfer proxy", c.TransferProxy},
	} {
		if f.addr == (common.Address{}) {
			return fmt.Errorf("settle config: %s address missing", f.name)
		}
	}
	if c.SwapFractionBps == 0 || c.SwapFractionBps > bpsmath.Scale {
		return fmt.Errorf("settle config: swap fraction %d bps out of (0,%d]", c.SwapFractionBps, bpsmath.Scale)
	}
	return nil
}

// Engine runs the settlement state machine. One instance handles one loan at
// a time; the pool invokes the callback synchronously inside its own
// transaction.
type Engine struct {
	cfg    Config
	state  TokenState
	router Router
	allow  *AllowanceManager
	ledger *Ledger
}

func New(cfg Config, state TokenState, router Router, ledger *Ledger) (*Engine, error) {
	if cfg.SwapFractionBps == 0 {
		cfg.SwapFractionBps = DefaultSwapFractionBps
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if state == nil || router == nil || ledger == nil {
		return nil, fmt.Errorf("settle: state, router and ledger are required")
	}
	return &Engine{
		cfg:    cfg,
		state:  state,
		router: router,
		allow:  NewAllowanceManager(state, cfg.Self),
		ledger: ledger,
	}, nil
}

// Allowances exposes the engine's allowance manager (observation logging).
func (e *Engine) Allowances() *AllowanceManager {
	return e.allow
}

// OnFlashLoan is the settlement callback. It must only be reached through the
// lending pool; the first check enforces that. The return value is the
// success signal the pool expects — every failure is an error, never (false,
// nil).
func (e *Engine) OnFlashLoan(caller, asset common.Address, principal, premium *big.Int, initiator common.Address, blob []byte) (bool, error) {
	_ = initiator // carried by the pool ABI, unused here

	if caller != e.cfg.Pool {
		return false, fmt.Errorf("%w: caller=%s", ErrUnauthorized, caller.Hex())
	}
	if asset != e.cfg.LoanAsset {
		return false, fmt.Errorf("%w: asset=%s", ErrWrongAsset, asset.Hex())
	}
	if principal == nil || principal.Sign() <= 0 {
		return false, fmt.Errorf("%w: principal must be positive", ErrDecodeParams)
	}
	if premium == nil || premium.Sign() < 0 {
		return false, fmt.Errorf("%w: premium must be non-negative", ErrDecodeParams)
	}

	params, err := DecodeParams(blob)
	if err != nil {
		return false, err
	}

	swapAmount := bpsmath.ApplyBpsBig(principal, e.cfg.SwapFractionBps)
	if err := e.allow.Ensure(e.cfg.LoanAsset, params.Router, swapAmount); err != nil {
		return false, err
	}
	if err := e.allow.Ensure(e.cfg.LoanAsset, e.cfg.TransferProxy, swapAmount); err != nil {
		return false, err
	}

	preBal, err := e.state.BalanceOf(e.cfg.DestAsset, e.cfg.Self)
	if err != nil {
		return false, fmt.Errorf("read pre-swap balance: %w", err)
	}

	if err := e.router.Call(params.Router, params.SwapCalldata); err != nil {
		return false, &SwapError{Reason: swapFailureReason(err)}
	}

	postBal, err := e.state.BalanceOf(e.cfg.DestAsset, e.cfg.Self)
	if err != nil {
		return false, fmt.Errorf("read post-swap balance: %w", err)
	}
	received := new(big.Int).Sub(postBal, preBal)
	if received.Cmp(params.MinOut) < 0 {
		return false, fmt.Errorf("%w: received=%s min=%s", ErrSlippageExceeded, received, params.MinOut)
	}

	repay := new(big.Int).Add(principal, premium)
	reserve, err := e.state.BalanceOf(e.cfg.LoanAsset, e.cfg.Self)
	if err != nil {
		return false, fmt.Errorf("read reserve balance: %w", err)
	}
	if reserve.Cmp(repay) < 0 {
		return false, fmt.Errorf("%w: have=%s need=%s", ErrInsufficientReserve, reserve, repay)
	}

	// The pool pulls exactly repay after the callback returns.
	if err := e.state.Approve(e.cfg.LoanAsset, e.cfg.Pool, repay); err != nil {
		return false, fmt.Errorf("%w: approve pool for repayment: %v", ErrApprovalFailed, err)
	}

	e.ledger.Add(received)
	return true, nil
}

func swapFailureReason(err error) string {
	var rev *RevertError
	if errors.As(err, &rev) {
		return RevertReason(rev.Data)
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return silentRevertReason
}
