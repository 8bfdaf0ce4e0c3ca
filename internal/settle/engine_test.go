package settle_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"flasharb/internal/chainsim"
	"flasharb/internal/settle"
)

var (
	selfAddr   = common.HexToAddress("0x0000000000000000000000000000000000000001")
	poolAddr   = common.HexToAddress("0x0000000000000000000000000000000000000002")
	routerAddr = common.HexToAddress("0x0000000000000000000000000000000000000003")
	proxyAddr  = common.HexToAddress("0x0000000000000000000000000000000000000004")
	loanToken  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	destToken  = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

type world struct {
	chain  *chainsim.Chain
	pool   *chainsim.Pool
	router *chainsim.ScriptedRouter
	ledger *settle.Ledger
	engine *settle.Engine
}

// newWorld builds a sim seeded with the given reserve: a pool lending
// loanToken at 90 bps premium and a router that swaps 500 loanToken for
// deliver destToken.
func newWorld(t *testing.T, reserve, deliver int64) *world {
	t.Helper()

	chain := chainsim.New()
	chain.SetBalance(loanToken, selfAddr, big.NewInt(reserve))

	pool := chainsim.NewPool(chain, poolAddr, loanToken, 90)
	pool.Fund(big.NewInt(1_000_000))

	router := chainsim.NewScriptedRouter(chain, routerAddr, proxyAddr, loanToken, destToken, selfAddr, big.NewInt(500), big.NewInt(deliver))

	ledger := settle.NewLedger()
	engine, err := settle.New(settle.Config{
		Self:          selfAddr,
		Pool:          poolAddr,
		LoanAsset:     loanToken,
		DestAsset:     destToken,
		TransferProxy: proxyAddr,
	}, chain.Account(selfAddr), router, ledger)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	engine.Allowances().SetLogf(func(string, ...any) {})

	return &world{chain: chain, pool: pool, router: router, ledger: ledger, engine: engine}
}

func encodeParams(t *testing.T, minOut int64) []byte {
	t.Helper()
	blob, err := settle.Params{
		Router:       routerAddr,
		SwapCalldata: []byte{0xde, 0xad, 0xbe, 0xef},
		MinOut:       big.NewInt(minOut),
	}.Encode()
	if err != nil {
		t.Fatalf("encode params: %v", err)
	}
	return blob
}

func TestSettlement_Success(t *testing.T) {
	// principal=1000, premium=9, reserve=509: the swap consumes 500, leaving
	// 1009 which exactly covers repayment.
	w := newWorld(t, 509, 490)
	blob := encodeParams(t, 480)

	if err := w.pool.Flash(w.engine, selfAddr, selfAddr, big.NewInt(1000), blob); err != nil {
		t.Fatalf("flash: %v", err)
	}

	if got := w.ledger.Total(); got.Cmp(big.NewInt(490)) != 0 {
		t.Fatalf("ledger=%s want 490", got)
	}
	destBal, _ := w.chain.BalanceOf(destToken, selfAddr)
	if destBal.Cmp(big.NewInt(490)) != 0 {
		t.Fatalf("dest balance=%s want 490", destBal)
	}
	// Loan asset fully repaid: reserve 509 + 1000 - 500 swapped - 1009 repaid.
	loanBal, _ := w.chain.BalanceOf(loanToken, selfAddr)
	if loanBal.Sign() != 0 {
		t.Fatalf("loan balance=%s want 0", loanBal)
	}
}

func TestSettlement_SlippageExceeded(t *testing.T) {
	// minAcceptable=480 but the router only delivers 470.
	w := newWorld(t, 509, 470)
	blob := encodeParams(t, 480)

	before, _ := w.chain.BalanceOf(loanToken, selfAddr)
	err := w.pool.Flash(w.engine, selfAddr, selfAddr, big.NewInt(1000), blob)
	if !errors.Is(err, settle.ErrSlippageExceeded) {
		t.Fatalf("err=%v want ErrSlippageExceeded", err)
	}

	if got := w.ledger.Total(); got.Sign() != 0 {
		t.Fatalf("ledger=%s want 0 after abort", got)
	}
	after, _ := w.chain.BalanceOf(loanToken, selfAddr)
	if after.Cmp(before) != 0 {
		t.Fatalf("reserve changed across abort: %s -> %s", before, after)
	}
	destBal, _ := w.chain.BalanceOf(destToken, selfAddr)
	if destBal.Sign() != 0 {
		t.Fatalf("dest balance=%s want 0 after rollback", destBal)
	}
}

func TestSettlement_InsufficientReserve(t *testing.T) {
	// Swap succeeds and clears slippage, but 400 + 1000 - 500 = 900 < 1009.
	w := newWorld(t, 400, 490)
	blob := encodeParams(t, 480)

	err := w.pool.Flash(w.engine, selfAddr, selfAddr, big.NewInt(1000), blob)
	if !errors.Is(err, settle.ErrInsufficientReserve) {
		t.Fatalf("err=%v want ErrInsufficientReserve", err)
	}
	if got := w.ledger.Total(); got.Sign() != 0 {
		t.Fatalf("ledger=%s want 0 after abort", got)
	}
}

func TestSettlement_Unauthorized(t *testing.T) {
	w := newWorld(t, 509, 490)
	blob := encodeParams(t, 480)

	// Direct invocation bypassing the pool.
	ok, err := w.engine.OnFlashLoan(common.Address{0x99}, loanToken, big.NewInt(1000), big.NewInt(9), selfAddr, blob)
	if ok || !errors.Is(err, settle.ErrUnauthorized) {
		t.Fatalf("ok=%v err=%v want ErrUnauthorized", ok, err)
	}
}

func TestSettlement_WrongAsset(t *testing.T) {
	w := newWorld(t, 509, 490)
	blob := encodeParams(t, 480)

	ok, err := w.engine.OnFlashLoan(poolAddr, destToken, big.NewInt(1000), big.NewInt(9), selfAddr, blob)
	if ok || !errors.Is(err, settle.ErrWrongAsset) {
		t.Fatalf("ok=%v err=%v want ErrWrongAsset", ok, err)
	}
}

func TestSettlement_MalformedParams(t *testing.T) {
	w := newWorld(t, 509, 490)

	err := w.pool.Flash(w.engine, selfAddr, selfAddr, big.NewInt(1000), []byte{0x01, 0x02})
	if !errors.Is(err, settle.ErrDecodeParams) {
		t.Fatalf("err=%v want ErrDecodeParams", err)
	}
}

func TestSettlement_SwapRevertReason(t *testing.T) {
	w := newWorld(t, 509, 490)
	blob := encodeParams(t, 480)
	w.router.FailWith = &settle.RevertError{Data: nil}

	err := w.pool.Flash(w.engine, selfAddr, selfAddr, big.NewInt(1000), blob)
	var swapErr *settle.SwapError
	if !errors.As(err, &swapErr) {
		t.Fatalf("err=%v want *SwapError", err)
	}
	if swapErr.Reason != "reverted silently" {
		t.Fatalf("reason=%q", swapErr.Reason)
	}
	if got := w.ledger.Total(); got.Sign() != 0 {
		t.Fatalf("ledger=%s want 0", got)
	}
}

func TestSettlement_LedgerMonotonicAcrossAttempts(t *testing.T) {
	w := newWorld(t, 509, 490)

	// Success, then a slippage failure, then success again.
	if err := w.pool.Flash(w.engine, selfAddr, selfAddr, big.NewInt(1000), encodeParams(t, 480)); err != nil {
		t.Fatalf("flash 1: %v", err)
	}
	first := w.ledger.Total()

	// Re-seed the reserve consumed by the first settlement.
	w.chain.SetBalance(loanToken, selfAddr, big.NewInt(509))
	w.router.DeliverAmount = big.NewInt(470)
	if err := w.pool.Flash(w.engine, selfAddr, selfAddr, big.NewInt(1000), encodeParams(t, 480)); err == nil {
		t.Fatalf("flash 2: expected slippage abort")
	}
	if got := w.ledger.Total(); got.Cmp(first) != 0 {
		t.Fatalf("ledger moved on failed attempt: %s -> %s", first, got)
	}

	w.router.DeliverAmount = big.NewInt(500)
	if err := w.pool.Flash(w.engine, selfAddr, selfAddr, big.NewInt(1000), encodeParams(t, 480)); err != nil {
		t.Fatalf("flash 3: %v", err)
	}
	if got := w.ledger.Total(); got.Cmp(new(big.Int).Add(first, big.NewInt(500))) != 0 {
		t.Fatalf("ledger=%s want %s", got, new(big.Int).Add(first, big.NewInt(500)))
	}
}

func TestSettlement_AllowancePersistsAcrossLoans(t *testing.T) {
	w := newWorld(t, 509, 490)

	if err := w.pool.Flash(w.engine, selfAddr, selfAddr, big.NewInt(1000), encodeParams(t, 480)); err != nil {
		t.Fatalf("flash 1: %v", err)
	}
	routerAllow1, _ := w.chain.Allowance(loanToken, selfAddr, routerAddr)
	if routerAllow1.Sign() == 0 {
		t.Fatalf("router allowance not persisted")
	}

	w.chain.SetBalance(loanToken, selfAddr, big.NewInt(509))
	if err := w.pool.Flash(w.engine, selfAddr, selfAddr, big.NewInt(1000), encodeParams(t, 480)); err != nil {
		t.Fatalf("flash 2: %v", err)
	}
	routerAllow2, _ := w.chain.Allowance(loanToken, selfAddr, routerAddr)
	if routerAllow2.Cmp(routerAllow1) != 0 {
		t.Fatalf("allowance re-granted: %s -> %s", routerAllow1, routerAllow2)
	}
}
