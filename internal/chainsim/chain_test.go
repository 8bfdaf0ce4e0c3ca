package chainsim

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"flasharb/internal/erc20"
)

var (
	token = common.Address{0xaa}
	alice = common.Address{0x01}
	bob   = common.Address{0x02}
	carol = common.Address{0x03}
)

func TestTransferFrom_ConsumesAllowance(t *testing.T) {
	c := New()
	c.SetBalance(token, alice, big.NewInt(100))
	if err := c.ApproveFrom(token, alice, bob, big.NewInt(60)); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := c.TransferFrom(token, bob, alice, carol, big.NewInt(40)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	left, _ := c.Allowance(token, alice, bob)
	if left.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("allowance=%s want 20", left)
	}

	if err := c.TransferFrom(token, bob, alice, carol, big.NewInt(30)); err == nil {
		t.Fatalf("expected allowance error")
	}
}

func TestTransferFrom_UnlimitedAllowanceNotDecremented(t *testing.T) {
	c := New()
	c.SetBalance(token, alice, big.NewInt(100))
	if err := c.ApproveFrom(token, alice, bob, erc20.MaxUint256()); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := c.TransferFrom(token, bob, alice, carol, big.NewInt(40)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	left, _ := c.Allowance(token, alice, bob)
	if left.Cmp(erc20.MaxUint256()) != 0 {
		t.Fatalf("unlimited allowance was decremented: %s", left)
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := New()
	c.SetBalance(token, alice, big.NewInt(100))
	snap := c.Snapshot()

	if err := c.Transfer(token, alice, bob, big.NewInt(70)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := c.ApproveFrom(token, alice, bob, big.NewInt(5)); err != nil {
		t.Fatalf("approve: %v", err)
	}

	c.Restore(snap)

	aliceBal, _ := c.BalanceOf(token, alice)
	bobBal, _ := c.BalanceOf(token, bob)
	allow, _ := c.Allowance(token, alice, bob)
	if aliceBal.Cmp(big.NewInt(100)) != 0 || bobBal.Sign() != 0 || allow.Sign() != 0 {
		t.Fatalf("restore incomplete: alice=%s bob=%s allow=%s", aliceBal, bobBal, allow)
	}
}

func TestTransfer_InsufficientBalance(t *testing.T) {
	c := New()
	c.SetBalance(token, alice, big.NewInt(10))
	if err := c.Transfer(token, alice, bob, big.NewInt(11)); err == nil {
		t.Fatalf("expected balance error")
	}
}
