package erc20

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestSelectors(t *testing.T) {
	// Canonical 4-byte selectors.
	cases := []struct {
		got  []byte
		want string
	}{
		{balanceOfSelector, "70a08231"},
		{allowanceSelector, "dd62ed3e"},
		{approveSelector, "095ea7b3"},
	}
	for _, tc := range cases {
		if hex.EncodeToString(tc.got) != tc.want {
			t.Fatalf("selector=%x want %s", tc.got, tc.want)
		}
	}
}

func TestApproveCalldata(t *testing.T) {
	spender := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	data := ApproveCalldata(spender, big.NewInt(1000))
	if len(data) != 4+32+32 {
		t.Fatalf("len=%d want %d", len(data), 68)
	}
	if !bytes.Equal(data[:4], approveSelector) {
		t.Fatalf("selector=%x", data[:4])
	}
	if !bytes.Equal(data[4:36], common.LeftPadBytes(spender.Bytes(), 32)) {
		t.Fatalf("spender word=%x", data[4:36])
	}
	if got := new(big.Int).SetBytes(data[36:]); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("amount=%s want 1000", got)
	}
}

func TestMaxUint256(t *testing.T) {
	max := MaxUint256()
	if max.BitLen() != 256 {
		t.Fatalf("bitlen=%d want 256", max.BitLen())
	}
	plusOne := new(big.Int).Add(max, big.NewInt(1))
	if plusOne.BitLen() != 257 {
		t.Fatalf("max+1 bitlen=%d want 257", plusOne.BitLen())
	}
	// Calldata carrying max must still be exactly 32 bytes for the amount word.
	data := ApproveCalldata(common.Address{0x01}, max)
	if len(data) != 68 {
		t.Fatalf("len=%d want 68", len(data))
	}
}
