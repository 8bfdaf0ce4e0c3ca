package swapbuild

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"flasharb/internal/aggr"
	"flasharb/internal/settle"
)

func TestMinOut(t *testing.T) {
	cases := []struct {
		dest string
		bps  uint64
		want string
	}{
		{"2000", 0, "2000"},
		{"2000", 50, "1990"},
		{"2000", 10000, "0"},
		{"999", 1, "998"},
		{"1000", 9999, "0"},
		{"1000000000000000000", 30, "997000000000000000"},
	}
	for _, tc := range cases {
		dest, _ := new(big.Int).SetString(tc.dest, 10)
		got, err := MinOut(dest, tc.bps)
		if err != nil {
			t.Fatalf("MinOut(%s,%d): %v", tc.dest, tc.bps, err)
		}
		if got.String() != tc.want {
			t.Fatalf("MinOut(%s,%d)=%s want %s", tc.dest, tc.bps, got, tc.want)
		}
		if got.Cmp(dest) > 0 {
			t.Fatalf("MinOut(%s,%d)=%s exceeds dest", tc.dest, tc.bps, got)
		}
	}
}

func TestMinOut_Rejects(t *testing.T) {
	if _, err := MinOut(big.NewInt(1000), 10001); err == nil {
		t.Fatalf("expected slippage bound error")
	}
	if _, err := MinOut(nil, 50); err == nil {
		t.Fatalf("expected nil dest error")
	}
	if _, err := MinOut(big.NewInt(0), 50); err == nil {
		t.Fatalf("expected zero dest error")
	}
}

type fakeSwapBuilder struct {
	gotMin *big.Int
	res    aggr.BuildResult
	err    error
}

func (f *fakeSwapBuilder) BuildSwap(ctx context.Context, q aggr.Quote, minDestAmount *big.Int, slippageBps uint64, user common.Address, deadline time.Time) (aggr.BuildResult, error) {
	f.gotMin = new(big.Int).Set(minDestAmount)
	return f.res, f.err
}

func TestBuild(t *testing.T) {
	fake := &fakeSwapBuilder{res: aggr.BuildResult{
		To:   common.HexToAddress("0x00000000000000000000000000000000000000ee"),
		Data: []byte{0x01, 0x02},
	}}
	b, err := NewBuilder(fake, 50, time.Minute)
	if err != nil {
		t.Fatalf("builder: %v", err)
	}

	q := aggr.Quote{
		SrcAmount:  big.NewInt(1000),
		DestAmount: big.NewInt(2000),
		Raw:        []byte(`{}`),
	}
	params, blob, err := b.Build(context.Background(), q, common.Address{0x01})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if fake.gotMin.String() != "1990" {
		t.Fatalf("builder sent min=%s want 1990", fake.gotMin)
	}
	if params.MinOut.String() != "1990" {
		t.Fatalf("minOut=%s want 1990", params.MinOut)
	}

	decoded, err := settle.DecodeParams(blob)
	if err != nil {
		t.Fatalf("decode blob: %v", err)
	}
	if decoded.Router != fake.res.To || decoded.MinOut.Cmp(params.MinOut) != 0 {
		t.Fatalf("decoded=%+v", decoded)
	}
}
