package evaluate

import (
	"testing"

	"github.com/shopspring/decimal"

	"flasharb/internal/aggr"
)

func TestEstimateProfitUSD(t *testing.T) {
	q := aggr.Quote{SrcUSD: "96.00", DestUSD: "100.50"}
	got := EstimateProfitUSD(q)
	if !got.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("profit=%s want 4.5", got)
	}
}

func TestEstimateProfitUSD_Negative(t *testing.T) {
	q := aggr.Quote{SrcUSD: "98.00", DestUSD: "97.25"}
	got := EstimateProfitUSD(q)
	if !got.Equal(decimal.RequireFromString("-0.75")) {
		t.Fatalf("profit=%s want -0.75", got)
	}
}

func TestEstimateProfitUSD_GarbledFields(t *testing.T) {
	cases := []aggr.Quote{
		{},
		{SrcUSD: "96.00"},
		{SrcUSD: "abc", DestUSD: "100.50"},
		{SrcUSD: "96.00", DestUSD: ""},
	}
	for i, q := range cases {
		if got := EstimateProfitUSD(q); !got.Equal(SentinelLoss) {
			t.Fatalf("case %d: got=%s want sentinel", i, got)
		}
	}
}

func TestProfitable_Threshold(t *testing.T) {
	threshold := decimal.RequireFromString("3.80")

	ok, profit := Profitable(aggr.Quote{SrcUSD: "96.00", DestUSD: "100.50"}, threshold)
	if !ok || !profit.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("ok=%v profit=%s want true 4.5", ok, profit)
	}

	ok, profit = Profitable(aggr.Quote{SrcUSD: "98.00", DestUSD: "100.50"}, threshold)
	if ok || !profit.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("ok=%v profit=%s want false 2.5", ok, profit)
	}
}
