// Package evaluate decides whether a priced route is worth settling.
package evaluate

import (
	"strings"

	"github.com/shopspring/decimal"

	"flasharb/internal/aggr"
)

// SentinelLoss is returned whenever a quote cannot be valued. It is far below
// any sane profit threshold, so a garbled quote is always treated as
// unprofitable instead of crashing the cycle.
var SentinelLoss = decimal.NewFromInt(-1_000_000_000)

// EstimateProfitUSD returns destUSD - srcUSD for the quote. The aggregator
// already denominates both sides in USD; execution cost is not part of this
// estimate.
func EstimateProfitUSD(q aggr.Quote) decimal.Decimal {
	src, err := decimal.NewFromString(strings.TrimSpace(q.SrcUSD))
	if err != nil {
		return SentinelLoss
	}
	dest, err := decimal.NewFromString(strings.TrimSpace(q.DestUSD))
	if err != nil {
		return SentinelLoss
	}
	return dest.Sub(src)
}

// Profitable reports whether the quote clears the USD threshold, alongside
// the estimate used for the decision.
func Profitable(q aggr.Quote, thresholdUSD decimal.Decimal) (bool, decimal.Decimal) {
	profit := EstimateProfitUSD(q)
	return profit.GreaterThanOrEqual(thresholdUSD), profit
}
