// Package bpsmath provides integer basis-point scaling helpers.
//
// All math is exact integer arithmetic; fractional tolerances must be
// converted to whole basis points (1 bp = 1/10000) before they reach this
// package so results are deterministic across platforms.
package bpsmath

import (
	"math"
	"math/big"
	"math/bits"
)

// Scale is the basis-point denominator.
const Scale = 10_000

// MulDivU64 returns floor(a*b/div), exact even when a*b overflows 64 bits.
func MulDivU64(a, b, div uint64) uint64 {
	if div == 0 {
		panic("bpsmath: MulDivU64 div=0")
	}

	hi, lo := bits.Mul64(a, b)
	if hi == 0 {
		return lo / div
	}

	// 128-bit intermediate: fall back to big.Int for the exact quotient.
	var x big.Int
	x.SetUint64(hi)
	x.Lsh(&x, 64)

	var y big.Int
	y.SetUint64(lo)
	x.Add(&x, &y)

	var d big.Int
	d.SetUint64(div)
	x.Div(&x, &d)

	if x.IsUint64() {
		return x.Uint64()
	}
	return math.MaxUint64
}

// ApplyBps returns floor(amount * bps / Scale) for uint64 amounts.
func ApplyBps(amount uint64, bps uint64) uint64 {
	return MulDivU64(amount, bps, Scale)
}

// ApplyBpsBig returns floor(amount * bps / Scale) as a fresh big.Int.
// amount must be non-negative.
func ApplyBpsBig(amount *big.Int, bps uint64) *big.Int {
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return out.Div(out, big.NewInt(Scale))
}

// RetainAfterBps returns floor(amount * (Scale - bps) / Scale): the amount
// retained after shaving off a bps-sized tolerance. bps > Scale is clamped
// to Scale (retain nothing).
func RetainAfterBps(amount *big.Int, bps uint64) *big.Int {
	if bps >= Scale {
		return new(big.Int)
	}
	return ApplyBpsBig(amount, Scale-bps)
}
