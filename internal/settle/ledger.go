package settle

import (
	"math/big"
	"sync"
)

// Ledger accumulates realized profit in the swap's destination asset.
// Only the settlement engine writes it; Total is safe for any reader.
// The balance never decreases.
type Ledger struct {
	mu    sync.Mutex
	total big.Int
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Add credits amount to the ledger. Nil or non-positive amounts are ignored
// so the accumulator stays monotonic no matter what a caller hands it.
func (l *Ledger) Add(amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total.Add(&l.total, amount)
}

// Total returns a copy of the current balance.
func (l *Ledger) Total() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(&l.total)
}
