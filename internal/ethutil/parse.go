package ethutil

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress parses a single hex address, rejecting blanks and the zero
// address (which almost always indicates a missing config value).
func ParseAddress(raw string) (common.Address, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return common.Address{}, fmt.Errorf("address missing")
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid hex address %q", s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("zero address %q", s)
	}
	return addr, nil
}

// ParseAmountList parses a list of positive base-unit integers from a single
// string. Supported separators: commas and whitespace, plus semicolons.
// Duplicates are ignored (first occurrence wins); order is preserved.
//
// Returns (nil, nil) if raw is empty/whitespace.
func ParseAmountList(raw string) ([]*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		switch r {
		case ',', ';', ' ', '\n', '\r', '\t':
			return true
		default:
			return false
		}
	})

	out := make([]*big.Int, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		s := strings.TrimSpace(part)
		if s == "" {
			continue
		}
		// Underscore grouping (1_000_000) is allowed for readability.
		s = strings.ReplaceAll(s, "_", "")

		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("invalid amount %q in %q", part, raw)
		}
		if v.Sign() <= 0 {
			return nil, fmt.Errorf("amount must be positive, got %q in %q", part, raw)
		}

		key := v.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no amounts found in %q", raw)
	}
	return out, nil
}
