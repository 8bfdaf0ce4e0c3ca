// Package erc20 builds and reads raw ERC-20 calls without a generated binding.
// The three selectors the bot needs are tiny; hand-rolled call data keeps the
// hot path free of ABI reflection.
package erc20

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	balanceOfSelector = crypto.Keccak256([]byte("balanceOf(address)"))[:4]
	allowanceSelector = crypto.Keccak256([]byte("allowance(address,address)"))[:4]
	approveSelector   = crypto.Keccak256([]byte("approve(address,uint256)"))[:4]
)

// MaxUint256 returns 2^256-1 as a fresh big.Int (the "unlimited" allowance).
func MaxUint256() *big.Int {
	one := big.NewInt(1)
	max := new(big.Int).Lsh(one, 256)
	return max.Sub(max, one)
}

// BalanceOfCalldata returns call data for balanceOf(owner).
func BalanceOfCalldata(owner common.Address) []byte {
	data := make([]byte, 0, 4+32)
	data = append(data, balanceOfSelector...)
	data = append(data, common.LeftPadBytes(owner.Bytes(), 32)...)
	return data
}

// AllowanceCalldata returns call data for allowance(owner, spender).
func AllowanceCalldata(owner, spender common.Address) []byte {
	data := make([]byte, 0, 4+32+32)
	data = append(data, allowanceSelector...)
	data = append(data, common.LeftPadBytes(owner.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(spender.Bytes(), 32)...)
	return data
}

// ApproveCalldata returns call data for approve(spender, amount).
func ApproveCalldata(spender common.Address, amount *big.Int) []byte {
	data := make([]byte, 0, 4+32+32)
	data = append(data, approveSelector...)
	data = append(data, common.LeftPadBytes(spender.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return data
}

// Caller is the read-only subset of ethclient.Client used here.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// BalanceOf reads token.balanceOf(owner).
func BalanceOf(ctx context.Context, caller Caller, token, owner common.Address) (*big.Int, error) {
	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: BalanceOfCalldata(owner)}, nil)
	if err != nil {
		return nil, fmt.Errorf("balanceOf(%s) on %s: %w", owner.Hex(), token.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("balanceOf on %s returned empty result", token.Hex())
	}
	return new(big.Int).SetBytes(out), nil
}

// Allowance reads token.allowance(owner, spender).
func Allowance(ctx context.Context, caller Caller, token, owner, spender common.Address) (*big.Int, error) {
	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: AllowanceCalldata(owner, spender)}, nil)
	if err != nil {
		return nil, fmt.Errorf("allowance(%s,%s) on %s: %w", owner.Hex(), spender.Hex(), token.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("allowance on %s returned empty result", token.Hex())
	}
	return new(big.Int).SetBytes(out), nil
}
