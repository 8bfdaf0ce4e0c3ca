// Package chainwatch decodes the executor contract's settlement logs from
// mined receipts.
package chainwatch

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// FlashLoanSettled(address indexed asset, uint256 principal, uint256 premium, uint256 received)
var SettledTopic = crypto.Keccak256Hash([]byte("FlashLoanSettled(address,uint256,uint256,uint256)"))

type SettledEvent struct {
	TxHash      common.Hash
	BlockNumber uint64
	LogIndex    uint

	Asset     common.Address
	Principal *big.Int
	Premium   *big.Int
	Received  *big.Int
}

// DecodeSettledLog parses one FlashLoanSettled log.
func DecodeSettledLog(vLog types.Log) (*SettledEvent, error) {
	// topics:
	// 0: event sig
	// 1: asset (address indexed)
	if len(vLog.Topics) < 2 {
		return nil, fmt.Errorf("unexpected topics len=%d", len(vLog.Topics))
	}
	if vLog.Topics[0] != SettledTopic {
		return nil, fmt.Errorf("not a FlashLoanSettled log")
	}
	if len(vLog.Data) < 32*3 {
		return nil, fmt.Errorf("unexpected data len=%d", len(vLog.Data))
	}

	return &SettledEvent{
		TxHash:      vLog.TxHash,
		BlockNumber: vLog.BlockNumber,
		LogIndex:    vLog.Index,
		Asset:       common.BytesToAddress(vLog.Topics[1].Bytes()),
		Principal:   new(big.Int).SetBytes(vLog.Data[0:32]),
		Premium:     new(big.Int).SetBytes(vLog.Data[32:64]),
		Received:    new(big.Int).SetBytes(vLog.Data[64:96]),
	}, nil
}

// FindSettled scans a receipt for the executor's settlement log. Returns
// (nil, false) when the receipt carries none.
func FindSettled(receipt *types.Receipt, executor common.Address) (*SettledEvent, bool) {
	if receipt == nil {
		return nil, false
	}
	for _, vLog := range receipt.Logs {
		if vLog == nil || vLog.Removed {
			continue
		}
		if vLog.Address != executor {
			continue
		}
		if len(vLog.Topics) == 0 || vLog.Topics[0] != SettledTopic {
			continue
		}
		ev, err := DecodeSettledLog(*vLog)
		if err != nil {
			continue
		}
		return ev, true
	}
	return nil, false
}
