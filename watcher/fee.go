// Package watcher implements the block-processing state machine: the fee
// calculator, contract cache, apply logic, call-trace parser, ERC20
// tracker and the Initialize/Tail loop that ties them together and
// commits per-block batches to the store. Grounded on the teacher's
// indexer/execution/txindexer package, generalized from its DB-backed
// account/balance bookkeeping to the append-only delta/snapshot schema
// store.BlockBatch persists.
package watcher

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// ErrFeeOverflow is returned when gas_used * effective_gas_price would
// overflow a u256. Real-world values never reach this; callers log and
// cap the fee at u256 max per spec.md §7.
var ErrFeeOverflow = errors.New("watcher: fee computation overflowed u256")

// EffectiveGasPrice computes the effective gas price for tx given its
// receipt and the block's base fee, per spec.md §4.4:
//   - if the receipt reports EffectiveGasPrice, that value wins outright.
//   - else for EIP-1559 transactions, min(maxFeePerGas, baseFee+maxPriorityFeePerGas).
//   - else (legacy) gas_price.
func EffectiveGasPrice(tx *types.Transaction, receipt *types.Receipt, baseFee *big.Int) *uint256.Int {
	if receipt.EffectiveGasPrice != nil {
		v, overflow := uint256.FromBig(receipt.EffectiveGasPrice)
		if !overflow {
			return v
		}
	}

	if tx.Type() == types.DynamicFeeTxType || tx.Type() == types.BlobTxType {
		maxFee, _ := uint256.FromBig(tx.GasFeeCap())
		maxPriority, _ := uint256.FromBig(tx.GasTipCap())
		base := new(uint256.Int)
		if baseFee != nil {
			base, _ = uint256.FromBig(baseFee)
		}
		candidate := new(uint256.Int).Add(base, maxPriority)
		if candidate.Cmp(maxFee) > 0 {
			return maxFee
		}
		return candidate
	}

	v, _ := uint256.FromBig(tx.GasPrice())
	return v
}

// Fee computes gas_used * effective_gas_price as a u256, reporting
// ErrFeeOverflow instead of wrapping silently.
func Fee(gasUsed uint64, effectiveGasPrice *uint256.Int) (*uint256.Int, error) {
	gas := new(uint256.Int).SetUint64(gasUsed)
	fee, overflow := new(uint256.Int).MulOverflow(gas, effectiveGasPrice)
	if overflow {
		return new(uint256.Int).Not(new(uint256.Int)), ErrFeeOverflow
	}
	return fee, nil
}
