package watcher

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/evmstate/rpcclient"
)

// ApplyTransaction implements spec.md §4.6: converts one transaction plus
// its receipt (and optional call trace) into per-address deltas, merged
// into acc. from is the already-recovered sender (types.Sender against
// the chain's signer), matching the teacher's process_transactions.go
// derivation.
func ApplyTransaction(
	ctx context.Context,
	acc *addressAccumulator,
	tx *types.Transaction,
	from common.Address,
	receipt *types.Receipt,
	baseFee *big.Int,
	watched map[common.Address]bool,
	cache *ContractCache,
	trace *rpcclient.CallFrame,
	logger logrus.FieldLogger,
) error {
	success := receipt.Status == types.ReceiptStatusSuccessful
	value, overflow := uint256.FromBig(tx.Value())
	if overflow {
		value = new(uint256.Int).Not(new(uint256.Int))
	}

	effGasPrice := EffectiveGasPrice(tx, receipt, baseFee)
	fee, err := Fee(receipt.GasUsed, effGasPrice)
	if err != nil {
		logger.WithError(err).WithField("tx", tx.Hash()).Warn("fee overflow, capping at u256 max")
	}

	to := tx.To()

	// Sender accounting: nonce and fee are always charged, value only on
	// success (a revert consumes gas but not the transferred value).
	if watched[from] {
		acc.bumpNonce(from)
		acc.bumpTxCount(from)
		acc.addFee(from, fee)
		acc.addMinus(from, fee)
		if success {
			acc.addMinus(from, value)
		}
	}

	// Receiver accounting: only the top-level EOA credit path; contract
	// recipients and internal transfers are covered exclusively by the
	// trace walk below, to avoid double-counting.
	if success && value.Sign() > 0 && len(tx.Data()) == 0 && to != nil && watched[*to] {
		isContract, err := cache.IsContract(ctx, *to)
		if err != nil {
			logger.WithError(err).WithField("addr", to).Warn("contract probe failed, treating as EOA")
			isContract = false
		}
		if !isContract {
			acc.addPlus(*to, value)
			acc.bumpTxCount(*to)
		}
	}

	// Internal credits from successful sub-calls. A missing or malformed
	// trace is logged and treated as "no internal credits"; it never
	// fails the block.
	if success && trace != nil {
		WalkInternalCredits(trace, watched, func(addr common.Address, v *uint256.Int) {
			acc.addPlus(addr, v)
			acc.bumpTxCount(addr)
		})
	}

	return nil
}
