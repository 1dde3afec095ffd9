package watcher

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// transferEventSig is keccak256("Transfer(address,address,uint256)"), the
// same signature hash the teacher's TokenIndexer precomputes.
var transferEventSig = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// zeroAddress identifies mint (from) and burn (to) sides of a Transfer.
var zeroAddress common.Address

// TrackLog implements the ERC20 tracker, spec.md §4.8: rejects anything
// that isn't a 3-topic Transfer log from a watched token, then credits
// and/or debits the watched owners on either side. watchedOwners reports
// whether (token, owner) is a tracked pair; it is consulted once per
// side so a transfer between two watched owners produces both entries.
func TrackLog(acc *tokenAccumulator, log *types.Log, watchedTokens map[common.Address]bool, watchedOwners func(token, owner common.Address) bool) {
	if len(log.Topics) != 3 || !bytes.Equal(log.Topics[0].Bytes(), transferEventSig.Bytes()) {
		return
	}
	token := log.Address
	if !watchedTokens[token] {
		return
	}

	from := common.BytesToAddress(log.Topics[1].Bytes())
	to := common.BytesToAddress(log.Topics[2].Bytes())
	value := parseLogValue(log.Data)

	if from != zeroAddress && watchedOwners(token, from) {
		acc.debit(token, from, value)
	}
	if to != zeroAddress && watchedOwners(token, to) {
		acc.credit(token, to, value)
	}
}

// parseLogValue parses a 32-byte big-endian u256 from a Transfer log's
// data field, per spec.md §4.8 step 4.
func parseLogValue(data []byte) *uint256.Int {
	if len(data) < 32 {
		v := new(uint256.Int)
		if len(data) > 0 {
			var arr [32]byte
			copy(arr[32-len(data):], data)
			v.SetBytes32(arr[:])
		}
		return v
	}
	var arr [32]byte
	copy(arr[:], data[len(data)-32:])
	return new(uint256.Int).SetBytes32(arr[:])
}
