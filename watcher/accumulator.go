package watcher

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/ethpandaops/evmstate/store/codec"
)

// addressAccumulator is the watcher's in-memory per-block accumulator for
// ETH deltas, merged by address as transactions are applied. Cleared
// after a successful commit, per spec.md §4.9.
type addressAccumulator struct {
	entries map[common.Address]*codec.BlockDelta
}

func newAddressAccumulator() *addressAccumulator {
	return &addressAccumulator{entries: make(map[common.Address]*codec.BlockDelta)}
}

func (a *addressAccumulator) entry(addr common.Address) *codec.BlockDelta {
	d, ok := a.entries[addr]
	if !ok {
		d = &codec.BlockDelta{DeltaPlus: new(uint256.Int), DeltaMinus: new(uint256.Int), FeePaid: new(uint256.Int)}
		a.entries[addr] = d
	}
	return d
}

func (a *addressAccumulator) addPlus(addr common.Address, v *uint256.Int) {
	e := a.entry(addr)
	e.DeltaPlus = new(uint256.Int).Add(e.DeltaPlus, v)
}

func (a *addressAccumulator) addMinus(addr common.Address, v *uint256.Int) {
	e := a.entry(addr)
	e.DeltaMinus = new(uint256.Int).Add(e.DeltaMinus, v)
}

func (a *addressAccumulator) addFee(addr common.Address, v *uint256.Int) {
	e := a.entry(addr)
	e.FeePaid = new(uint256.Int).Add(e.FeePaid, v)
}

func (a *addressAccumulator) bumpNonce(addr common.Address) {
	a.entry(addr).NonceDelta++
}

func (a *addressAccumulator) bumpTxCount(addr common.Address) {
	a.entry(addr).TxCount++
}

func (a *addressAccumulator) isEmpty() bool { return len(a.entries) == 0 }

// tokenAccumulator is the per-block accumulator for ERC20 deltas, keyed
// by (token, owner).
type tokenAccumulator struct {
	entries map[tokenOwner]*codec.Erc20Delta
}

type tokenOwner struct {
	token common.Address
	owner common.Address
}

func newTokenAccumulator() *tokenAccumulator {
	return &tokenAccumulator{entries: make(map[tokenOwner]*codec.Erc20Delta)}
}

func (t *tokenAccumulator) entry(token, owner common.Address) *codec.Erc20Delta {
	k := tokenOwner{token: token, owner: owner}
	d, ok := t.entries[k]
	if !ok {
		d = &codec.Erc20Delta{DeltaPlus: new(uint256.Int), DeltaMinus: new(uint256.Int)}
		t.entries[k] = d
	}
	return d
}

func (t *tokenAccumulator) credit(token, owner common.Address, v *uint256.Int) {
	e := t.entry(token, owner)
	e.DeltaPlus = new(uint256.Int).Add(e.DeltaPlus, v)
	e.TxCount++
}

func (t *tokenAccumulator) debit(token, owner common.Address, v *uint256.Int) {
	e := t.entry(token, owner)
	e.DeltaMinus = new(uint256.Int).Add(e.DeltaMinus, v)
	e.TxCount++
}

func (t *tokenAccumulator) isEmpty() bool { return len(t.entries) == 0 }
