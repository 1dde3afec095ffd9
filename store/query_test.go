package store

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/evmstate/store/codec"
)

func TestGetBalancesInRangeFillForward(t *testing.T) {
	// Mirrors spec scenario 1: init at block 100 with balance 1000 wei;
	// block 101 success tx A->B value=10, gas_used=21000,
	// effective_gas_price=2 => fee=42000; delta_minus=10+42000=42010.
	s := newTestStore(t)
	var a [20]byte
	a[0] = 1

	require.NoError(t, s.WriteBlockBatch(&BlockBatch{
		Block:            100,
		NewHead:          100,
		AddressInits:     map[[20]byte]AddressInit{a: {StartBlock: 100}},
		AddressSnapshots: map[[20]byte]*uint256.Int{a: uint256.NewInt(1000)},
		AccountRecords:   map[[20]byte]*codec.AccountRecord{a: {Nonce: 0, Balance: uint256.NewInt(1000)}},
	}))

	require.NoError(t, s.WriteBlockBatch(&BlockBatch{
		Block:   101,
		NewHead: 101,
		AddressDeltas: map[[20]byte]*codec.BlockDelta{
			a: {DeltaPlus: new(uint256.Int), DeltaMinus: uint256.NewInt(42010), FeePaid: uint256.NewInt(42000), NonceDelta: 1, TxCount: 1},
		},
	}))

	require.NoError(t, s.SetHead(102))

	res, err := s.GetBalancesInRange(a, 100, 102)
	require.NoError(t, err)
	require.Len(t, res.Data, 3)
	assert.Equal(t, uint64(100), res.Data[0].Block)
	assert.Equal(t, 0, res.Data[0].Balance.Cmp(uint256.NewInt(1000)))
	wantAfterFee := new(uint256.Int).Sub(uint256.NewInt(1000), uint256.NewInt(42010))
	assert.Equal(t, uint64(101), res.Data[1].Block)
	assert.Equal(t, 0, res.Data[1].Balance.Cmp(wantAfterFee))
	assert.Equal(t, uint64(102), res.Data[2].Block)
	assert.Equal(t, 0, res.Data[2].Balance.Cmp(wantAfterFee))
}

func TestGetBalancesInRangeClampsBeforeCoverage(t *testing.T) {
	// Mirrors spec scenario 5: watch_start_block=100, request (80,120),
	// head=150 => effective_start=100, effective_end=120, message set.
	s := newTestStore(t)
	var a [20]byte
	a[0] = 2

	require.NoError(t, s.WriteBlockBatch(&BlockBatch{
		Block:            100,
		NewHead:          100,
		AddressInits:     map[[20]byte]AddressInit{a: {StartBlock: 100}},
		AddressSnapshots: map[[20]byte]*uint256.Int{a: uint256.NewInt(5000)},
	}))
	require.NoError(t, s.SetHead(150))

	res, err := s.GetBalancesInRange(a, 80, 120)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), res.EffectiveStart)
	assert.Equal(t, uint64(120), res.EffectiveEnd)
	assert.NotEmpty(t, res.Message)
	require.NotEmpty(t, res.Data)
	assert.Equal(t, uint64(100), res.Data[0].Block)
}

func TestGetBalancesInRangeBelowCoverage(t *testing.T) {
	s := newTestStore(t)
	var a [20]byte
	a[0] = 3

	// WatchMeta exists but no snapshot was ever written at or before the
	// watch start, so the anchor lookup has nothing to seek to.
	require.NoError(t, s.WriteBlockBatch(&BlockBatch{
		Block:        100,
		NewHead:      100,
		AddressInits: map[[20]byte]AddressInit{a: {StartBlock: 100}},
	}))

	_, err := s.GetBalancesInRange(a, 100, 100)
	require.ErrorIs(t, err, ErrBelowCoverage)
}

func TestGetBalancesInRangeNoWatchMeta(t *testing.T) {
	s := newTestStore(t)
	var a [20]byte
	a[0] = 4
	require.NoError(t, s.SetHead(10))

	res, err := s.GetBalancesInRange(a, 0, 10)
	require.NoError(t, err)
	assert.Nil(t, res.WatchStartBlock)
	assert.Empty(t, res.Data)
}

func TestGetBalancesInRangeFoldsDeltaBeforeRangeWithNoSnapshot(t *testing.T) {
	// Snapshot at 100 (1000 wei), then a delta-only block 101 with no
	// co-located snapshot (spec.md permits the engine to omit one). A
	// query starting at 102, after the gap, must still see the balance
	// as of 101 folded into its anchor, not the stale snapshot at 100.
	s := newTestStore(t)
	var a [20]byte
	a[0] = 6

	require.NoError(t, s.WriteBlockBatch(&BlockBatch{
		Block:            100,
		NewHead:          100,
		AddressInits:     map[[20]byte]AddressInit{a: {StartBlock: 100}},
		AddressSnapshots: map[[20]byte]*uint256.Int{a: uint256.NewInt(1000)},
	}))
	require.NoError(t, s.WriteBlockBatch(&BlockBatch{
		Block:   101,
		NewHead: 101,
		AddressDeltas: map[[20]byte]*codec.BlockDelta{
			a: {DeltaPlus: uint256.NewInt(5), DeltaMinus: new(uint256.Int), FeePaid: new(uint256.Int), TxCount: 1},
		},
	}))
	require.NoError(t, s.SetHead(105))

	res, err := s.GetBalancesInRange(a, 102, 105)
	require.NoError(t, err)
	require.Len(t, res.Data, 4)
	want := uint256.NewInt(1005)
	for _, p := range res.Data {
		assert.Equal(t, 0, p.Balance.Cmp(want), "block %d: want %s, got %s", p.Block, want, p.Balance)
	}
}

func TestGetDeltasInRangeDenseFillsZeroes(t *testing.T) {
	s := newTestStore(t)
	var a [20]byte
	a[0] = 5

	require.NoError(t, s.WriteBlockBatch(&BlockBatch{
		Block:            100,
		NewHead:          100,
		AddressInits:     map[[20]byte]AddressInit{a: {StartBlock: 100}},
		AddressSnapshots: map[[20]byte]*uint256.Int{a: uint256.NewInt(1000)},
	}))
	require.NoError(t, s.WriteBlockBatch(&BlockBatch{
		Block:   102,
		NewHead: 102,
		AddressDeltas: map[[20]byte]*codec.BlockDelta{
			a: {DeltaPlus: uint256.NewInt(5), DeltaMinus: new(uint256.Int), FeePaid: new(uint256.Int), TxCount: 1},
		},
	}))

	sparse, err := s.GetDeltasInRange(a, 100, 102, false)
	require.NoError(t, err)
	require.Len(t, sparse.Data, 1)
	assert.Equal(t, uint64(102), sparse.Data[0].Block)

	dense, err := s.GetDeltasInRange(a, 100, 102, true)
	require.NoError(t, err)
	require.Len(t, dense.Data, 3)
	assert.Equal(t, uint64(100), dense.Data[0].Block)
	assert.True(t, dense.Data[0].DeltaPlus.IsZero())
	assert.Equal(t, uint64(102), dense.Data[2].Block)
	assert.Equal(t, 0, dense.Data[2].DeltaPlus.Cmp(uint256.NewInt(5)))
}

func TestErc20BalancesInRangeMintBurn(t *testing.T) {
	s := newTestStore(t)
	to := TokenOwner{}
	to.Token[0] = 9
	to.Owner[0] = 1

	require.NoError(t, s.WriteBlockBatch(&BlockBatch{
		Block:               200,
		NewHead:             200,
		TokenOwnerInits:     map[TokenOwner]TokenOwnerInit{to: {StartBlock: 200}},
		TokenOwnerSnapshots: map[TokenOwner]*uint256.Int{to: new(uint256.Int)},
	}))
	require.NoError(t, s.WriteBlockBatch(&BlockBatch{
		Block:   201,
		NewHead: 201,
		TokenOwnerDeltas: map[TokenOwner]*codec.Erc20Delta{
			to: {DeltaPlus: uint256.NewInt(1000), DeltaMinus: new(uint256.Int), TxCount: 1},
		},
	}))

	res, err := s.GetErc20BalancesInRange(to, 200, 201)
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.True(t, res.Data[0].Balance.IsZero())
	assert.Equal(t, 0, res.Data[1].Balance.Cmp(uint256.NewInt(1000)))
}
