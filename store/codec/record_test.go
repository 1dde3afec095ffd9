package codec

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU256RoundTrip(t *testing.T) {
	vals := []*uint256.Int{
		new(uint256.Int),
		uint256.NewInt(1),
		uint256.NewInt(42000),
		new(uint256.Int).Not(new(uint256.Int)),
	}
	for _, v := range vals {
		enc := EncodeU256(v)
		require.Len(t, enc, 32)
		got, err := DecodeU256(enc)
		require.NoError(t, err)
		assert.Equal(t, 0, v.Cmp(got))
	}
}

func TestDecodeU256Malformed(t *testing.T) {
	_, err := DecodeU256([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrMalformedValue)
}

func TestAccountRecordRoundTrip(t *testing.T) {
	rec := &AccountRecord{
		Nonce:   7,
		Balance: uint256.NewInt(1000),
	}
	rec.CodeHash[0] = 0xAB

	enc := EncodeAccountRecord(rec)
	again := EncodeAccountRecord(rec)
	assert.Equal(t, enc, again, "re-encoding must be byte-identical")

	got, err := DecodeAccountRecord(enc)
	require.NoError(t, err)
	assert.Equal(t, rec.Nonce, got.Nonce)
	assert.Equal(t, 0, rec.Balance.Cmp(got.Balance))
	assert.Equal(t, rec.CodeHash, got.CodeHash)
}

func TestBlockDeltaRoundTrip(t *testing.T) {
	d := &BlockDelta{
		DeltaPlus:  uint256.NewInt(5),
		DeltaMinus: uint256.NewInt(42010),
		FeePaid:    uint256.NewInt(42000),
		NonceDelta: 1,
		TxCount:    1,
	}
	enc := EncodeBlockDelta(d)
	got, err := DecodeBlockDelta(enc)
	require.NoError(t, err)
	assert.Equal(t, 0, d.DeltaPlus.Cmp(got.DeltaPlus))
	assert.Equal(t, 0, d.DeltaMinus.Cmp(got.DeltaMinus))
	assert.Equal(t, 0, d.FeePaid.Cmp(got.FeePaid))
	assert.Equal(t, d.NonceDelta, got.NonceDelta)
	assert.Equal(t, d.TxCount, got.TxCount)
}

func TestBlockDeltaMalformedLength(t *testing.T) {
	_, err := DecodeBlockDelta([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrMalformedValue)
}

func TestErc20DeltaRoundTrip(t *testing.T) {
	d := &Erc20Delta{
		DeltaPlus:  uint256.NewInt(1000),
		DeltaMinus: new(uint256.Int),
		TxCount:    1,
	}
	enc := EncodeErc20Delta(d)
	got, err := DecodeErc20Delta(enc)
	require.NoError(t, err)
	assert.Equal(t, 0, d.DeltaPlus.Cmp(got.DeltaPlus))
	assert.Equal(t, 0, d.DeltaMinus.Cmp(got.DeltaMinus))
	assert.Equal(t, d.TxCount, got.TxCount)
}

func TestWatchMetaRoundTrip(t *testing.T) {
	m := &WatchMeta{StartBlock: 12345}
	enc := EncodeWatchMeta(m)
	got, err := DecodeWatchMeta(enc)
	require.NoError(t, err)
	assert.Equal(t, m.StartBlock, got.StartBlock)
}

func TestHeaderRecordRoundTrip(t *testing.T) {
	h := &HeaderRecord{
		Number:    100,
		BaseFee:   uint256.NewInt(1_000_000_000),
		Timestamp: 1700000000,
	}
	h.Hash[0] = 1
	h.ParentHash[0] = 2

	enc := EncodeHeaderRecord(h)
	got, err := DecodeHeaderRecord(enc)
	require.NoError(t, err)
	assert.Equal(t, h.Number, got.Number)
	assert.Equal(t, h.Hash, got.Hash)
	assert.Equal(t, h.ParentHash, got.ParentHash)
	assert.Equal(t, 0, h.BaseFee.Cmp(got.BaseFee))
	assert.Equal(t, h.Timestamp, got.Timestamp)
}
