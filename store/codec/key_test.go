package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

func TestEncodeDecodeBlockNumber(t *testing.T) {
	for _, b := range []uint64{0, 1, 100, 1 << 40} {
		enc := EncodeBlockNumber(b)
		require.Len(t, enc, 8)
		got, err := DecodeBlockNumber(enc)
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
}

func TestDecodeBlockNumberMalformed(t *testing.T) {
	_, err := DecodeBlockNumber([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrMalformedKey)
}

func TestEthDeltaKeyOrdering(t *testing.T) {
	a := addr(1)
	k1 := EthDeltaKey(a, 100)
	k2 := EthDeltaKey(a, 101)
	assert.Less(t, string(k1), string(k2))

	k3 := EthDeltaKey(a, 1<<32)
	k4 := EthDeltaKey(a, 1<<32+1)
	assert.Less(t, string(k3), string(k4))
}

func TestSplitAddrBlockKeyRoundTrip(t *testing.T) {
	a := addr(7)
	k := EthDeltaKey(a, 12345)
	gotAddr, gotBlock, err := SplitAddrBlockKey(PrefixEthDelta, k)
	require.NoError(t, err)
	assert.Equal(t, a, gotAddr)
	assert.Equal(t, uint64(12345), gotBlock)
}

func TestSplitAddrBlockKeyWrongPrefix(t *testing.T) {
	k := EthDeltaKey(addr(1), 1)
	_, _, err := SplitAddrBlockKey(PrefixEthSnapshot, k)
	require.ErrorIs(t, err, ErrMalformedKey)
}

func TestSplitTokenOwnerBlockKeyRoundTrip(t *testing.T) {
	token, owner := addr(1), addr(2)
	k := Erc20DeltaKey(token, owner, 99)
	gotToken, gotOwner, gotBlock, err := SplitTokenOwnerBlockKey(PrefixErc20Delta, k)
	require.NoError(t, err)
	assert.Equal(t, token, gotToken)
	assert.Equal(t, owner, gotOwner)
	assert.Equal(t, uint64(99), gotBlock)
}

func TestTokenWatchMetaKeyVsCurrentBalanceKeyDistinct(t *testing.T) {
	token, owner := addr(1), addr(2)
	meta := TokenWatchMetaKey(token, owner)
	bal := TokenCurrentBalanceKey(token, owner)
	assert.NotEqual(t, meta, bal)
	assert.Equal(t, byte(PrefixTokenWatchMeta), meta[0])
	assert.Equal(t, byte(PrefixTokenWatchMeta), bal[0])
}

func TestAddrPrefixScopesAddress(t *testing.T) {
	a, b := addr(1), addr(2)
	prefix := AddrPrefix(PrefixEthDelta, a)
	key := EthDeltaKey(a, 10)
	other := EthDeltaKey(b, 10)
	assert.Equal(t, []byte(key[:len(prefix)]), prefix)
	assert.NotEqual(t, []byte(other[:len(prefix)]), prefix)
}
