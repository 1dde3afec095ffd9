package watcher

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestAddressAccumulatorMergesMultipleTouches(t *testing.T) {
	var addr common.Address
	addr[0] = 1

	acc := newAddressAccumulator()
	assert.True(t, acc.isEmpty())

	acc.addPlus(addr, uint256.NewInt(100))
	acc.addMinus(addr, uint256.NewInt(30))
	acc.addFee(addr, uint256.NewInt(5))
	acc.bumpNonce(addr)
	acc.bumpTxCount(addr)
	acc.addPlus(addr, uint256.NewInt(50))

	assert.False(t, acc.isEmpty())
	e := acc.entries[addr]
	assert.Equal(t, uint256.NewInt(150), e.DeltaPlus)
	assert.Equal(t, uint256.NewInt(30), e.DeltaMinus)
	assert.Equal(t, uint256.NewInt(5), e.FeePaid)
	assert.EqualValues(t, 1, e.NonceDelta)
	assert.EqualValues(t, 1, e.TxCount)
}

func TestTokenAccumulatorKeyedByTokenAndOwnerIndependently(t *testing.T) {
	var tokenA, tokenB, owner common.Address
	tokenA[0], tokenB[0], owner[0] = 1, 2, 3

	acc := newTokenAccumulator()
	assert.True(t, acc.isEmpty())

	acc.credit(tokenA, owner, uint256.NewInt(10))
	acc.debit(tokenB, owner, uint256.NewInt(4))

	assert.False(t, acc.isEmpty())
	assert.Equal(t, uint256.NewInt(10), acc.entries[tokenOwner{token: tokenA, owner: owner}].DeltaPlus)
	assert.Equal(t, uint256.NewInt(4), acc.entries[tokenOwner{token: tokenB, owner: owner}].DeltaMinus)
	assert.True(t, acc.entries[tokenOwner{token: tokenA, owner: owner}].DeltaMinus.IsZero())
}
