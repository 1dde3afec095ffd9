package rpcclient

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// selectorBalanceOf is the ERC20 balanceOf(address) function selector,
// keccak256("balanceOf(address)")[:4].
var selectorBalanceOf = common.Hex2Bytes("70a08231")

// TokenBalanceOf implements eth_call({to: token, data: balanceOf(owner)},
// tag) and parses the 32-byte big-endian u256 result, per spec.md §6.
func TokenBalanceOf(ctx context.Context, c *Client, token, owner common.Address, blockNumber *big.Int) (*uint256.Int, error) {
	callData := make([]byte, 36)
	copy(callData[:4], selectorBalanceOf)
	copy(callData[16:], owner.Bytes())

	result, err := c.CallContract(ctx, ethereum.CallMsg{To: &token, Data: callData}, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("balanceOf(%s) on %s: %w", owner, token, err)
	}
	// CallContract already wraps ErrRpc; this layer only adds context.
	if len(result) < 32 {
		return new(uint256.Int), nil
	}
	var arr [32]byte
	copy(arr[:], result[len(result)-32:])
	return new(uint256.Int).SetBytes32(arr[:]), nil
}
