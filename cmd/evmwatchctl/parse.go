package main

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
)

// argsExact and argsRange wrap cobra's own arity validators so a wrong
// argument count surfaces as a usageError (exit 2), not a runtime
// failure (exit 1).
func argsExact(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageErrorf("%v", err)
		}
		return nil
	}
}

func argsRange(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(lo, hi)(cmd, args); err != nil {
			return usageErrorf("%v", err)
		}
		return nil
	}
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, usageErrorf("%q is not a valid address", s)
	}
	return common.HexToAddress(s), nil
}

func parseHash32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return out, usageErrorf("%q is not valid hex: %v", s, err)
	}
	if len(b) != 32 {
		return out, usageErrorf("%q must decode to exactly 32 bytes, got %d", s, len(b))
	}
	copy(out[:], b)
	return out, nil
}

func parseU256(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, usageErrorf("%q is not a valid u256 decimal: %v", s, err)
	}
	return v, nil
}

func parseBlock(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, usageErrorf("%q is not a valid block number: %v", s, err)
	}
	return v, nil
}

func parseBytes(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, usageErrorf("%q is not valid hex: %v", s, err)
	}
	return b, nil
}
