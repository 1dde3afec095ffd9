package watcher

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/ethpandaops/evmstate/rpcclient"
)

// WalkInternalCredits implements the trace parser, spec.md §4.7: walk the
// call tree depth-first and invoke credit(to, value) for every frame
// where the frame succeeded, value > 0, to is watched, and the frame is
// not the top-level call (depth >= 1). Reverted frames are skipped along
// with their entire subtree, mirroring the teacher's processCallTrace
// walk shape but stopping recursion on failure instead of flattening it.
func WalkInternalCredits(root *rpcclient.CallFrame, watched map[common.Address]bool, credit func(to common.Address, value *uint256.Int)) {
	if root == nil {
		return
	}
	walkFrame(root, 0, watched, credit)
}

func walkFrame(frame *rpcclient.CallFrame, depth int, watched map[common.Address]bool, credit func(common.Address, *uint256.Int)) {
	if !frame.Success() {
		return
	}

	if depth >= 1 && isValueTransferFrame(frame.Type) {
		value := frameValue(frame)
		if value.Sign() > 0 && watched[frame.To] {
			credit(frame.To, value)
		}
	}

	for i := range frame.Calls {
		walkFrame(&frame.Calls[i], depth+1, watched, credit)
	}
}

// isValueTransferFrame reports whether a call of this type actually moves
// ETH balance. DELEGATECALL and STATICCALL forward the caller's context
// and can never carry a value transfer themselves, even if a buggy tracer
// reported a non-zero value on one, so they're excluded here. Only CALL,
// CALLCODE and SELFDESTRUCT count; any other type, including a frame with
// an empty Type, is never credited.
func isValueTransferFrame(callType string) bool {
	switch callType {
	case "CALL", "CALLCODE", "SELFDESTRUCT":
		return true
	default:
		return false
	}
}

// frameValue returns the frame's transfer value as a u256, zero if absent.
func frameValue(f *rpcclient.CallFrame) *uint256.Int {
	if f.Value == nil {
		return new(uint256.Int)
	}
	v, overflow := uint256.FromBig(f.Value.ToInt())
	if overflow {
		return new(uint256.Int).Not(new(uint256.Int))
	}
	return v
}
