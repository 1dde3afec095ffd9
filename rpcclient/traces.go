package rpcclient

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// callTracerConfig selects the callTracer for debug_traceTransaction,
// the same tracer name the teacher's CallTracerConfig requests.
type callTracerConfig struct {
	Tracer string `json:"tracer"`
}

// CallFrame is one frame of a callTracer call tree: the frame's own
// transfer plus its ordered sub-calls. The top-level frame (depth 0) is
// the transaction's own call; everything under Calls is an internal call.
type CallFrame struct {
	Type    string          `json:"type"`
	From    common.Address  `json:"from"`
	To      common.Address  `json:"to"`
	Value   *hexutil.Big    `json:"value,omitempty"`
	Error   string          `json:"error,omitempty"`
	Calls   []CallFrame     `json:"calls,omitempty"`
}

// Success reports whether this frame executed without reverting. A
// non-empty Error means the frame (and everything under it) reverted.
func (f *CallFrame) Success() bool { return f.Error == "" }

// TraceTransaction calls debug_traceTransaction with the callTracer
// config and returns the root call frame. Nodes without debug_* support
// return an RPC error; callers treat that as "no internal credits" per
// spec.md §4.7, not a fatal failure.
func TraceTransaction(ctx context.Context, c *Client, txHash common.Hash) (*CallFrame, error) {
	var frame CallFrame
	err := c.rpcClient.CallContext(ctx, &frame, "debug_traceTransaction", txHash, callTracerConfig{Tracer: "callTracer"})
	if err != nil {
		return nil, wrapRpc(fmt.Errorf("debug_traceTransaction(%s): %w", txHash, err))
	}
	return &frame, nil
}
