package rpcclient

import "errors"

// ErrRpc is the sentinel every transport/protocol-level failure from the
// upstream node wraps, per spec.md §7's Rpc error kind: block-scoped,
// the watcher abandons the block and retries on the next poll.
var ErrRpc = errors.New("rpcclient: rpc failure")

func wrapRpc(err error) error {
	if err == nil {
		return nil
	}
	return &rpcError{cause: err}
}

type rpcError struct{ cause error }

func (e *rpcError) Error() string { return "rpcclient: rpc failure: " + e.cause.Error() }
func (e *rpcError) Unwrap() error { return e.cause }
func (e *rpcError) Is(target error) bool { return target == ErrRpc }
