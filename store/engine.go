package store

import "io"

// Engine is the minimal key-value contract the state-history Store
// requires of its underlying storage. It is intentionally narrow — get,
// set, prefix/reverse iteration and atomic batch commit — so engines
// other than pebble (e.g. goleveldb) can back it without the Store
// caring which LSM implementation is underneath, the same separation the
// teacher draws between blockdb/types.BlockDbEngine and its pebble
// implementation.
type Engine interface {
	io.Closer

	// Get returns the value for key, or (nil, false, nil) if absent.
	Get(key []byte) (value []byte, found bool, err error)

	// NewBatch starts a write batch. Writes are not visible to Get/Iterate
	// until the batch is committed.
	NewBatch() Batch

	// SeekLastLE positions at the largest key with the given prefix that
	// is lexicographically <= upper, and returns it. ok is false if no
	// such key exists.
	SeekLastLE(prefix, upper []byte) (key, value []byte, ok bool, err error)

	// IterateRange calls fn for every key in [lower, upper) in ascending
	// order. fn returning an error stops iteration and the error
	// propagates out of IterateRange.
	IterateRange(lower, upper []byte, fn func(key, value []byte) error) error
}

// Batch accumulates writes for atomic commit. A Store never observes a
// partially-applied batch: Commit either applies every write or none.
type Batch interface {
	Set(key, value []byte)
	Commit() error
}
