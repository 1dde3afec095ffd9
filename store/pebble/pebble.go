// Package pebble implements store.Engine on top of cockroachdb/pebble,
// adapted from the teacher's blockdb/pebble engine: same cache-backed
// pebble.Open call and the same "let pebble own the bytes until we copy
// them out" discipline on reads.
package pebble

import (
	"github.com/cockroachdb/pebble"

	"github.com/ethpandaops/evmstate/store"
)

// Config controls how the pebble engine opens its database directory.
type Config struct {
	Path      string
	CacheSize int64 // bytes; 0 uses pebble's default
}

// Engine is a store.Engine backed by a single pebble.DB.
type Engine struct {
	db *pebble.DB
}

// Open opens (creating if absent) a pebble database at cfg.Path.
func Open(cfg Config) (*Engine, error) {
	opts := &pebble.Options{}
	if cfg.CacheSize > 0 {
		cache := pebble.NewCache(cfg.CacheSize)
		defer cache.Unref()
		opts.Cache = cache
	}

	db, err := pebble.Open(cfg.Path, opts)
	if err != nil {
		return nil, err
	}
	return &Engine{db: db}, nil
}

func (e *Engine) Close() error { return e.db.Close() }

func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	res, closer, err := e.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()

	out := make([]byte, len(res))
	copy(out, res)
	return out, true, nil
}

func (e *Engine) NewBatch() store.Batch {
	return &batch{b: e.db.NewBatch()}
}

func (e *Engine) SeekLastLE(prefix, upper []byte) ([]byte, []byte, bool, error) {
	iter, err := e.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: nextKey(upper),
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer iter.Close()

	if !iter.Last() {
		return nil, nil, false, iter.Error()
	}

	key := append([]byte(nil), iter.Key()...)
	val := append([]byte(nil), iter.Value()...)
	return key, val, true, iter.Error()
}

func (e *Engine) IterateRange(lower, upper []byte, fn func(key, value []byte) error) error {
	iter, err := e.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// nextKey increments the last non-0xff byte of upper and drops the bytes
// after it, giving a key greater than upper and every key it prefixes;
// used to make an inclusive upper bound exclusive for pebble's half-open
// iterator bounds.
func nextKey(upper []byte) []byte {
	out := append([]byte(nil), upper...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < 0xff {
			out[i]++
			return out[:i+1]
		}
	}
	// upper was all 0xff; there is no finite successor, so leave the
	// iterator unbounded above.
	return nil
}

type batch struct {
	b *pebble.Batch
}

func (w *batch) Set(key, value []byte) {
	_ = w.b.Set(key, value, nil)
}

func (w *batch) Commit() error {
	return w.b.Commit(pebble.Sync)
}
