package store

import (
	"bytes"
	"sort"
)

// memEngine is a minimal in-memory Engine used to exercise Store and the
// fill-forward query algorithm without a real pebble database.
type memEngine struct {
	data map[string][]byte
}

func newMemEngine() *memEngine {
	return &memEngine{data: make(map[string][]byte)}
}

func (e *memEngine) Close() error { return nil }

func (e *memEngine) Get(key []byte) ([]byte, bool, error) {
	v, ok := e.data[string(key)]
	return v, ok, nil
}

func (e *memEngine) NewBatch() Batch { return &memBatch{eng: e, writes: map[string][]byte{}} }

func (e *memEngine) sortedKeys() []string {
	keys := make([]string, 0, len(e.data))
	for k := range e.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *memEngine) SeekLastLE(prefix, upper []byte) ([]byte, []byte, bool, error) {
	var bestKey string
	found := false
	for _, k := range e.sortedKeys() {
		if !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		if k > string(upper) {
			continue
		}
		bestKey = k
		found = true
	}
	if !found {
		return nil, nil, false, nil
	}
	return []byte(bestKey), e.data[bestKey], true, nil
}

func (e *memEngine) IterateRange(lower, upper []byte, fn func(key, value []byte) error) error {
	for _, k := range e.sortedKeys() {
		if lower != nil && k < string(lower) {
			continue
		}
		if upper != nil && k >= string(upper) {
			continue
		}
		if err := fn([]byte(k), e.data[k]); err != nil {
			return err
		}
	}
	return nil
}

type memBatch struct {
	eng    *memEngine
	writes map[string][]byte
}

func (b *memBatch) Set(key, value []byte) {
	b.writes[string(key)] = append([]byte(nil), value...)
}

func (b *memBatch) Commit() error {
	for k, v := range b.writes {
		b.eng.data[k] = v
	}
	return nil
}
