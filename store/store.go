// Package store implements the typed, atomic-batch key-value layer the
// watcher persists its derived balance/nonce/ERC20 history into, and the
// fill-forward range queries that reconstruct a dense series from sparse
// snapshots and deltas. It is grounded on the teacher's blockdb package:
// a narrow Engine interface (store/engine.go) separates the byte-level
// LSM concerns from this package's typed accessors, the same split dora
// draws between blockdb/types and blockdb/pebble.
package store

import (
	"github.com/holiman/uint256"

	"github.com/ethpandaops/evmstate/store/codec"
)

// TokenOwner identifies a watched (token, owner) pair.
type TokenOwner struct {
	Token [20]byte
	Owner [20]byte
}

// Store wraps an Engine with the typed operations spec.md §4.3 names.
type Store struct {
	eng Engine
}

// New wraps eng in a Store. The caller owns eng's lifecycle (Close).
func New(eng Engine) *Store {
	return &Store{eng: eng}
}

// Close closes the underlying engine.
func (s *Store) Close() error { return s.eng.Close() }

// --- accounts ---------------------------------------------------------

func (s *Store) PutAccount(addr [20]byte, rec *codec.AccountRecord) error {
	b := s.eng.NewBatch()
	b.Set(codec.AccountKey(addr), codec.EncodeAccountRecord(rec))
	return wrapIo(b.Commit())
}

func (s *Store) GetAccount(addr [20]byte) (*codec.AccountRecord, bool, error) {
	val, ok, err := s.eng.Get(codec.AccountKey(addr))
	if err != nil {
		return nil, false, wrapIo(err)
	}
	if !ok {
		return nil, false, nil
	}
	rec, err := codec.DecodeAccountRecord(val)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// --- contract bytecode -------------------------------------------------

func (s *Store) PutCode(hash [32]byte, code []byte) error {
	b := s.eng.NewBatch()
	b.Set(codec.CodeKey(hash), code)
	return wrapIo(b.Commit())
}

func (s *Store) GetCode(hash [32]byte) ([]byte, bool, error) {
	val, ok, err := s.eng.Get(codec.CodeKey(hash))
	if err != nil {
		return nil, false, wrapIo(err)
	}
	return val, ok, nil
}

// --- storage slots -------------------------------------------------------

func (s *Store) PutStorage(addr [20]byte, slot [32]byte, value *uint256.Int) error {
	b := s.eng.NewBatch()
	b.Set(codec.StorageKey(addr, slot), codec.EncodeU256(value))
	return wrapIo(b.Commit())
}

// GetStorage returns the stored value, or zero if the slot was never
// written -- a missing slot is never an error, per §3 invariant 4.
func (s *Store) GetStorage(addr [20]byte, slot [32]byte) (*uint256.Int, error) {
	val, ok, err := s.eng.Get(codec.StorageKey(addr, slot))
	if err != nil {
		return nil, wrapIo(err)
	}
	if !ok {
		return new(uint256.Int), nil
	}
	return codec.DecodeU256(val)
}

// --- headers / block hashes --------------------------------------------

func (s *Store) PutHeader(block uint64, rec *codec.HeaderRecord) error {
	b := s.eng.NewBatch()
	b.Set(codec.HeaderKey(block), codec.EncodeHeaderRecord(rec))
	return wrapIo(b.Commit())
}

func (s *Store) GetHeader(block uint64) (*codec.HeaderRecord, bool, error) {
	val, ok, err := s.eng.Get(codec.HeaderKey(block))
	if err != nil {
		return nil, false, wrapIo(err)
	}
	if !ok {
		return nil, false, nil
	}
	rec, err := codec.DecodeHeaderRecord(val)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (s *Store) PutBlockHash(block uint64, hash [32]byte) error {
	b := s.eng.NewBatch()
	b.Set(codec.BlockHashKey(block), hash[:])
	return wrapIo(b.Commit())
}

func (s *Store) GetBlockHash(block uint64) ([32]byte, bool, error) {
	var out [32]byte
	val, ok, err := s.eng.Get(codec.BlockHashKey(block))
	if err != nil {
		return out, false, wrapIo(err)
	}
	if !ok {
		return out, false, nil
	}
	copy(out[:], val)
	return out, true, nil
}

// --- head ----------------------------------------------------------------

func (s *Store) SetHead(block uint64) error {
	b := s.eng.NewBatch()
	b.Set(codec.MetaKey(codec.MetaHead), codec.EncodeBlockNumber(block))
	return wrapIo(b.Commit())
}

func (s *Store) GetHead() (uint64, bool, error) {
	val, ok, err := s.eng.Get(codec.MetaKey(codec.MetaHead))
	if err != nil {
		return 0, false, wrapIo(err)
	}
	if !ok {
		return 0, false, nil
	}
	block, err := codec.DecodeBlockNumber(val)
	return block, true, err
}

// --- watch meta ------------------------------------------------------------

func (s *Store) GetWatchMeta(addr [20]byte) (*codec.WatchMeta, bool, error) {
	val, ok, err := s.eng.Get(codec.WatchMetaKey(addr))
	if err != nil {
		return nil, false, wrapIo(err)
	}
	if !ok {
		return nil, false, nil
	}
	m, err := codec.DecodeWatchMeta(val)
	return m, err == nil, err
}

func (s *Store) GetTokenWatchMeta(to TokenOwner) (*codec.WatchMeta, bool, error) {
	val, ok, err := s.eng.Get(codec.TokenWatchMetaKey(to.Token, to.Owner))
	if err != nil {
		return nil, false, wrapIo(err)
	}
	if !ok {
		return nil, false, nil
	}
	m, err := codec.DecodeWatchMeta(val)
	return m, err == nil, err
}

// GetErc20CurrentBalance reads the tracker's O(1) current-balance cache.
// Absence means the (token, owner) pair has never been initialized.
func (s *Store) GetErc20CurrentBalance(to TokenOwner) (*uint256.Int, bool, error) {
	val, ok, err := s.eng.Get(codec.TokenCurrentBalanceKey(to.Token, to.Owner))
	if err != nil {
		return nil, false, wrapIo(err)
	}
	if !ok {
		return nil, false, nil
	}
	v, err := codec.DecodeU256(val)
	return v, err == nil, err
}

// --- atomic block batch ----------------------------------------------------

// AddressInit describes a newly watched address's initialization record,
// written atomically alongside its first snapshot.
type AddressInit struct {
	StartBlock uint64
}

// TokenOwnerInit describes a newly watched (token, owner) pair's
// initialization record.
type TokenOwnerInit struct {
	StartBlock uint64
}

// BlockBatch is everything write_block_batch commits atomically for one
// processed block: per-address ETH deltas/snapshots, per-(token,owner)
// ERC20 deltas/snapshots/current-balances, any first-time WatchMeta
// initializations, the block's header/hash, and the new head. Commit
// either applies the whole batch or none of it.
type BlockBatch struct {
	Block     uint64
	NewHead   uint64
	Header    *codec.HeaderRecord
	BlockHash [32]byte

	// AddressDeltas/AddressSnapshots/AccountRecords are keyed by the
	// watched address; only addresses with a non-empty accumulator for
	// this block need entries.
	AddressDeltas    map[[20]byte]*codec.BlockDelta
	AddressSnapshots map[[20]byte]*uint256.Int
	AccountRecords   map[[20]byte]*codec.AccountRecord
	AddressInits     map[[20]byte]AddressInit

	TokenOwnerDeltas     map[TokenOwner]*codec.Erc20Delta
	TokenOwnerSnapshots  map[TokenOwner]*uint256.Int
	TokenOwnerCurrent    map[TokenOwner]*uint256.Int
	TokenOwnerInits      map[TokenOwner]TokenOwnerInit
}

// WriteBlockBatch atomically commits every write in b: deltas, snapshots,
// WatchMeta initializations, header/hash, current ERC20 balances and the
// new head land in a single engine batch, so a reader never observes a
// partially-applied block.
func (s *Store) WriteBlockBatch(b *BlockBatch) error {
	batch := s.eng.NewBatch()

	if b.Header != nil {
		batch.Set(codec.HeaderKey(b.Block), codec.EncodeHeaderRecord(b.Header))
	}
	if b.BlockHash != ([32]byte{}) {
		batch.Set(codec.BlockHashKey(b.Block), b.BlockHash[:])
	}

	for addr, init := range b.AddressInits {
		batch.Set(codec.WatchMetaKey(addr), codec.EncodeWatchMeta(&codec.WatchMeta{StartBlock: init.StartBlock}))
	}
	for addr, rec := range b.AccountRecords {
		batch.Set(codec.AccountKey(addr), codec.EncodeAccountRecord(rec))
	}
	for addr, d := range b.AddressDeltas {
		batch.Set(codec.EthDeltaKey(addr, b.Block), codec.EncodeBlockDelta(d))
	}
	for addr, v := range b.AddressSnapshots {
		batch.Set(codec.EthSnapshotKey(addr, b.Block), codec.EncodeSnapshot(v))
	}

	for to, init := range b.TokenOwnerInits {
		batch.Set(codec.TokenWatchMetaKey(to.Token, to.Owner), codec.EncodeWatchMeta(&codec.WatchMeta{StartBlock: init.StartBlock}))
	}
	for to, d := range b.TokenOwnerDeltas {
		batch.Set(codec.Erc20DeltaKey(to.Token, to.Owner, b.Block), codec.EncodeErc20Delta(d))
	}
	for to, v := range b.TokenOwnerSnapshots {
		batch.Set(codec.Erc20SnapshotKey(to.Token, to.Owner, b.Block), codec.EncodeSnapshot(v))
	}
	for to, v := range b.TokenOwnerCurrent {
		batch.Set(codec.TokenCurrentBalanceKey(to.Token, to.Owner), codec.EncodeU256(v))
	}

	batch.Set(codec.MetaKey(codec.MetaHead), codec.EncodeBlockNumber(b.NewHead))

	if err := batch.Commit(); err != nil {
		return wrapIo(err)
	}
	return nil
}

// succKey returns the smallest byte string greater than every key that
// has k as a prefix, by incrementing the last non-0xff byte and dropping
// the bytes after it (nil if k is all 0xff). query.go uses it to build
// exclusive engine bounds without reaching into the pebble package.
func succKey(k []byte) []byte {
	out := append([]byte(nil), k...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < 0xff {
			out[i]++
			return out[:i+1]
		}
	}
	return nil
}
