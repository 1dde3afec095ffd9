package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
)

// ErrMalformedValue is returned when a record's encoded length does not
// match the fixed layout for its type, or a u256 field is not exactly 32
// bytes.
var ErrMalformedValue = fmt.Errorf("codec: malformed value")

const u256Len = 32

// EncodeU256 always produces a fixed 32-byte big-endian encoding,
// regardless of magnitude, so every record has a constant size on disk.
func EncodeU256(v *uint256.Int) []byte {
	if v == nil {
		v = new(uint256.Int)
	}
	b := v.Bytes32()
	return b[:]
}

// DecodeU256 parses a 32-byte big-endian u256. A missing slot should never
// reach this function; callers represent "missing" as a zero-valued
// *uint256.Int before encoding, never as an absent byte string.
func DecodeU256(b []byte) (*uint256.Int, error) {
	if len(b) != u256Len {
		return nil, fmt.Errorf("%w: u256 field must be %d bytes, got %d", ErrMalformedValue, u256Len, len(b))
	}
	var arr [32]byte
	copy(arr[:], b)
	return new(uint256.Int).SetBytes32(arr[:]), nil
}

func putU64(dst []byte, v uint64) { binary.BigEndian.PutUint64(dst, v) }
func putU32(dst []byte, v uint32) { binary.BigEndian.PutUint32(dst, v) }
func getU64(src []byte) uint64    { return binary.BigEndian.Uint64(src) }
func getU32(src []byte) uint32    { return binary.BigEndian.Uint32(src) }

// AccountRecord is { nonce: u64, balance: u256, code_hash: hash }.
type AccountRecord struct {
	Nonce    uint64
	Balance  *uint256.Int
	CodeHash [32]byte
}

const accountRecordLen = 8 + u256Len + 32

// EncodeAccountRecord serializes an AccountRecord deterministically.
// Re-encoding a decoded record yields byte-identical output.
func EncodeAccountRecord(rec *AccountRecord) []byte {
	out := make([]byte, accountRecordLen)
	putU64(out[0:8], rec.Nonce)
	copy(out[8:8+u256Len], EncodeU256(rec.Balance))
	copy(out[8+u256Len:], rec.CodeHash[:])
	return out
}

// DecodeAccountRecord parses the output of EncodeAccountRecord.
func DecodeAccountRecord(b []byte) (*AccountRecord, error) {
	if len(b) != accountRecordLen {
		return nil, fmt.Errorf("%w: account record must be %d bytes, got %d", ErrMalformedValue, accountRecordLen, len(b))
	}
	balance, err := DecodeU256(b[8 : 8+u256Len])
	if err != nil {
		return nil, err
	}
	rec := &AccountRecord{Nonce: getU64(b[0:8]), Balance: balance}
	copy(rec.CodeHash[:], b[8+u256Len:])
	return rec, nil
}

// BlockDelta is a per-watched-address, per-block change record. DeltaPlus
// and DeltaMinus are kept as separate non-negative accumulators; the net
// balance change is DeltaPlus - DeltaMinus.
type BlockDelta struct {
	DeltaPlus  *uint256.Int
	DeltaMinus *uint256.Int
	FeePaid    *uint256.Int
	NonceDelta uint32
	TxCount    uint32
}

const blockDeltaLen = 3*u256Len + 4 + 4

// EncodeBlockDelta serializes a BlockDelta deterministically.
func EncodeBlockDelta(d *BlockDelta) []byte {
	out := make([]byte, blockDeltaLen)
	copy(out[0:u256Len], EncodeU256(d.DeltaPlus))
	copy(out[u256Len:2*u256Len], EncodeU256(d.DeltaMinus))
	copy(out[2*u256Len:3*u256Len], EncodeU256(d.FeePaid))
	putU32(out[3*u256Len:3*u256Len+4], d.NonceDelta)
	putU32(out[3*u256Len+4:], d.TxCount)
	return out
}

// DecodeBlockDelta parses the output of EncodeBlockDelta.
func DecodeBlockDelta(b []byte) (*BlockDelta, error) {
	if len(b) != blockDeltaLen {
		return nil, fmt.Errorf("%w: block delta must be %d bytes, got %d", ErrMalformedValue, blockDeltaLen, len(b))
	}
	plus, err := DecodeU256(b[0:u256Len])
	if err != nil {
		return nil, err
	}
	minus, err := DecodeU256(b[u256Len : 2*u256Len])
	if err != nil {
		return nil, err
	}
	fee, err := DecodeU256(b[2*u256Len : 3*u256Len])
	if err != nil {
		return nil, err
	}
	return &BlockDelta{
		DeltaPlus:  plus,
		DeltaMinus: minus,
		FeePaid:    fee,
		NonceDelta: getU32(b[3*u256Len : 3*u256Len+4]),
		TxCount:    getU32(b[3*u256Len+4:]),
	}, nil
}

// Erc20Delta is { delta_plus, delta_minus: u256, tx_count: u32 } per
// (token, owner, block).
type Erc20Delta struct {
	DeltaPlus  *uint256.Int
	DeltaMinus *uint256.Int
	TxCount    uint32
}

const erc20DeltaLen = 2*u256Len + 4

// EncodeErc20Delta serializes an Erc20Delta deterministically.
func EncodeErc20Delta(d *Erc20Delta) []byte {
	out := make([]byte, erc20DeltaLen)
	copy(out[0:u256Len], EncodeU256(d.DeltaPlus))
	copy(out[u256Len:2*u256Len], EncodeU256(d.DeltaMinus))
	putU32(out[2*u256Len:], d.TxCount)
	return out
}

// DecodeErc20Delta parses the output of EncodeErc20Delta.
func DecodeErc20Delta(b []byte) (*Erc20Delta, error) {
	if len(b) != erc20DeltaLen {
		return nil, fmt.Errorf("%w: erc20 delta must be %d bytes, got %d", ErrMalformedValue, erc20DeltaLen, len(b))
	}
	plus, err := DecodeU256(b[0:u256Len])
	if err != nil {
		return nil, err
	}
	minus, err := DecodeU256(b[u256Len : 2*u256Len])
	if err != nil {
		return nil, err
	}
	return &Erc20Delta{DeltaPlus: plus, DeltaMinus: minus, TxCount: getU32(b[2*u256Len:])}, nil
}

// WatchMeta is { start_block: u64 }, one per watched address (also reused
// verbatim for TokenWatchMeta, which has the identical shape per (token,
// owner)).
type WatchMeta struct {
	StartBlock uint64
}

const watchMetaLen = 8

// EncodeWatchMeta serializes a WatchMeta deterministically.
func EncodeWatchMeta(m *WatchMeta) []byte {
	out := make([]byte, watchMetaLen)
	putU64(out, m.StartBlock)
	return out
}

// DecodeWatchMeta parses the output of EncodeWatchMeta.
func DecodeWatchMeta(b []byte) (*WatchMeta, error) {
	if len(b) != watchMetaLen {
		return nil, fmt.Errorf("%w: watch meta must be %d bytes, got %d", ErrMalformedValue, watchMetaLen, len(b))
	}
	return &WatchMeta{StartBlock: getU64(b)}, nil
}

// EncodeSnapshot encodes a raw u256 snapshot balance.
func EncodeSnapshot(v *uint256.Int) []byte { return EncodeU256(v) }

// DecodeSnapshot decodes a raw u256 snapshot balance.
func DecodeSnapshot(b []byte) (*uint256.Int, error) { return DecodeU256(b) }

// HeaderRecord holds the fields of a block header the store persists.
type HeaderRecord struct {
	Number     uint64
	Hash       [32]byte
	ParentHash [32]byte
	BaseFee    *uint256.Int // zero if the block predates EIP-1559
	Timestamp  uint64
}

const headerRecordLen = 8 + 32 + 32 + u256Len + 8

// EncodeHeaderRecord serializes a HeaderRecord deterministically.
func EncodeHeaderRecord(h *HeaderRecord) []byte {
	out := make([]byte, headerRecordLen)
	putU64(out[0:8], h.Number)
	copy(out[8:40], h.Hash[:])
	copy(out[40:72], h.ParentHash[:])
	copy(out[72:72+u256Len], EncodeU256(h.BaseFee))
	putU64(out[72+u256Len:], h.Timestamp)
	return out
}

// DecodeHeaderRecord parses the output of EncodeHeaderRecord.
func DecodeHeaderRecord(b []byte) (*HeaderRecord, error) {
	if len(b) != headerRecordLen {
		return nil, fmt.Errorf("%w: header record must be %d bytes, got %d", ErrMalformedValue, headerRecordLen, len(b))
	}
	baseFee, err := DecodeU256(b[72 : 72+u256Len])
	if err != nil {
		return nil, err
	}
	h := &HeaderRecord{Number: getU64(b[0:8]), BaseFee: baseFee, Timestamp: getU64(b[72+u256Len:])}
	copy(h.Hash[:], b[8:40])
	copy(h.ParentHash[:], b[40:72])
	return h, nil
}
