package store

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ethpandaops/evmstate/store/codec"
)

// BalancePoint is one point of a dense fill-forward balance series.
type BalancePoint struct {
	Block   uint64
	Balance *uint256.Int
}

// QueryResult is the fill-forward response shape from spec.md §4.3.1 step 7.
type QueryResult struct {
	RequestedStart uint64
	RequestedEnd   uint64
	EffectiveStart uint64
	EffectiveEnd   uint64

	// WatchStartBlock is nil when the address/pair has no WatchMeta at all.
	WatchStartBlock *uint64
	HeadBlock       uint64

	// Message is non-empty iff the effective range differs from the
	// requested one, and names the clamp.
	Message string

	Data []BalancePoint
}

// DeltaPoint is one point of a delta series, sparse or dense.
type DeltaPoint struct {
	Block      uint64
	DeltaPlus  *uint256.Int
	DeltaMinus *uint256.Int
	TxCount    uint32
}

// DeltaResult is the response shape for get_deltas_in_range.
type DeltaResult struct {
	RequestedStart uint64
	RequestedEnd   uint64
	EffectiveStart uint64
	EffectiveEnd   uint64

	WatchStartBlock *uint64
	HeadBlock       uint64
	Message         string

	Data []DeltaPoint
}

// series abstracts the two families (ETH keyed by address, ERC20 keyed
// by (token, owner)) that fill-forward runs against, so the algorithm in
// §4.3.1 is written once.
type series struct {
	watchMeta   func() (*codec.WatchMeta, bool, error)
	anchorUpTo  func(block uint64) (anchorBlock uint64, val *uint256.Int, ok bool, err error)
	iterDeltas  func(lowerExclusive, upperInclusive uint64, fn func(block uint64, plus, minus *uint256.Int, txCount uint32) error) error
}

func clampMessage(reqLo, reqHi, effLo, effHi uint64) string {
	switch {
	case reqLo != effLo && reqHi != effHi:
		return fmt.Sprintf("requested range [%d,%d] clamped to coverage [%d,%d]", reqLo, reqHi, effLo, effHi)
	case reqLo != effLo:
		return fmt.Sprintf("requested start %d clamped to watch start %d", reqLo, effLo)
	case reqHi != effHi:
		return fmt.Sprintf("requested end %d clamped to head %d", reqHi, effHi)
	default:
		return ""
	}
}

// runFillForward implements spec.md §4.3.1 against an abstract series.
func runFillForward(sr *series, headBlock uint64, haveHead bool, reqLo, reqHi uint64) (*QueryResult, error) {
	if !haveHead {
		headBlock = 0
	}

	wm, ok, err := sr.watchMeta()
	if err != nil {
		return nil, err
	}
	if !ok {
		return &QueryResult{
			RequestedStart: reqLo,
			RequestedEnd:   reqHi,
			HeadBlock:      headBlock,
			Message:        "no watch metadata for this key",
		}, nil
	}

	startBlock := wm.StartBlock
	effLo := reqLo
	if startBlock > effLo {
		effLo = startBlock
	}
	effHi := reqHi
	if headBlock < effHi {
		effHi = headBlock
	}

	res := &QueryResult{
		RequestedStart:  reqLo,
		RequestedEnd:    reqHi,
		WatchStartBlock: &startBlock,
		HeadBlock:       headBlock,
	}

	if effLo > effHi {
		res.EffectiveStart, res.EffectiveEnd = effLo, effHi
		res.Message = fmt.Sprintf("requested range [%d,%d] does not overlap coverage [%d,%d]", reqLo, reqHi, startBlock, headBlock)
		return res, nil
	}

	anchorBlock, b0, ok, err := sr.anchorUpTo(effLo)
	if err != nil {
		return nil, err
	}
	if !ok || anchorBlock < startBlock {
		return nil, ErrBelowCoverage
	}

	// pts holds the running balance at anchorBlock and at every block with
	// a recorded delta up to effHi, in ascending block order. A block can
	// carry a delta with no co-located snapshot (spec.md's engine MAY omit
	// the snapshot), so values between anchorBlock and effLo must still be
	// folded into the running total rather than only those inside
	// [effLo, effHi].
	type runningPoint struct {
		block uint64
		val   *uint256.Int
	}
	running := b0.Clone()
	pts := []runningPoint{{anchorBlock, running.Clone()}}

	err = sr.iterDeltas(anchorBlock, effHi, func(block uint64, plus, minus *uint256.Int, _ uint32) error {
		next := new(uint256.Int).Add(running, plus)
		next.Sub(next, minus)
		running = next
		pts = append(pts, runningPoint{block, running.Clone()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := make([]BalancePoint, 0, effHi-effLo+1)
	last := pts[0].val
	idx := 0
	for b := effLo; b <= effHi; b++ {
		for idx < len(pts) && pts[idx].block <= b {
			last = pts[idx].val
			idx++
		}
		data = append(data, BalancePoint{Block: b, Balance: last.Clone()})
	}

	res.EffectiveStart, res.EffectiveEnd = effLo, effHi
	res.Message = clampMessage(reqLo, reqHi, effLo, effHi)
	res.Data = data
	return res, nil
}

// runDeltaSeries implements get_deltas_in_range for an abstract series:
// sparse (only blocks with a stored delta) or dense (zero-filled across
// the effective range) depending on dense.
func runDeltaSeries(sr *series, headBlock uint64, haveHead bool, reqLo, reqHi uint64, dense bool) (*DeltaResult, error) {
	if !haveHead {
		headBlock = 0
	}

	wm, ok, err := sr.watchMeta()
	if err != nil {
		return nil, err
	}
	if !ok {
		return &DeltaResult{RequestedStart: reqLo, RequestedEnd: reqHi, HeadBlock: headBlock, Message: "no watch metadata for this key"}, nil
	}

	startBlock := wm.StartBlock
	effLo := reqLo
	if startBlock > effLo {
		effLo = startBlock
	}
	effHi := reqHi
	if headBlock < effHi {
		effHi = headBlock
	}

	res := &DeltaResult{
		RequestedStart:  reqLo,
		RequestedEnd:    reqHi,
		WatchStartBlock: &startBlock,
		HeadBlock:       headBlock,
	}

	if effLo > effHi {
		res.EffectiveStart, res.EffectiveEnd = effLo, effHi
		res.Message = fmt.Sprintf("requested range [%d,%d] does not overlap coverage [%d,%d]", reqLo, reqHi, startBlock, headBlock)
		return res, nil
	}

	sparse := make(map[uint64]DeltaPoint)
	lowerExclusive := effLo
	if lowerExclusive > 0 {
		lowerExclusive--
	}
	err = sr.iterDeltas(lowerExclusive, effHi, func(block uint64, plus, minus *uint256.Int, txCount uint32) error {
		if block < effLo {
			return nil
		}
		sparse[block] = DeltaPoint{Block: block, DeltaPlus: plus.Clone(), DeltaMinus: minus.Clone(), TxCount: txCount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var data []DeltaPoint
	if dense {
		data = make([]DeltaPoint, 0, effHi-effLo+1)
		for b := effLo; b <= effHi; b++ {
			if p, ok := sparse[b]; ok {
				data = append(data, p)
				continue
			}
			data = append(data, DeltaPoint{Block: b, DeltaPlus: new(uint256.Int), DeltaMinus: new(uint256.Int)})
		}
	} else {
		data = make([]DeltaPoint, 0, len(sparse))
		for b := effLo; b <= effHi; b++ {
			if p, ok := sparse[b]; ok {
				data = append(data, p)
			}
		}
	}

	res.EffectiveStart, res.EffectiveEnd = effLo, effHi
	res.Message = clampMessage(reqLo, reqHi, effLo, effHi)
	res.Data = data
	return res, nil
}

// --- ETH (per watched address) ------------------------------------------

func (s *Store) ethSeries(addr [20]byte) *series {
	return &series{
		watchMeta: func() (*codec.WatchMeta, bool, error) { return s.GetWatchMeta(addr) },
		anchorUpTo: func(block uint64) (uint64, *uint256.Int, bool, error) {
			prefix := codec.AddrPrefix(codec.PrefixEthSnapshot, addr)
			upper := codec.EthSnapshotKey(addr, block)
			key, val, ok, err := s.eng.SeekLastLE(prefix, upper)
			if err != nil {
				return 0, nil, false, wrapIo(err)
			}
			if !ok {
				return 0, nil, false, nil
			}
			_, b, err := codec.SplitAddrBlockKey(codec.PrefixEthSnapshot, key)
			if err != nil {
				return 0, nil, false, err
			}
			v, err := codec.DecodeSnapshot(val)
			if err != nil {
				return 0, nil, false, err
			}
			return b, v, true, nil
		},
		iterDeltas: func(lowerExclusive, upperInclusive uint64, fn func(uint64, *uint256.Int, *uint256.Int, uint32) error) error {
			lower := succKey(codec.EthDeltaKey(addr, lowerExclusive))
			upper := succKey(codec.EthDeltaKey(addr, upperInclusive))
			return s.eng.IterateRange(lower, upper, func(key, value []byte) error {
				_, block, err := codec.SplitAddrBlockKey(codec.PrefixEthDelta, key)
				if err != nil {
					return err
				}
				d, err := codec.DecodeBlockDelta(value)
				if err != nil {
					return err
				}
				return fn(block, d.DeltaPlus, d.DeltaMinus, d.TxCount)
			})
		},
	}
}

// GetBalancesInRange implements the ETH fill-forward query, spec.md §4.3.1.
func (s *Store) GetBalancesInRange(addr [20]byte, reqLo, reqHi uint64) (*QueryResult, error) {
	head, haveHead, err := s.GetHead()
	if err != nil {
		return nil, err
	}
	return runFillForward(s.ethSeries(addr), head, haveHead, reqLo, reqHi)
}

// GetDeltasInRange implements get_deltas_in_range for a watched address.
func (s *Store) GetDeltasInRange(addr [20]byte, reqLo, reqHi uint64, dense bool) (*DeltaResult, error) {
	head, haveHead, err := s.GetHead()
	if err != nil {
		return nil, err
	}
	return runDeltaSeries(s.ethSeries(addr), head, haveHead, reqLo, reqHi, dense)
}

// --- ERC20 (per watched (token, owner)) ----------------------------------

func (s *Store) erc20Series(to TokenOwner) *series {
	return &series{
		watchMeta: func() (*codec.WatchMeta, bool, error) { return s.GetTokenWatchMeta(to) },
		anchorUpTo: func(block uint64) (uint64, *uint256.Int, bool, error) {
			prefix := codec.TokenOwnerPrefix(codec.PrefixErc20Snapshot, to.Token, to.Owner)
			upper := codec.Erc20SnapshotKey(to.Token, to.Owner, block)
			key, val, ok, err := s.eng.SeekLastLE(prefix, upper)
			if err != nil {
				return 0, nil, false, wrapIo(err)
			}
			if !ok {
				return 0, nil, false, nil
			}
			_, _, b, err := codec.SplitTokenOwnerBlockKey(codec.PrefixErc20Snapshot, key)
			if err != nil {
				return 0, nil, false, err
			}
			v, err := codec.DecodeSnapshot(val)
			if err != nil {
				return 0, nil, false, err
			}
			return b, v, true, nil
		},
		iterDeltas: func(lowerExclusive, upperInclusive uint64, fn func(uint64, *uint256.Int, *uint256.Int, uint32) error) error {
			lower := succKey(codec.Erc20DeltaKey(to.Token, to.Owner, lowerExclusive))
			upper := succKey(codec.Erc20DeltaKey(to.Token, to.Owner, upperInclusive))
			return s.eng.IterateRange(lower, upper, func(key, value []byte) error {
				_, _, block, err := codec.SplitTokenOwnerBlockKey(codec.PrefixErc20Delta, key)
				if err != nil {
					return err
				}
				d, err := codec.DecodeErc20Delta(value)
				if err != nil {
					return err
				}
				return fn(block, d.DeltaPlus, d.DeltaMinus, d.TxCount)
			})
		},
	}
}

// GetErc20BalancesInRange is the ERC20 symmetric variant of GetBalancesInRange.
func (s *Store) GetErc20BalancesInRange(to TokenOwner, reqLo, reqHi uint64) (*QueryResult, error) {
	head, haveHead, err := s.GetHead()
	if err != nil {
		return nil, err
	}
	return runFillForward(s.erc20Series(to), head, haveHead, reqLo, reqHi)
}

// GetErc20DeltasInRange is the ERC20 symmetric variant of GetDeltasInRange.
func (s *Store) GetErc20DeltasInRange(to TokenOwner, reqLo, reqHi uint64, dense bool) (*DeltaResult, error) {
	head, haveHead, err := s.GetHead()
	if err != nil {
		return nil, err
	}
	return runDeltaSeries(s.erc20Series(to), head, haveHead, reqLo, reqHi, dense)
}
