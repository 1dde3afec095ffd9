package watcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/evmstate/logging"
	"github.com/ethpandaops/evmstate/metrics"
	"github.com/ethpandaops/evmstate/rpcclient"
	"github.com/ethpandaops/evmstate/store"
	"github.com/ethpandaops/evmstate/store/codec"
)

// DefaultPollInterval matches spec.md §4.9's default retry cadence.
const DefaultPollInterval = 12 * time.Second

// Watched describes the address set and ERC20 (token, owner) pairs the
// watcher tails, loaded by the external watchlist/token-list collaborator.
type Watched struct {
	Addresses []common.Address
	// Tokens maps a watched token contract to the set of owners tracked
	// for it.
	Tokens map[common.Address][]common.Address
}

// Watcher implements the Uninitialized -> Initializing -> Tailing state
// machine of spec.md §4.9, orchestrating the fee calculator, contract
// cache, apply logic, trace parser and ERC20 tracker against one RPC
// client and one Store.
type Watcher struct {
	client       *rpcclient.Client
	store        *store.Store
	cache        *ContractCache
	logger       logrus.FieldLogger
	pollInterval time.Duration

	signer types.Signer

	watchedAddrs  map[common.Address]bool
	watchedTokens map[common.Address]bool
	watchedOwners map[tokenOwner]bool
	tokenOwners   map[common.Address][]common.Address
}

// NewWatcher constructs a Watcher. Call Initialize once, then Run.
func NewWatcher(client *rpcclient.Client, st *store.Store, cache *ContractCache, watched Watched, pollInterval time.Duration, logger logrus.FieldLogger) *Watcher {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	w := &Watcher{
		client:        client,
		store:         st,
		cache:         cache,
		logger:        logger,
		pollInterval:  pollInterval,
		watchedAddrs:  make(map[common.Address]bool, len(watched.Addresses)),
		watchedTokens: make(map[common.Address]bool, len(watched.Tokens)),
		watchedOwners: make(map[tokenOwner]bool),
		tokenOwners:   watched.Tokens,
	}
	for _, a := range watched.Addresses {
		w.watchedAddrs[a] = true
	}
	for token, owners := range watched.Tokens {
		w.watchedTokens[token] = true
		for _, owner := range owners {
			w.watchedOwners[tokenOwner{token: token, owner: owner}] = true
		}
	}
	return w
}

func (w *Watcher) isWatchedOwner(token, owner common.Address) bool {
	return w.watchedOwners[tokenOwner{token: token, owner: owner}]
}

// Initialize performs the startup sequence of spec.md §4.9: reads the
// current latest block and snapshots, at it, every watched address and
// (token, owner) pair that the store doesn't already know about.
//
// On a first run (no existing head) that's every watched entry, and head
// is set to the latest block fetched here. On a restart, existing
// entries are left untouched -- head stays wherever it was -- and only
// entries added to the watchlist/token-list since the last run (missing
// an AccountRecord/TokenWatchMeta) are backfilled at the current latest
// block, mirroring the resume handling of watcher.rs's `initialize`.
func (w *Watcher) Initialize(ctx context.Context) error {
	if err := w.loadSigner(ctx); err != nil {
		return err
	}

	latest, err := w.client.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest block: %w", err)
	}

	head, haveHead, err := w.store.GetHead()
	if err != nil {
		return err
	}
	newHead := latest
	if haveHead {
		newHead = head
	}
	at := new(big.Int).SetUint64(latest)

	batch := &store.BlockBatch{
		Block:               latest,
		NewHead:             newHead,
		AddressSnapshots:    make(map[[20]byte]*uint256.Int),
		AccountRecords:      make(map[[20]byte]*codec.AccountRecord),
		AddressInits:        make(map[[20]byte]store.AddressInit),
		TokenOwnerSnapshots: make(map[store.TokenOwner]*uint256.Int),
		TokenOwnerCurrent:   make(map[store.TokenOwner]*uint256.Int),
		TokenOwnerInits:     make(map[store.TokenOwner]store.TokenOwnerInit),
	}

	for addr := range w.watchedAddrs {
		if _, ok, err := w.store.GetAccount(addr); err != nil {
			return err
		} else if ok {
			continue
		}

		balance, err := w.client.BalanceAt(ctx, addr, at)
		if err != nil {
			return fmt.Errorf("eth_getBalance(%s): %w", addr, err)
		}
		nonce, err := w.client.NonceAt(ctx, addr, at)
		if err != nil {
			return fmt.Errorf("eth_getTransactionCount(%s): %w", addr, err)
		}
		bal, _ := uint256.FromBig(balance)

		batch.AddressSnapshots[addr] = bal
		batch.AccountRecords[addr] = &codec.AccountRecord{Nonce: nonce, Balance: bal}
		batch.AddressInits[addr] = store.AddressInit{StartBlock: latest}
	}

	for token, owners := range w.tokenOwners {
		for _, owner := range owners {
			to := store.TokenOwner{Token: token, Owner: owner}
			if _, ok, err := w.store.GetTokenWatchMeta(to); err != nil {
				return err
			} else if ok {
				continue
			}

			bal, err := rpcclient.TokenBalanceOf(ctx, w.client, token, owner, at)
			if err != nil {
				return fmt.Errorf("balanceOf(%s) on %s: %w", owner, token, err)
			}
			batch.TokenOwnerSnapshots[to] = bal
			batch.TokenOwnerCurrent[to] = bal
			batch.TokenOwnerInits[to] = store.TokenOwnerInit{StartBlock: latest}
		}
	}

	// On restart with nothing new to backfill, leave the store untouched
	// entirely rather than rewriting an unchanged head.
	if haveHead && len(batch.AddressInits) == 0 && len(batch.TokenOwnerInits) == 0 {
		w.logger.Debug("no new watchlist entries to initialize")
		return nil
	}

	if err := w.store.WriteBlockBatch(batch); err != nil {
		return err
	}
	metrics.HeadBlock.Set(float64(newHead))

	w.logger.WithField("block", latest).Info("watcher initialized")
	return nil
}

func (w *Watcher) loadSigner(ctx context.Context) error {
	if w.signer != nil {
		return nil
	}
	chainID, err := w.client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("eth_chainId: %w", err)
	}
	w.signer = types.LatestSignerForChainID(chainID)
	return nil
}

// Run repeats the Tail step of spec.md §4.9 until ctx is cancelled. A
// cancellation finishes (or cleanly discards) the in-flight block before
// returning, since each block's work is scoped to a single commit.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		if err := w.tailOnce(ctx); err != nil {
			logging.LogError(err, "tail iteration failed, will retry on next poll", 0)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// tailOnce runs one Tail iteration: poll latest, process every block up
// to it sequentially. An RPC failure mid-block abandons that block; no
// partial state is persisted, and the next call resumes at the same head.
func (w *Watcher) tailOnce(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.LastPollDuration.Set(time.Since(start).Seconds()) }()

	head, ok, err := w.store.GetHead()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("watcher not initialized")
	}

	latest, err := w.client.LatestBlockNumber(ctx)
	if err != nil {
		metrics.RpcErrors.Inc()
		return fmt.Errorf("eth_blockNumber: %w", err)
	}
	if latest <= head {
		return nil
	}

	for b := head + 1; b <= latest; b++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.processBlock(ctx, b); err != nil {
			if errors.Is(err, rpcclient.ErrRpc) {
				metrics.RpcErrors.Inc()
			}
			return fmt.Errorf("process block %d: %w", b, err)
		}
		metrics.BlocksProcessed.Inc()
		metrics.HeadBlock.Set(float64(b))
	}
	return nil
}

// processBlock implements Tail step 3 of spec.md §4.9 for a single block.
func (w *Watcher) processBlock(ctx context.Context, number uint64) error {
	block, err := w.client.BlockByNumber(ctx, number)
	if err != nil {
		return fmt.Errorf("eth_getBlockByNumber(%d): %w", number, err)
	}

	addrAcc := newAddressAccumulator()
	tokenAcc := newTokenAccumulator()

	for _, tx := range block.Transactions() {
		receipt, err := w.client.TransactionReceipt(ctx, tx.Hash())
		if err != nil {
			return fmt.Errorf("eth_getTransactionReceipt(%s): %w", tx.Hash(), err)
		}

		from, err := types.Sender(w.signer, tx)
		if err != nil {
			w.logger.WithError(err).WithField("tx", tx.Hash()).Warn("could not recover sender, skipping")
			continue
		}

		var trace *rpcclient.CallFrame
		if receipt.Status == types.ReceiptStatusSuccessful {
			trace, err = rpcclient.TraceTransaction(ctx, w.client, tx.Hash())
			if err != nil {
				w.logger.WithError(err).WithField("tx", tx.Hash()).Debug("trace unavailable, no internal credits")
				trace = nil
			}
		}

		if err := ApplyTransaction(ctx, addrAcc, tx, from, receipt, block.BaseFee(), w.watchedAddrs, w.cache, trace, w.logger); err != nil {
			return err
		}

		if receipt.Status == types.ReceiptStatusSuccessful {
			for _, log := range receipt.Logs {
				TrackLog(tokenAcc, log, w.watchedTokens, w.isWatchedOwner)
			}
		}
	}

	return w.commitBlock(number, block, addrAcc, tokenAcc)
}

// commitBlock snapshots every address/(token,owner) touched this block
// and writes the atomic batch, per spec.md §4.9 Tail steps d-e.
func (w *Watcher) commitBlock(number uint64, block *types.Block, addrAcc *addressAccumulator, tokenAcc *tokenAccumulator) error {
	batch := &store.BlockBatch{
		Block:   number,
		NewHead: number,
		Header: &codec.HeaderRecord{
			Number:     number,
			Hash:       block.Hash(),
			ParentHash: block.ParentHash(),
			Timestamp:  block.Time(),
		},
		BlockHash:           block.Hash(),
		AddressDeltas:       make(map[[20]byte]*codec.BlockDelta),
		AddressSnapshots:    make(map[[20]byte]*uint256.Int),
		AccountRecords:      make(map[[20]byte]*codec.AccountRecord),
		TokenOwnerDeltas:    make(map[store.TokenOwner]*codec.Erc20Delta),
		TokenOwnerSnapshots: make(map[store.TokenOwner]*uint256.Int),
		TokenOwnerCurrent:   make(map[store.TokenOwner]*uint256.Int),
	}
	if block.BaseFee() != nil {
		base, _ := uint256.FromBig(block.BaseFee())
		batch.Header.BaseFee = base
	}

	for addr, delta := range addrAcc.entries {
		batch.AddressDeltas[addr] = delta

		prev, ok, err := w.store.GetAccount(addr)
		if err != nil {
			return err
		}
		bal := new(uint256.Int)
		nonce := uint64(0)
		if ok {
			bal = prev.Balance
			nonce = prev.Nonce
		}
		newBal := new(uint256.Int).Add(bal, delta.DeltaPlus)
		newBal.Sub(newBal, delta.DeltaMinus)
		newNonce := nonce + uint64(delta.NonceDelta)

		batch.AddressSnapshots[addr] = newBal
		batch.AccountRecords[addr] = &codec.AccountRecord{Nonce: newNonce, Balance: newBal}
	}

	for to, delta := range tokenAcc.entries {
		key := store.TokenOwner{Token: to.token, Owner: to.owner}
		batch.TokenOwnerDeltas[key] = delta

		prevBal, _, err := w.store.GetErc20CurrentBalance(key)
		if err != nil {
			return err
		}
		if prevBal == nil {
			prevBal = new(uint256.Int)
		}
		newBal := new(uint256.Int).Add(prevBal, delta.DeltaPlus)
		newBal.Sub(newBal, delta.DeltaMinus)

		batch.TokenOwnerSnapshots[key] = newBal
		batch.TokenOwnerCurrent[key] = newBal
	}

	return w.store.WriteBlockBatch(batch)
}
