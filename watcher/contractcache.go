package watcher

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"

	"github.com/ethpandaops/evmstate/rpcclient"
)

// ContractCache memoizes "has code at address?" probes against the node,
// per spec.md §4.5. The default is the unbounded map the spec requires;
// NewBounded backs it with an LRU of operator-chosen size instead, the
// same escape hatch go-ethereum's les/clientpool.go takes for its own
// unbounded-by-default balance caches.
type ContractCache struct {
	mu       sync.Mutex
	client   *rpcclient.Client
	unbound  map[common.Address]bool
	bounded  *lru.Cache
}

// New constructs an unbounded contract cache.
func New(client *rpcclient.Client) *ContractCache {
	return &ContractCache{client: client, unbound: make(map[common.Address]bool)}
}

// NewBounded constructs an LRU-bounded contract cache of the given size.
func NewBounded(client *rpcclient.Client, size int) (*ContractCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &ContractCache{client: client, bounded: c}, nil
}

// IsContract reports whether addr has code deployed, per spec.md §4.5: on
// miss, query eth_getCode at the latest tag and record has_code =
// code.len() > 0. Concurrent access is safe; the watcher loop itself is
// single-threaded but query callers may probe the cache concurrently.
func (c *ContractCache) IsContract(ctx context.Context, addr common.Address) (bool, error) {
	c.mu.Lock()
	if v, ok := c.lookup(addr); ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	code, err := c.client.CodeAt(ctx, addr)
	if err != nil {
		return false, err
	}
	isContract := len(code) > 0

	c.mu.Lock()
	c.store(addr, isContract)
	c.mu.Unlock()

	return isContract, nil
}

func (c *ContractCache) lookup(addr common.Address) (bool, bool) {
	if c.bounded != nil {
		v, ok := c.bounded.Get(addr)
		if !ok {
			return false, false
		}
		return v.(bool), true
	}
	v, ok := c.unbound[addr]
	return v, ok
}

func (c *ContractCache) store(addr common.Address, isContract bool) {
	if c.bounded != nil {
		c.bounded.Add(addr, isContract)
		return
	}
	c.unbound[addr] = isContract
}
