package main

import (
	"fmt"

	"github.com/ethpandaops/evmstate/store"
	pebbleengine "github.com/ethpandaops/evmstate/store/pebble"
)

// openStore opens the configured store directory read/write. Per spec.md
// §5, the CLI and watcher should not open the same store concurrently
// from separate processes unless the engine supports it.
func openStore() (*store.Store, func(), error) {
	eng, err := pebbleengine.Open(pebbleengine.Config{Path: storePath})
	if err != nil {
		return nil, nil, fmt.Errorf("open store at %s: %w", storePath, err)
	}
	st := store.New(eng)
	return st, func() { eng.Close() }, nil
}
