package config

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// addressListFile is the on-disk shape of the watched-address list named
// by Watchlist.AddressesFile: a flat list of hex addresses.
type addressListFile struct {
	Addresses []string `yaml:"addresses"`
}

// tokenListFile is the on-disk shape of the watched-token list named by
// Watchlist.TokensFile: one entry per token contract, each naming the
// owner addresses tracked against it.
type tokenListFile struct {
	Tokens []struct {
		Token  string   `yaml:"token"`
		Owners []string `yaml:"owners"`
	} `yaml:"tokens"`
}

// LoadAddresses reads the flat watched-address list the watcher
// snapshots and tails at §4.9's Initialize step.
func LoadAddresses(path string) ([]common.Address, error) {
	if path == "" {
		return nil, nil
	}

	var file addressListFile
	if err := decodeYamlFile(path, &file); err != nil {
		return nil, err
	}

	out := make([]common.Address, 0, len(file.Addresses))
	for _, a := range file.Addresses {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("watchlist %v: %q is not a valid address", path, a)
		}
		out = append(out, common.HexToAddress(a))
	}
	return out, nil
}

// LoadTokens reads the watched (token, owner) pairs the ERC20 tracker
// and Initialize step need.
func LoadTokens(path string) (map[common.Address][]common.Address, error) {
	if path == "" {
		return nil, nil
	}

	var file tokenListFile
	if err := decodeYamlFile(path, &file); err != nil {
		return nil, err
	}

	out := make(map[common.Address][]common.Address, len(file.Tokens))
	for _, entry := range file.Tokens {
		if !common.IsHexAddress(entry.Token) {
			return nil, fmt.Errorf("token-list %v: %q is not a valid token address", path, entry.Token)
		}
		token := common.HexToAddress(entry.Token)
		owners := make([]common.Address, 0, len(entry.Owners))
		for _, o := range entry.Owners {
			if !common.IsHexAddress(o) {
				return nil, fmt.Errorf("token-list %v: %q is not a valid owner address", path, o)
			}
			owners = append(owners, common.HexToAddress(o))
		}
		out[token] = owners
	}
	return out, nil
}

func decodeYamlFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %v: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %v: %w", path, err)
	}
	return nil
}
