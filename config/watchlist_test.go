package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAddressesParsesHexList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addrs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addresses:
  - "0x0000000000000000000000000000000000000001"
  - "0x0000000000000000000000000000000000000002"
`), 0644))

	addrs, err := LoadAddresses(path)
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, common.HexToAddress("0x1"), addrs[0])
	assert.Equal(t, common.HexToAddress("0x2"), addrs[1])
}

func TestLoadAddressesRejectsMalformedEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addrs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addresses:\n  - \"not-an-address\"\n"), 0644))

	_, err := LoadAddresses(path)
	assert.ErrorContains(t, err, "not a valid address")
}

func TestLoadAddressesEmptyPathReturnsNil(t *testing.T) {
	addrs, err := LoadAddresses("")
	require.NoError(t, err)
	assert.Nil(t, addrs)
}

func TestLoadTokensParsesTokenOwnerPairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tokens:
  - token: "0x0000000000000000000000000000000000000009"
    owners:
      - "0x0000000000000000000000000000000000000001"
      - "0x0000000000000000000000000000000000000002"
`), 0644))

	tokens, err := LoadTokens(path)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	owners := tokens[common.HexToAddress("0x9")]
	require.Len(t, owners, 2)
	assert.Equal(t, common.HexToAddress("0x1"), owners[0])
}

func TestLoadTokensRejectsMalformedOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tokens:
  - token: "0x0000000000000000000000000000000000000009"
    owners:
      - "bogus"
`), 0644))

	_, err := LoadTokens(path)
	assert.ErrorContains(t, err, "not a valid owner address")
}
