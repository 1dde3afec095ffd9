// Package rpcclient wraps the upstream JSON-RPC contract spec.md §6
// requires (eth_blockNumber, eth_getBlockByNumber, eth_getTransactionReceipt,
// debug_traceTransaction, eth_getCode, eth_getBalance,
// eth_getTransactionCount, eth_call), adapted from the teacher's
// clients/execution/rpc.ExecutionClient: same rpc.Client + ethclient.Client
// pairing and header-injection support, trimmed of the admin/peer/ssh-tunnel
// surface this watcher never calls.
package rpcclient

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client is the execution-layer JSON-RPC client the watcher tails.
type Client struct {
	endpoint  string
	headers   map[string]string
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// New constructs a Client bound to endpoint. Dial happens in Connect, not
// here, so construction never blocks or fails on network I/O.
func New(endpoint string, headers map[string]string) *Client {
	return &Client{endpoint: endpoint, headers: headers}
}

// Connect dials the endpoint and applies any configured headers -- for
// authenticated RPC providers (Infura/Alchemy-style) that require an
// API key or bearer token per request.
func (c *Client) Connect(ctx context.Context) error {
	if c.ethClient != nil {
		return nil
	}

	rpcClient, err := rpc.DialContext(ctx, c.endpoint)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	for k, v := range c.headers {
		rpcClient.SetHeader(k, v)
	}

	c.rpcClient = rpcClient
	c.ethClient = ethclient.NewClient(rpcClient)
	return nil
}

func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// ChainID implements eth_chainId, used to pick the transaction signer for
// sender recovery.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	v, err := c.ethClient.ChainID(ctx)
	return v, wrapRpc(err)
}

// LatestBlockNumber implements eth_blockNumber.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	v, err := c.ethClient.BlockNumber(ctx)
	return v, wrapRpc(err)
}

// BlockByNumber implements eth_getBlockByNumber(number, full=true).
func (c *Client) BlockByNumber(ctx context.Context, number uint64) (*types.Block, error) {
	v, err := c.ethClient.BlockByNumber(ctx, new(big.Int).SetUint64(number))
	return v, wrapRpc(err)
}

// TransactionReceipt implements eth_getTransactionReceipt.
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	v, err := c.ethClient.TransactionReceipt(ctx, txHash)
	return v, wrapRpc(err)
}

// CodeAt implements eth_getCode(addr, "latest").
func (c *Client) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	v, err := c.ethClient.CodeAt(ctx, addr, nil)
	return v, wrapRpc(err)
}

// BalanceAt implements eth_getBalance(addr, tag).
func (c *Client) BalanceAt(ctx context.Context, addr common.Address, blockNumber *big.Int) (*big.Int, error) {
	v, err := c.ethClient.BalanceAt(ctx, addr, blockNumber)
	return v, wrapRpc(err)
}

// NonceAt implements eth_getTransactionCount(addr, tag).
func (c *Client) NonceAt(ctx context.Context, addr common.Address, blockNumber *big.Int) (uint64, error) {
	v, err := c.ethClient.NonceAt(ctx, addr, blockNumber)
	return v, wrapRpc(err)
}

// CallContract implements eth_call({to, data}, tag), used for the ERC20
// balanceOf(owner) view.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	v, err := c.ethClient.CallContract(ctx, msg, blockNumber)
	return v, wrapRpc(err)
}
