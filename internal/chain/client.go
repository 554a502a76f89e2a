package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"actionScope/internal/model"
)

// ErrTraceUnavailable reports that the node could not supply traces for a block.
var ErrTraceUnavailable = errors.New("trace unavailable")

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return NewClientFromRPC(rpcClient), nil
}

// NewClientFromRPC wraps an already dialed RPC client.
func NewClientFromRPC(rpcClient *rpc.Client) *Client {
	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// TraceBlock returns every trace of the block in execution order, one per wire entry.
// An empty block yields an empty slice. Only a failed or empty response wraps
// ErrTraceUnavailable; odd entries are passed on for the classifier to report.
func (c *Client) TraceBlock(ctx context.Context, number uint64) ([]model.CallTrace, error) {
	var raw *[]ParityTrace
	if err := c.rpcClient.CallContext(ctx, &raw, "trace_block", hexutil.Uint64(number)); err != nil {
		return nil, fmt.Errorf("%w: block %d: %w", ErrTraceUnavailable, number, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: block %d not found", ErrTraceUnavailable, number)
	}

	traces := make([]model.CallTrace, 0, len(*raw))
	for _, entry := range *raw {
		traces = append(traces, entry.CallTrace())
	}
	return traces, nil
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}
