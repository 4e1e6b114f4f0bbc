package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// JSON-RPC methods the client issues.
const (
	methodGetBalance      = "eth_getBalance"
	methodAccounts        = "eth_accounts"
	methodRequestAccounts = "eth_requestAccounts"
	methodNetVersion      = "net_version"
)

// Requester is the JSON-RPC surface of a wallet provider.
type Requester interface {
	Request(ctx context.Context, result any, method string, params ...any) error
}

// Client is the chain client the controller reads balances and accounts
// through. Every call goes through the provider, the way a dapp wraps its
// injected provider.
type Client struct {
	rpc Requester
}

// NewClient creates a Client on top of a provider.
func NewClient(r Requester) *Client {
	return &Client{rpc: r}
}

// GetBalance returns the latest balance of address in wei.
func (c *Client) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	var result hexutil.Big
	if err := c.rpc.Request(ctx, &result, methodGetBalance, address, "latest"); err != nil {
		return nil, fmt.Errorf("getting balance of %s: %w", address.Hex(), err)
	}
	return result.ToInt(), nil
}

// GetAccounts returns the accounts the provider has already exposed, in the
// provider's order. It never prompts.
func (c *Client) GetAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.rpc.Request(ctx, &accounts, methodAccounts); err != nil {
		return nil, fmt.Errorf("getting accounts: %w", err)
	}
	return accounts, nil
}

// RequestAccounts asks the provider to expose its accounts
// (eth_requestAccounts).
func (c *Client) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.rpc.Request(ctx, &accounts, methodRequestAccounts); err != nil {
		return nil, fmt.Errorf("requesting accounts: %w", err)
	}
	return accounts, nil
}

// NetworkID returns the network id (net_version). Build artifacts key their
// deployments by this value, which differs from the chain id on Ganache.
func (c *Client) NetworkID(ctx context.Context) (string, error) {
	var id string
	if err := c.rpc.Request(ctx, &id, methodNetVersion); err != nil {
		return "", fmt.Errorf("getting network id: %w", err)
	}
	return id, nil
}
