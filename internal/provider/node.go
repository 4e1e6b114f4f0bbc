package provider

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/w3faucet/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
)

// NodeProvider fronts a node that manages unlocked accounts (Ganache,
// Hardhat, anvil). The node signs eth_sendTransaction itself.
type NodeProvider struct {
	client  *rpc.Client
	watcher *watcher
}

// NewNodeProvider wraps client. Once subscribed to, it watches the node's
// accounts and chain id every interval.
func NewNodeProvider(client *rpc.Client, interval time.Duration, l *log.Logger) *NodeProvider {
	if l == nil {
		l = logger.Discard()
	}
	p := &NodeProvider{client: client}
	p.watcher = newWatcher(interval, p.poll, l.WithPrefix("node"))
	return p
}

// Request forwards the call to the node. eth_requestAccounts is answered
// with eth_accounts since a node exposes its accounts without a prompt.
func (p *NodeProvider) Request(ctx context.Context, result any, method string, params ...any) error {
	if method == MethodRequestAccounts {
		method = MethodAccounts
	}
	if err := p.client.CallContext(ctx, result, method, params...); err != nil {
		return errors.Wrap(err, method)
	}
	return nil
}

// Subscribe implements Provider.
func (p *NodeProvider) Subscribe(ch chan<- Event) event.Subscription {
	return p.watcher.subscribe(ch)
}

// Close implements Provider.
func (p *NodeProvider) Close() {
	p.watcher.stop()
	p.client.Close()
}

func (p *NodeProvider) poll(ctx context.Context) (snapshot, error) {
	var accounts []common.Address
	if err := p.client.CallContext(ctx, &accounts, MethodAccounts); err != nil {
		return snapshot{}, err
	}
	var id hexutil.Big
	if err := p.client.CallContext(ctx, &id, MethodChainID); err != nil {
		return snapshot{}, err
	}
	if accounts == nil {
		accounts = []common.Address{}
	}
	return snapshot{accounts: accounts, chainID: id.ToInt()}, nil
}
