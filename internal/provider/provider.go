// Package provider implements the wallet provider capability: a JSON-RPC
// request surface plus pushed accountsChanged/chainChanged events.
package provider

import (
	"context"
	"fmt"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/event"
)

// JSON-RPC methods the faucet relies on.
const (
	MethodRequestAccounts = "eth_requestAccounts"
	MethodAccounts        = "eth_accounts"
	MethodChainID         = "eth_chainId"
	MethodNetVersion      = "net_version"
	MethodGetBalance      = "eth_getBalance"
	MethodSendTransaction = "eth_sendTransaction"

	methodGasPrice           = "eth_gasPrice"
	methodEstimateGas        = "eth_estimateGas"
	methodTransactionCount   = "eth_getTransactionCount"
	methodSendRawTransaction = "eth_sendRawTransaction"
)

var (
	// ErrAbsent is wrapped by every detection failure. Absence is final for the
	// session it was detected in.
	ErrAbsent = errors.New("no wallet provider detected")

	// ErrUnknownAccount is returned when a transaction names a sender the
	// provider cannot sign for.
	ErrUnknownAccount = errors.New("unknown account")
)

// Provider is a wallet provider the controller talks to.
type Provider interface {
	// Request issues a JSON-RPC call and decodes the result into result.
	Request(ctx context.Context, result any, method string, params ...any) error
	// Subscribe delivers account and chain changes to ch. The channel must be
	// drained; a slow reader blocks the provider's watcher.
	Subscribe(ch chan<- Event) event.Subscription
	// Close stops the watcher, ends all subscriptions and releases the
	// connection.
	Close()
}

// EventKind identifies what changed.
type EventKind int

const (
	AccountsChanged EventKind = iota + 1
	ChainChanged
)

func (k EventKind) String() string {
	switch k {
	case AccountsChanged:
		return "accountsChanged"
	case ChainChanged:
		return "chainChanged"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a change pushed by the provider.
type Event struct {
	Kind     EventKind
	Accounts []common.Address // AccountsChanged: new list, first entry is active
	ChainID  *big.Int         // ChainChanged: new chain id
}

// TxArgs is the eth_sendTransaction parameter object.
type TxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
}
