package provider

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3faucet/internal/config"
	"github.com/Mohsinsiddi/w3faucet/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
)

// Signer signs transactions for one account. *wallet.Signer satisfies it.
type Signer interface {
	Address() string
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// KeystoreProvider acts as the wallet itself: accounts come from a local
// signer and eth_sendTransaction is signed locally and broadcast raw.
// Everything else goes to the node.
type KeystoreProvider struct {
	client  *rpc.Client
	watcher *watcher
	log     *log.Logger

	mu     sync.RWMutex
	signer Signer
}

// NewKeystoreProvider wraps client with signer as the active account. Once
// subscribed to, it watches the node's chain id every interval.
func NewKeystoreProvider(client *rpc.Client, signer Signer, interval time.Duration, l *log.Logger) *KeystoreProvider {
	if l == nil {
		l = logger.Discard()
	}
	p := &KeystoreProvider{client: client, signer: signer, log: l.WithPrefix("keystore")}
	p.watcher = newWatcher(interval, p.poll, p.log)
	return p
}

// Request implements Provider.
func (p *KeystoreProvider) Request(ctx context.Context, result any, method string, params ...any) error {
	switch method {
	case MethodAccounts, MethodRequestAccounts:
		return assign(result, []common.Address{p.account()})
	case MethodSendTransaction:
		hash, err := p.sendTransaction(ctx, params)
		if err != nil {
			return err
		}
		return assign(result, hash)
	}
	if err := p.client.CallContext(ctx, result, method, params...); err != nil {
		return errors.Wrap(err, method)
	}
	return nil
}

// SwitchSigner makes s the active account and publishes accountsChanged.
// It blocks until every subscriber has received the event.
func (p *KeystoreProvider) SwitchSigner(s Signer) {
	p.mu.Lock()
	p.signer = s
	p.mu.Unlock()
	p.watcher.send(Event{Kind: AccountsChanged, Accounts: []common.Address{common.HexToAddress(s.Address())}})
}

// Subscribe implements Provider.
func (p *KeystoreProvider) Subscribe(ch chan<- Event) event.Subscription {
	return p.watcher.subscribe(ch)
}

// Close implements Provider.
func (p *KeystoreProvider) Close() {
	p.watcher.stop()
	p.client.Close()
}

func (p *KeystoreProvider) account() common.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return common.HexToAddress(p.signer.Address())
}

func (p *KeystoreProvider) activeSigner() Signer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.signer
}

func (p *KeystoreProvider) poll(ctx context.Context) (snapshot, error) {
	var id hexutil.Big
	if err := p.client.CallContext(ctx, &id, MethodChainID); err != nil {
		return snapshot{}, err
	}
	return snapshot{chainID: id.ToInt()}, nil
}

func (p *KeystoreProvider) sendTransaction(ctx context.Context, params []any) (common.Hash, error) {
	if len(params) != 1 {
		return common.Hash{}, errors.Newf("eth_sendTransaction takes 1 parameter, got %d", len(params))
	}
	args, err := txArgsFrom(params[0])
	if err != nil {
		return common.Hash{}, err
	}

	signer := p.activeSigner()
	from := common.HexToAddress(signer.Address())
	if args.From != from {
		return common.Hash{}, errors.Wrapf(ErrUnknownAccount, "cannot sign for %s", args.From.Hex())
	}

	var chainID hexutil.Big
	if err := p.client.CallContext(ctx, &chainID, MethodChainID); err != nil {
		return common.Hash{}, errors.Wrap(err, "getting chain id")
	}

	var nonce hexutil.Uint64
	if err := p.client.CallContext(ctx, &nonce, methodTransactionCount, from, "pending"); err != nil {
		return common.Hash{}, errors.Wrap(err, "getting nonce")
	}

	var gasPrice hexutil.Big
	if err := p.client.CallContext(ctx, &gasPrice, methodGasPrice); err != nil {
		return common.Hash{}, errors.Wrap(err, "getting gas price")
	}

	var gas uint64
	if args.Gas != nil {
		gas = uint64(*args.Gas)
	} else {
		var estimate hexutil.Uint64
		if err := p.client.CallContext(ctx, &estimate, methodEstimateGas, args); err != nil {
			p.log.Debug("gas estimate failed, using fallback", "err", err, "gas", config.GasLimitContractCall)
			gas = config.GasLimitContractCall
		} else {
			gas = uint64(estimate)
		}
	}

	value := new(big.Int)
	if args.Value != nil {
		value = args.Value.ToInt()
	}

	price := gasPrice.ToInt()
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID.ToInt(),
		Nonce:     uint64(nonce),
		GasTipCap: price,
		GasFeeCap: new(big.Int).Mul(price, big.NewInt(2)),
		Gas:       gas,
		To:        args.To,
		Value:     value,
		Data:      args.Data,
	})

	raw, err := signer.SignTx(tx, chainID.ToInt())
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "signing transaction")
	}

	var hash common.Hash
	if err := p.client.CallContext(ctx, &hash, methodSendRawTransaction, hexutil.Encode(raw)); err != nil {
		return common.Hash{}, errors.Wrap(err, "broadcasting transaction")
	}
	p.log.Debug("transaction broadcast", "hash", hash.Hex(), "from", from.Hex(), "nonce", uint64(nonce))
	return hash, nil
}

// txArgsFrom accepts TxArgs, *TxArgs or any value with the same JSON shape.
func txArgsFrom(v any) (TxArgs, error) {
	switch a := v.(type) {
	case TxArgs:
		return a, nil
	case *TxArgs:
		if a == nil {
			return TxArgs{}, errors.New("nil transaction arguments")
		}
		return *a, nil
	}
	var args TxArgs
	if err := assign(&args, v); err != nil {
		return TxArgs{}, errors.Wrap(err, "decoding transaction arguments")
	}
	return args, nil
}

// assign copies v into result through its JSON encoding, the way a
// JSON-RPC response would be decoded.
func assign(result any, v any) error {
	if result == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}
