package faucet

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3faucet/internal/contract"
	"github.com/Mohsinsiddi/w3faucet/internal/provider"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/require"
)

var (
	acct0      = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	acct1      = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	faucetAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	txHash     = common.HexToHash("0x0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
)

func ether(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return new(big.Int).Mul(v, big.NewInt(1_000_000_000_000_000_000))
}

// fakeProvider is an in-process wallet provider. Events are pushed with emit.
type fakeProvider struct {
	mu          sync.Mutex
	networkID   string
	accounts    []common.Address
	granted     []common.Address // returned by eth_requestAccounts
	balance     *big.Int
	balanceErrs int // fail this many eth_getBalance calls first
	sendErr     error
	sent        []provider.TxArgs
	calls       map[string]int
	closed      bool

	feed event.Feed
}

func newFakeProvider(networkID string, accounts ...common.Address) *fakeProvider {
	return &fakeProvider{
		networkID: networkID,
		accounts:  accounts,
		granted:   accounts,
		balance:   new(big.Int),
		calls:     map[string]int{},
	}
}

func (f *fakeProvider) Request(_ context.Context, result any, method string, params ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++

	switch method {
	case provider.MethodNetVersion:
		*(result.(*string)) = f.networkID
	case provider.MethodAccounts:
		*(result.(*[]common.Address)) = append([]common.Address(nil), f.accounts...)
	case provider.MethodRequestAccounts:
		f.accounts = f.granted
		*(result.(*[]common.Address)) = append([]common.Address(nil), f.granted...)
	case provider.MethodGetBalance:
		if f.balanceErrs != 0 {
			if f.balanceErrs > 0 {
				f.balanceErrs--
			}
			return errors.New("connection reset by peer")
		}
		*(result.(*hexutil.Big)) = hexutil.Big(*new(big.Int).Set(f.balance))
	case provider.MethodSendTransaction:
		if f.sendErr != nil {
			return f.sendErr
		}
		f.sent = append(f.sent, params[0].(provider.TxArgs))
		*(result.(*common.Hash)) = txHash
	default:
		return errors.New("unsupported method " + method)
	}
	return nil
}

func (f *fakeProvider) Subscribe(ch chan<- provider.Event) event.Subscription {
	return f.feed.Subscribe(ch)
}

func (f *fakeProvider) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeProvider) emit(ev provider.Event) {
	f.feed.Send(ev)
}

func (f *fakeProvider) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeProvider) set(fn func(f *fakeProvider)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeProvider) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeProvider) sentTxs() []provider.TxArgs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.TxArgs(nil), f.sent...)
}

// fakeDetector hands out providers in order; the last one repeats. With
// no providers it reports absence.
type fakeDetector struct {
	mu        sync.Mutex
	providers []*fakeProvider
	err       error // returned alongside the provider
	calls     int
	onDetect  func()
}

func (d *fakeDetector) Detect(context.Context) (provider.Provider, error) {
	d.mu.Lock()
	d.calls++
	n := d.calls
	hook := d.onDetect
	d.mu.Unlock()

	if hook != nil {
		hook()
	}
	if len(d.providers) == 0 {
		return nil, errors.New("no endpoint configured")
	}
	if n > len(d.providers) {
		n = len(d.providers)
	}
	return d.providers[n-1], d.err
}

func (d *fakeDetector) detections() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// artifactBinder returns a real contract.Binder over a Faucet artifact
// deployed on network 5777.
func artifactBinder(t *testing.T) *contract.Binder {
	t.Helper()
	b, ok := contract.GetBuiltin("faucet")
	require.True(t, ok)

	data, err := json.Marshal(contract.Artifact{
		ContractName: "Faucet",
		ABI:          b.ABI,
		Networks:     map[string]contract.ArtifactNetwork{"5777": {Address: faucetAddr.Hex()}},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Faucet.json"), data, 0o600))
	return contract.NewBinder(contract.NewArtifactSource(dir, nil))
}

// afterBind runs hook once, after the first Bind returned.
type afterBind struct {
	Binder
	once sync.Once
	hook func()
}

func (b *afterBind) Bind(ctx context.Context, name string, p provider.Provider) (*contract.Handle, error) {
	h, err := b.Binder.Bind(ctx, name, p)
	b.once.Do(b.hook)
	return h, err
}

// start runs a controller until the test ends.
func start(t *testing.T, det Detector, opts ...Option) *Controller {
	t.Helper()
	return startWith(t, det, artifactBinder(t), opts...)
}

func startWith(t *testing.T, det Detector, binder Binder, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithSyncPolicy(time.Second, 2, time.Millisecond)}, opts...)
	c := New(det, binder, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx) //nolint:errcheck
	t.Cleanup(func() {
		cancel()
		<-c.Done()
	})
	return c
}

func waitFor(t *testing.T, c *Controller, cond func(State) bool) State {
	t.Helper()
	require.Eventually(t, func() bool { return cond(c.State()) }, 3*time.Second, 2*time.Millisecond)
	return c.State()
}

func synced(s State) bool {
	return s.Status == StatusReady && s.BalanceWei != nil
}

// recorder collects every published snapshot.
type recorder struct {
	mu     sync.Mutex
	states []State
}

func record(t *testing.T, c *Controller) *recorder {
	t.Helper()
	r := &recorder{}
	ch := make(chan State, 64)
	sub := c.Subscribe(ch)
	t.Cleanup(sub.Unsubscribe)
	go func() {
		for {
			select {
			case s := <-ch:
				r.mu.Lock()
				r.states = append(r.states, s)
				r.mu.Unlock()
			case <-sub.Err():
				return
			}
		}
	}()
	return r
}

func (r *recorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

// rpcNode is a JSON-RPC endpoint whose chain can be switched mid-test.
type rpcNode struct {
	mu         sync.Mutex
	chainID    string
	netVersion string
}

func newRPCNode(t *testing.T) (*rpcNode, string) {
	t.Helper()
	n := &rpcNode{chainID: "0x539", netVersion: "5777"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		n.mu.Lock()
		results := map[string]any{
			provider.MethodChainID:    n.chainID,
			provider.MethodNetVersion: n.netVersion,
			provider.MethodAccounts:   []string{acct0.Hex()},
			provider.MethodGetBalance: "0xde0b6b3a7640000",
		}
		n.mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if result, ok := results[req.Method]; ok {
			resp["result"] = result
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return n, srv.URL
}

func (n *rpcNode) switchTo(chainID, netVersion string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chainID = chainID
	n.netVersion = netVersion
}

// addrSigner is a provider.Signer that never signs.
type addrSigner string

func (a addrSigner) Address() string { return string(a) }

func (addrSigner) SignTx(*types.Transaction, *big.Int) ([]byte, error) {
	return nil, errors.New("not signing in tests")
}
