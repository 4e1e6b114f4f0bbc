package faucet

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mohsinsiddi/w3faucet/internal/chain"
	"github.com/Mohsinsiddi/w3faucet/internal/config"
	"github.com/Mohsinsiddi/w3faucet/internal/contract"
	"github.com/Mohsinsiddi/w3faucet/internal/logger"
	"github.com/Mohsinsiddi/w3faucet/internal/metrics"
	"github.com/Mohsinsiddi/w3faucet/internal/provider"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

const (
	defaultContractName = "Faucet"
	defaultSyncBackoff  = 250 * time.Millisecond
	inboxSize           = 16
	providerEventBuffer = 8
)

// Reset reasons, also used as metric labels.
const (
	reasonStart           = "start"
	reasonChainChanged    = "chain_changed"
	reasonAccountsChanged = "accounts_changed"
	reasonManual          = "manual"
)

// Detector locates the wallet provider. A nil provider with an error is
// absence; it is not retried within a generation.
type Detector interface {
	Detect(ctx context.Context) (provider.Provider, error)
}

// Binder produces the contract handle for the provider's network.
type Binder interface {
	Bind(ctx context.Context, name string, p provider.Provider) (*contract.Handle, error)
}

// Controller owns the connection state. Run is its only writer; every
// mutation arrives as a message on the inbox and is applied in order.
type Controller struct {
	detector Detector
	binder   Binder

	contractName string
	policy       string
	syncTimeout  time.Duration
	syncRetries  int
	syncBackoff  time.Duration
	txTimeout    time.Duration
	log          *log.Logger
	metrics      *metrics.Metrics

	inbox   chan message
	snap    atomic.Pointer[State]
	feed    event.Feed
	scope   event.SubscriptionScope
	running atomic.Bool
	done    chan struct{}

	// Owned by the Run goroutine.
	ctx     context.Context
	cur     State
	sub     event.Subscription
	pending []provider.Event // events seen while loading
	wg      sync.WaitGroup
}

// New creates a Controller in the uninitialized state. Nothing happens
// until Run is called.
func New(detector Detector, binder Binder, opts ...Option) *Controller {
	c := &Controller{
		detector:     detector,
		binder:       binder,
		contractName: defaultContractName,
		policy:       config.PolicySoft,
		syncTimeout:  config.DefaultSyncTimeout,
		syncRetries:  2,
		syncBackoff:  defaultSyncBackoff,
		txTimeout:    config.DefaultTxTimeout,
		inbox:        make(chan message, inboxSize),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	c.log = c.log.WithPrefix("faucet")
	c.snap.Store(&State{})
	return c
}

// State returns the latest published snapshot.
func (c *Controller) State() State {
	return *c.snap.Load()
}

// Subscribe delivers every published snapshot to ch. Subscribers must keep
// reading: a stalled subscriber stalls the controller.
func (c *Controller) Subscribe(ch chan<- State) event.Subscription {
	return c.scope.Track(c.feed.Subscribe(ch))
}

// Done is closed when Run has returned.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Run initializes the connection and processes messages until ctx is
// cancelled. It may be called once.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)

	c.ctx = ctx
	c.reinitialize(reasonStart)

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case m := <-c.inbox:
			c.handle(m)
		}
	}
}

// Reinitialize tears the connection down and rebuilds it from detection.
func (c *Controller) Reinitialize(ctx context.Context) error {
	if !c.post(ctx, resetMsg{reason: reasonManual}) {
		return c.postErr(ctx)
	}
	return nil
}

// --- messages ---

type message interface{}

type resetMsg struct {
	reason string
}

type initResult struct {
	gen      uint64
	provider provider.Provider
	sub      event.Subscription
	client   *chain.Client
	contract *contract.Handle
	accounts []common.Address
	detected error
	bindErr  error
}

type providerEvent struct {
	gen uint64
	ev  provider.Event
}

type balanceResult struct {
	gen   uint64
	epoch uint64
	wei   *big.Int
	err   error
}

type reloadMsg struct {
	gen   uint64
	reply chan reloadReply
}

type reloadReply struct {
	epoch uint64
	ok    bool
}

type accountsMsg struct {
	gen      uint64
	accounts []common.Address
	reply    chan bool
}

func (c *Controller) handle(m message) {
	switch m := m.(type) {
	case resetMsg:
		c.reinitialize(m.reason)
	case initResult:
		c.applyInit(m)
	case providerEvent:
		c.applyEvent(m)
	case balanceResult:
		c.applyBalance(m)
	case reloadMsg:
		c.applyReload(m)
	case accountsMsg:
		c.applyAccounts(m)
	}
}

// stopped reports whether Run has returned.
func (c *Controller) stopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// post hands m to the Run loop. It fails if ctx ends or Run has returned.
func (c *Controller) post(ctx context.Context, m message) bool {
	if c.stopped() {
		return false
	}
	select {
	case c.inbox <- m:
		return true
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	}
}

func (c *Controller) postErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrStopped
}

func (c *Controller) publish(s State) {
	c.cur = s
	c.snap.Store(&s)
	c.feed.Send(s)
}

// --- lifecycle ---

// reinitialize drops the current provider and starts a new generation:
// uninitialized, then loading while detection runs in the background.
func (c *Controller) reinitialize(reason string) {
	c.teardown()

	gen := c.cur.Generation + 1
	if reason != reasonStart {
		c.log.Info("reinitializing connection", "reason", reason, "generation", gen)
		c.metrics.IncReset(reason)
	}
	c.metrics.SetReloadEpoch(0)
	c.pending = nil

	c.publish(State{Status: StatusUninitialized, Generation: gen})
	c.publish(State{Status: StatusLoading, Generation: gen})

	c.wg.Add(1)
	go c.initialize(gen)
}

// initialize runs detection, binding and the first account lookup off the
// Run goroutine and reports back with an initResult.
func (c *Controller) initialize(gen uint64) {
	defer c.wg.Done()
	ctx := c.ctx

	res := initResult{gen: gen}
	p, err := c.detector.Detect(ctx)
	if err != nil || p == nil {
		if p != nil {
			p.Close()
		}
		if err == nil {
			err = errors.New("detector returned no provider")
		}
		res.detected = err
		c.post(ctx, res)
		return
	}
	// Subscribe before binding: a chain change during Bind must reach the
	// loop, which holds it until the result below is applied.
	res.sub = c.watch(gen, p)
	res.provider = p
	res.client = chain.NewClient(p)
	res.contract, res.bindErr = c.binder.Bind(ctx, c.contractName, p)

	accounts, err := res.client.GetAccounts(ctx)
	if err != nil {
		c.log.Warn("could not read accounts", "err", err)
	}
	res.accounts = accounts

	if !c.post(ctx, res) {
		res.sub.Unsubscribe()
		p.Close()
	}
}

func (c *Controller) applyInit(res initResult) {
	if res.gen != c.cur.Generation || c.cur.Status != StatusLoading {
		if res.sub != nil {
			res.sub.Unsubscribe()
		}
		if res.provider != nil {
			res.provider.Close()
		}
		return
	}

	s := c.cur
	s.ProviderDetected = true

	if res.detected != nil {
		s.Status = StatusAbsent
		s.Err = asAbsent(res.detected)
		c.log.Warn("no wallet provider detected", "err", res.detected)
		c.publish(s)
		return
	}

	c.sub = res.sub
	s.Provider = res.provider
	s.Client = res.client
	s.Contract = res.contract
	if len(res.accounts) > 0 {
		a := res.accounts[0]
		s.Account = &a
	}

	if res.bindErr != nil {
		s.Status = StatusWrongNetwork
		s.Err = res.bindErr
		var rerr *ContractResolutionError
		if errors.As(res.bindErr, &rerr) {
			s.NetworkID = rerr.NetworkID
		}
		c.log.Warn("contract not available on this network", "contract", c.contractName, "network", s.NetworkID, "err", res.bindErr)
	} else {
		s.Status = StatusReady
		s.NetworkID = res.contract.NetworkID
		c.log.Info("connected", "contract", res.contract.Address.Hex(), "network", s.NetworkID, "account", accountString(s.Account))
	}

	c.publish(s)

	pending := c.pending
	c.pending = nil
	for _, ev := range pending {
		c.applyEvent(providerEvent{gen: s.Generation, ev: ev})
		if c.cur.Generation != s.Generation {
			return
		}
	}

	if c.cur.Contract != nil {
		c.startSync(c.cur)
	}
}

// watch forwards the provider's events into the inbox, tagged with gen so
// events from a torn-down provider are ignored.
func (c *Controller) watch(gen uint64, p provider.Provider) event.Subscription {
	ch := make(chan provider.Event, providerEventBuffer)
	sub := p.Subscribe(ch)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case ev := <-ch:
				if !c.post(c.ctx, providerEvent{gen: gen, ev: ev}) {
					return
				}
			case <-sub.Err():
				return
			case <-c.ctx.Done():
				return
			}
		}
	}()
	return sub
}

func (c *Controller) applyEvent(m providerEvent) {
	if m.gen != c.cur.Generation {
		return
	}
	if c.cur.Status == StatusLoading {
		c.pending = append(c.pending, m.ev)
		return
	}
	if c.cur.Provider == nil {
		return
	}

	switch m.ev.Kind {
	case provider.ChainChanged:
		c.log.Info("chain changed", "chain", m.ev.ChainID)
		c.reinitialize(reasonChainChanged)

	case provider.AccountsChanged:
		if c.policy == config.PolicyReset {
			c.reinitialize(reasonAccountsChanged)
			return
		}
		s := c.cur
		s.Account = firstAccount(m.ev.Accounts)
		c.log.Info("account changed", "account", accountString(s.Account))
		c.publish(s)
	}
}

func (c *Controller) applyAccounts(m accountsMsg) {
	ok := m.gen == c.cur.Generation && c.cur.Provider != nil
	if ok {
		s := c.cur
		s.Account = firstAccount(m.accounts)
		c.publish(s)
	}
	m.reply <- ok
}

// teardown releases the current generation's provider. Results still in
// flight for it are discarded by their generation tag.
func (c *Controller) teardown() {
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	if c.cur.Provider != nil {
		c.cur.Provider.Close()
	}
}

func (c *Controller) shutdown() {
	c.teardown()
	c.scope.Close()
	c.wg.Wait()

	// Close providers from init results that never got applied.
	for {
		select {
		case m := <-c.inbox:
			if res, ok := m.(initResult); ok && res.provider != nil {
				res.sub.Unsubscribe()
				res.provider.Close()
			}
		default:
			return
		}
	}
}

func firstAccount(accounts []common.Address) *common.Address {
	if len(accounts) == 0 {
		return nil
	}
	a := accounts[0]
	return &a
}

func accountString(a *common.Address) string {
	if a == nil {
		return "none"
	}
	return a.Hex()
}
