package provider

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

// snapshot is what a watcher compares between polls. A nil accounts list
// on both sides never produces an event.
type snapshot struct {
	accounts []common.Address
	chainID  *big.Int
}

// changes returns the events that turn prev into next, chain first.
func (prev snapshot) changes(next snapshot) []Event {
	var evs []Event
	if prev.chainID != nil && next.chainID != nil && prev.chainID.Cmp(next.chainID) != 0 {
		evs = append(evs, Event{Kind: ChainChanged, ChainID: new(big.Int).Set(next.chainID)})
	}
	if !sameAccounts(prev.accounts, next.accounts) {
		evs = append(evs, Event{Kind: AccountsChanged, Accounts: append([]common.Address(nil), next.accounts...)})
	}
	return evs
}

func sameAccounts(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// watcher turns a polled node into pushed events. Polling starts with the
// first subscription, whose baseline poll completes before Subscribe
// returns; later polls publish differences on feed.
type watcher struct {
	interval time.Duration
	fetch    func(ctx context.Context) (snapshot, error)
	feed     *event.Feed
	scope    event.SubscriptionScope
	log      *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	mu      sync.Mutex
	started bool
	stopped bool
}

func newWatcher(interval time.Duration, fetch func(context.Context) (snapshot, error), logger *log.Logger) *watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &watcher{
		interval: interval,
		fetch:    fetch,
		feed:     new(event.Feed),
		log:      logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// subscribe delivers events to ch. The first call takes the baseline, so a
// change after it returns is always reported to ch.
func (w *watcher) subscribe(ch chan<- Event) event.Subscription {
	sub := w.scope.Track(w.feed.Subscribe(ch))

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return sub
	}
	w.started = true

	var last *snapshot
	if cur, err := w.poll(); err != nil {
		w.log.Debug("baseline poll failed", "err", err)
	} else {
		last = &cur
	}
	w.wg.Add(1)
	go w.loop(last)
	return sub
}

// send publishes ev to current subscribers outside the poll loop.
func (w *watcher) send(ev Event) {
	w.feed.Send(ev)
}

func (w *watcher) stop() {
	w.closeOnce.Do(func() {
		w.cancel()
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
		// Ending the subscriptions unblocks a Send waiting on a reader.
		w.scope.Close()
		w.wg.Wait()
	})
}

func (w *watcher) poll() (snapshot, error) {
	ctx, cancel := context.WithTimeout(w.ctx, w.interval)
	defer cancel()
	return w.fetch(ctx)
}

func (w *watcher) loop(last *snapshot) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
		}

		cur, err := w.poll()
		switch {
		case err != nil:
			if w.ctx.Err() == nil {
				w.log.Debug("provider poll failed", "err", err)
			}
		case last == nil:
			last = &cur
		default:
			for _, ev := range last.changes(cur) {
				w.log.Debug("provider event", "kind", ev.Kind, "accounts", len(ev.Accounts), "chain", ev.ChainID)
				w.feed.Send(ev)
			}
			last = &cur
		}
	}
}
