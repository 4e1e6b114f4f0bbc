package faucet

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/w3faucet/internal/chain"
	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
)

// startSync queries the contract balance for the snapshot's generation and
// reload epoch. The result is applied only if both are still current.
func (c *Controller) startSync(s State) {
	gen, epoch := s.Generation, s.ReloadEpoch
	client, addr := s.Client, s.Contract.Address

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		wei, err := c.fetchBalance(c.ctx, client, addr)
		c.post(c.ctx, balanceResult{gen: gen, epoch: epoch, wei: wei, err: err})
	}()
}

// fetchBalance runs eth_getBalance with a per-attempt timeout and a bounded
// number of exponential-backoff retries.
func (c *Controller) fetchBalance(ctx context.Context, client *chain.Client, addr common.Address) (*big.Int, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.syncBackoff
	bo.MaxInterval = 8 * c.syncBackoff

	attempt := 0
	op := func() (*big.Int, error) {
		attempt++
		actx, cancel := context.WithTimeout(ctx, c.syncTimeout)
		defer cancel()
		wei, err := client.GetBalance(actx, addr)
		if err != nil && attempt <= c.syncRetries {
			c.log.Debug("balance query failed, retrying", "attempt", attempt, "err", err)
		}
		return wei, err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.syncRetries)), ctx)
	return backoff.RetryWithData(op, policy)
}

func (c *Controller) applyBalance(m balanceResult) {
	if m.gen != c.cur.Generation || m.epoch != c.cur.ReloadEpoch || c.cur.Contract == nil {
		return
	}

	s := c.cur
	s.Synced = true
	if m.err != nil {
		s.SyncErr = &SyncError{Err: m.err}
		c.log.Error("balance sync failed", "contract", s.Contract.Address.Hex(), "epoch", m.epoch, "err", m.err)
		c.metrics.IncSync("error")
		c.publish(s)
		return
	}

	s.BalanceWei = m.wei
	s.SyncErr = nil
	c.log.Debug("balance synced", "ether", chain.FromWei(m.wei), "epoch", m.epoch)
	c.metrics.IncSync("ok")
	c.metrics.SetBalance(m.wei)
	c.publish(s)
}

// applyReload bumps the reload epoch, which schedules exactly one sync.
func (c *Controller) applyReload(m reloadMsg) {
	if m.gen != c.cur.Generation || c.cur.Contract == nil {
		m.reply <- reloadReply{}
		return
	}

	s := c.cur
	s.ReloadEpoch++
	s.Synced = false
	c.metrics.SetReloadEpoch(s.ReloadEpoch)
	c.publish(s)
	c.startSync(s)
	m.reply <- reloadReply{epoch: s.ReloadEpoch, ok: true}
}
