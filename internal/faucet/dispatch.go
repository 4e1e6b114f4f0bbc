package faucet

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/w3faucet/internal/chain"
	"github.com/Mohsinsiddi/w3faucet/internal/contract"
	"github.com/Mohsinsiddi/w3faucet/internal/metrics"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

var (
	donationWei   = chain.MustToWei("1")
	withdrawalWei = chain.MustToWei("0.5")
)

// DonationAmount is the value sent by AddFunds, in wei.
func DonationAmount() *big.Int { return new(big.Int).Set(donationWei) }

// WithdrawalAmount is the amount requested by Withdraw, in wei.
func WithdrawalAmount() *big.Int { return new(big.Int).Set(withdrawalWei) }

// AddFunds donates 1 ether to the contract from the current account and
// returns the transaction hash once the provider accepted it.
func (c *Controller) AddFunds(ctx context.Context) (common.Hash, error) {
	return c.dispatch(ctx, contract.MethodAddFunds, func(ctx context.Context, h *contract.Handle, from common.Address) (common.Hash, error) {
		return h.AddFunds(ctx, from, DonationAmount())
	})
}

// Withdraw asks the contract for 0.5 ether on behalf of the current account.
func (c *Controller) Withdraw(ctx context.Context) (common.Hash, error) {
	return c.dispatch(ctx, contract.MethodWithdraw, func(ctx context.Context, h *contract.Handle, from common.Address) (common.Hash, error) {
		return h.Withdraw(ctx, from, WithdrawalAmount())
	})
}

type sendFunc func(ctx context.Context, h *contract.Handle, from common.Address) (common.Hash, error)

func (c *Controller) dispatch(ctx context.Context, method string, send sendFunc) (common.Hash, error) {
	if c.stopped() {
		return common.Hash{}, ErrStopped
	}
	s := c.State()
	if !s.Connected() {
		c.metrics.IncTransaction(method, metrics.OutcomeRejected)
		return common.Hash{}, ErrNotConnected
	}

	tctx, cancel := context.WithTimeout(ctx, c.txTimeout)
	hash, err := send(tctx, s.Contract, *s.Account)
	cancel()
	if err != nil {
		c.metrics.IncTransaction(method, metrics.OutcomeFailed)
		c.log.Warn("transaction rejected", "method", method, "from", s.Account.Hex(), "err", err)
		return common.Hash{}, &TransactionFailedError{
			Method: method,
			Reason: errors.UnwrapAll(err).Error(),
			Err:    err,
		}
	}

	c.metrics.IncTransaction(method, metrics.OutcomeSubmitted)
	c.log.Info("transaction submitted", "method", method, "hash", hash.Hex(), "from", s.Account.Hex())

	if err := c.reload(ctx, s.Generation); err != nil {
		c.log.Warn("balance reload skipped", "method", method, "err", err)
	}
	return hash, nil
}

// reload increments the reload epoch of generation gen and waits until the
// new epoch is published.
func (c *Controller) reload(ctx context.Context, gen uint64) error {
	reply := make(chan reloadReply, 1)
	if !c.post(ctx, reloadMsg{gen: gen, reply: reply}) {
		return c.postErr(ctx)
	}
	select {
	case r := <-reply:
		if !r.ok {
			return errors.New("connection was reinitialized")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
}

// RequestAccounts asks the provider to expose its accounts
// (eth_requestAccounts) and makes the first one current.
func (c *Controller) RequestAccounts(ctx context.Context) (common.Address, error) {
	if c.stopped() {
		return common.Address{}, ErrStopped
	}
	s := c.State()
	if !s.HasProvider() {
		return common.Address{}, ErrProviderAbsent
	}

	accounts, err := s.Client.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, err
	}

	reply := make(chan bool, 1)
	if !c.post(ctx, accountsMsg{gen: s.Generation, accounts: accounts, reply: reply}) {
		return common.Address{}, c.postErr(ctx)
	}
	select {
	case ok := <-reply:
		if !ok {
			return common.Address{}, errors.New("connection was reinitialized")
		}
	case <-ctx.Done():
		return common.Address{}, ctx.Err()
	case <-c.done:
		return common.Address{}, ErrStopped
	}

	if len(accounts) == 0 {
		return common.Address{}, errors.New("provider exposed no accounts")
	}
	return accounts[0], nil
}
