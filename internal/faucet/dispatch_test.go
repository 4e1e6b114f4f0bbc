package faucet

import (
	"context"
	"errors"
	"io"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3faucet/internal/contract"
	"github.com/Mohsinsiddi/w3faucet/internal/metrics"
	"github.com/Mohsinsiddi/w3faucet/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connected(t *testing.T, opts ...Option) (*Controller, *fakeProvider) {
	t.Helper()
	p := newFakeProvider("5777", acct0)
	p.balance = ether("10")
	c := start(t, &fakeDetector{providers: []*fakeProvider{p}}, opts...)
	waitFor(t, c, synced)
	return c, p
}

func TestAmounts(t *testing.T) {
	assert.Equal(t, ether("1"), DonationAmount())
	assert.Equal(t, "500000000000000000", WithdrawalAmount().String())

	// Callers get copies.
	DonationAmount().SetInt64(0)
	assert.Equal(t, ether("1"), DonationAmount())
}

// ---------------------------------------------------------------------------
// AddFunds
// ---------------------------------------------------------------------------

func TestAddFundsReloadsOnce(t *testing.T) {
	c, p := connected(t)
	p.set(func(f *fakeProvider) { f.balance = ether("11") })

	hash, err := c.AddFunds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, txHash, hash)
	assert.Equal(t, uint64(1), c.State().ReloadEpoch, "epoch is bumped before AddFunds returns")

	s := waitFor(t, c, func(s State) bool { return s.BalanceWei.Cmp(ether("11")) == 0 })
	assert.Equal(t, "11", s.Balance())
	assert.True(t, s.Synced)
	assert.Nil(t, s.SyncErr)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, p.count(provider.MethodGetBalance), "initial sync plus exactly one reload")

	sent := p.sentTxs()
	require.Len(t, sent, 1)
	assert.Equal(t, acct0, sent[0].From)
	assert.Equal(t, faucetAddr, *sent[0].To)
	assert.Equal(t, ether("1"), sent[0].Value.ToInt())
}

func TestEachSuccessfulTransactionReloads(t *testing.T) {
	c, p := connected(t)

	for i := 0; i < 3; i++ {
		_, err := c.AddFunds(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(3), c.State().ReloadEpoch)

	require.Eventually(t, func() bool { return p.count(provider.MethodGetBalance) == 4 }, 3*time.Second, 2*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 4, p.count(provider.MethodGetBalance))
}

// ---------------------------------------------------------------------------
// Withdraw
// ---------------------------------------------------------------------------

func TestWithdrawRequestsHalfEther(t *testing.T) {
	c, p := connected(t)

	_, err := c.Withdraw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.State().ReloadEpoch)

	sent := p.sentTxs()
	require.Len(t, sent, 1)
	assert.Nil(t, sent[0].Value)
	require.Len(t, sent[0].Data, 4+32)
	assert.Equal(t, "500000000000000000", new(big.Int).SetBytes(sent[0].Data[4:]).String())
}

func TestWithdrawRejected(t *testing.T) {
	c, p := connected(t)
	p.set(func(f *fakeProvider) {
		f.sendErr = errors.New("insufficient funds")
		f.balance = ether("3")
	})
	before := c.State()

	_, err := c.Withdraw(context.Background())
	require.Error(t, err)

	var txErr *TransactionFailedError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, contract.MethodWithdraw, txErr.Method)
	assert.Equal(t, "insufficient funds", txErr.Reason)

	time.Sleep(20 * time.Millisecond)
	after := c.State()
	assert.Equal(t, before.ReloadEpoch, after.ReloadEpoch)
	assert.Equal(t, ether("10"), after.BalanceWei, "balance unchanged")
	assert.Equal(t, 1, p.count(provider.MethodGetBalance), "no reload after a rejection")
}

func TestAddFundsUserDenied(t *testing.T) {
	c, p := connected(t)
	p.set(func(f *fakeProvider) { f.sendErr = errors.New("User denied transaction signature.") })

	_, err := c.AddFunds(context.Background())
	var txErr *TransactionFailedError
	require.True(t, errors.As(err, &txErr))
	assert.Contains(t, txErr.Error(), "addFunds failed: User denied")
	assert.Zero(t, c.State().ReloadEpoch)
}

func TestNotConnectedMakesNoChainCall(t *testing.T) {
	p := newFakeProvider("5777") // no accounts
	c := start(t, &fakeDetector{providers: []*fakeProvider{p}})
	waitFor(t, c, synced)

	_, err := c.AddFunds(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = c.Withdraw(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.Zero(t, p.count(provider.MethodSendTransaction))
	assert.Zero(t, c.State().ReloadEpoch)
}

func TestNotConnectedBeforeRun(t *testing.T) {
	c := New(&fakeDetector{}, artifactBinder(t))
	_, err := c.AddFunds(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

// ---------------------------------------------------------------------------
// Balance sync
// ---------------------------------------------------------------------------

func TestSyncFailureKeepsBalance(t *testing.T) {
	c, p := connected(t)
	p.set(func(f *fakeProvider) { f.balanceErrs = -1 })

	_, err := c.AddFunds(context.Background())
	require.NoError(t, err)

	s := waitFor(t, c, func(s State) bool { return s.SyncErr != nil })
	assert.Equal(t, ether("10"), s.BalanceWei, "stale balance retained")
	var syncErr *SyncError
	require.True(t, errors.As(s.SyncErr, &syncErr))
	assert.Contains(t, syncErr.Error(), "connection reset")
	assert.Equal(t, 1+3, p.count(provider.MethodGetBalance), "one attempt plus two retries")

	p.set(func(f *fakeProvider) {
		f.balanceErrs = 0
		f.balance = ether("12")
	})
	_, err = c.AddFunds(context.Background())
	require.NoError(t, err)

	s = waitFor(t, c, func(s State) bool { return s.BalanceWei.Cmp(ether("12")) == 0 })
	assert.Nil(t, s.SyncErr)
}

func TestSyncRetrySucceeds(t *testing.T) {
	p := newFakeProvider("5777", acct0)
	p.balance = ether("4")
	p.balanceErrs = 1
	c := start(t, &fakeDetector{providers: []*fakeProvider{p}})

	s := waitFor(t, c, synced)
	assert.Equal(t, "4", s.Balance())
	assert.Nil(t, s.SyncErr)
	assert.Equal(t, 2, p.count(provider.MethodGetBalance))
}

func TestSyncWithoutRetries(t *testing.T) {
	p := newFakeProvider("5777", acct0)
	p.balanceErrs = -1
	c := start(t, &fakeDetector{providers: []*fakeProvider{p}}, WithSyncPolicy(time.Second, 0, time.Millisecond))

	s := waitFor(t, c, func(s State) bool { return s.SyncErr != nil })
	assert.Nil(t, s.BalanceWei)
	assert.Equal(t, "0", s.Balance())
	assert.Equal(t, 1, p.count(provider.MethodGetBalance))
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

func TestDispatchMetrics(t *testing.T) {
	m := metrics.New()
	c, p := connected(t, WithMetrics(m))

	_, err := c.AddFunds(context.Background())
	require.NoError(t, err)

	p.set(func(f *fakeProvider) { f.sendErr = errors.New("execution reverted") })
	_, err = c.Withdraw(context.Background())
	require.Error(t, err)

	require.NoError(t, c.Reinitialize(context.Background()))
	waitFor(t, c, func(s State) bool { return s.Generation == 2 && synced(s) })

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	out := string(body)

	assert.Contains(t, out, `w3faucet_transactions_total{method="addFunds",outcome="submitted"} 1`)
	assert.Contains(t, out, `w3faucet_transactions_total{method="withdraw",outcome="failed"} 1`)
	assert.Contains(t, out, `w3faucet_connection_resets_total{reason="manual"} 1`)
	assert.Contains(t, out, `w3faucet_balance_syncs_total{result="ok"}`)
	assert.Contains(t, out, `w3faucet_contract_balance_ether 10`)
}
