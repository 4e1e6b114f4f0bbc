package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Mohsinsiddi/w3faucet/internal/chain"
	"github.com/Mohsinsiddi/w3faucet/internal/faucet"
	"github.com/Mohsinsiddi/w3faucet/internal/ui"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show provider, account, network and contract balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *session, st faucet.State) error {
			printState(st)
			return nil
		})
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Ask the provider to expose its accounts (eth_requestAccounts)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *session, st faucet.State) error {
			if !st.HasProvider() {
				printState(st)
				return faucet.ErrProviderAbsent
			}
			addr, err := s.ctrl.RequestAccounts(ctx)
			if err != nil {
				return err
			}
			fmt.Println(ui.Success("Connected " + ui.Addr(addr.Hex())))
			return nil
		})
	},
}

var donateCmd = &cobra.Command{
	Use:   "donate",
	Short: "Donate 1 ETH to the Faucet (addFunds)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return transact(cmd.Context(), "Donating "+chain.FromWei(faucet.DonationAmount())+" ETH", func(ctx context.Context, c *faucet.Controller) (common.Hash, error) {
			return c.AddFunds(ctx)
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw 0.5 ETH from the Faucet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return transact(cmd.Context(), "Withdrawing "+chain.FromWei(faucet.WithdrawalAmount())+" ETH", func(ctx context.Context, c *faucet.Controller) (common.Hash, error) {
			return c.Withdraw(ctx)
		})
	},
}

// withSession starts a controller, waits for it to settle and hands the
// settled state to fn.
func withSession(ctx context.Context, fn func(ctx context.Context, s *session, st faucet.State) error) error {
	s, err := startSession(ctx, lg)
	if err != nil {
		return err
	}
	defer s.Close()

	wait, cancel := context.WithTimeout(ctx, settleTimeout())
	defer cancel()
	st, err := s.settled(wait)
	if err != nil {
		return errors.Wrapf(err, "waiting for %s (state %s)", cfg.ProviderURL, st.Status)
	}
	return fn(ctx, s, st)
}

func transact(ctx context.Context, label string, send func(context.Context, *faucet.Controller) (common.Hash, error)) error {
	return withSession(ctx, func(ctx context.Context, s *session, st faucet.State) error {
		if !st.Connected() {
			printState(st)
			return faucet.ErrNotConnected
		}

		before := st.Balance()
		var hash common.Hash
		err := ui.Spin(os.Stderr, label, func() error {
			var err error
			hash, err = send(ctx, s.ctrl)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Submitted " + ui.Addr(hash.Hex())))
		if url := st.Network().TxURL(hash.Hex()); url != "" {
			fmt.Println(ui.Meta("  " + url))
		}

		after, err := resynced(ctx, s, st.Generation)
		if err != nil {
			lg.Warn("balance not refreshed", "err", err)
			return nil
		}
		fmt.Printf("  %s %s → %s\n", ui.Meta("Contract balance:"), ui.Ether(before), ui.Ether(after.Balance()))
		return nil
	})
}

// resynced waits for the sync scheduled by a successful transaction.
func resynced(ctx context.Context, s *session, gen uint64) (faucet.State, error) {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout())
	defer cancel()

	ch := make(chan faucet.State, 16)
	sub := s.ctrl.Subscribe(ch)
	defer sub.Unsubscribe()

	st := s.ctrl.State()
	for st.Generation == gen && !st.Synced {
		select {
		case st = <-ch:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
	if st.Generation != gen {
		return st, errors.New("connection was reinitialized")
	}
	if st.SyncErr != nil {
		return st, st.SyncErr
	}
	return st, nil
}

// settleTimeout bounds detection plus every sync attempt.
func settleTimeout() time.Duration {
	return cfg.DetectTimeoutDuration() +
		time.Duration(cfg.SyncRetries+1)*cfg.SyncTimeoutDuration() +
		5*time.Second
}

func printState(st faucet.State) {
	if !st.HasProvider() {
		fmt.Println(ui.Warn("Wallet is not detected!"))
		fmt.Println(ui.Hint(fmt.Sprintf("Start a node at %s or set provider_url (w3faucet config show)", cfg.ProviderURL)))
		if st.Err != nil {
			fmt.Println(ui.Meta("  " + errors.UnwrapAll(st.Err).Error()))
		}
		return
	}

	account := ui.Meta("not connected (w3faucet connect)")
	if st.Account != nil {
		account = ui.Addr(st.Account.Hex())
	}
	contractAddr := ui.Meta("none")
	if st.Contract != nil {
		contractAddr = ui.Addr(st.Contract.Address.Hex())
	}

	pairs := [][2]string{
		{"Status", ui.StatusBadge(st.Status)},
		{"Provider", cfg.ProviderURL},
		{"Network", ui.StyleNetwork.Render(st.Network().String())},
		{"Account", account},
		{"Contract", contractAddr},
	}
	if st.Contract != nil {
		pairs = append(pairs, [2]string{"Balance", ui.Ether(st.Balance())})
	}
	fmt.Println(ui.KeyValueBlock(cfg.ContractName, pairs))

	if st.WrongNetwork() {
		fmt.Println(ui.Warn(fmt.Sprintf("Wrong network. %s is not deployed on %s.", cfg.ContractName, st.Network())))
	}
	if st.SyncErr != nil {
		fmt.Println(ui.Meta("balance may be stale: " + errors.UnwrapAll(st.SyncErr).Error()))
	}
}
