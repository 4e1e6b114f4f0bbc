package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3faucet/internal/logger"
	"github.com/Mohsinsiddi/w3faucet/internal/ui"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Interactive faucet dashboard",
	Long: `Open the live dashboard. It follows account and network changes and
refreshes the contract balance after every transaction.

Keys:
  c  connect (eth_requestAccounts)
  d  donate 1 ETH
  w  withdraw 0.5 ETH
  s  switch to the next local wallet (with --wallet or wallet use)
  r  reinitialize the connection
  q  quit

Logs are written to <config dir>/w3faucet.log while the dashboard is open.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := logger.OpenFile(cfg.LogPath())
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		fileLog := logger.New(f, level)

		s, err := startSession(cmd.Context(), fileLog)
		if err != nil {
			return err
		}
		defer s.Close()

		var opts []ui.DashboardOption
		if cfg.Wallet != "" {
			opts = append(opts, ui.WithWalletSwitch(nextWallet(newWalletManager(), cfg.Wallet)))
		}
		_, err = ui.NewDashboard(cmd.Context(), s.ctrl, cfg.ProviderURL, opts...).Run()
		return err
	},
}
