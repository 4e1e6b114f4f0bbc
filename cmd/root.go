package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/w3faucet/internal/config"
	"github.com/Mohsinsiddi/w3faucet/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3faucet/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	walletName  string
	metricsAddr string
	lg          *log.Logger
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3faucet",
	Short: "Terminal client for a Faucet contract",
	Long: `w3faucet connects to an Ethereum node (Ganache by default), binds the
Faucet contract from its build artifact and lets you donate 1 ETH or
withdraw 0.5 ETH while following account and network changes.

Accounts come from the node itself, or from a local signing wallet
selected with --wallet or: w3faucet wallet use <name>`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if walletName != "" {
			cfg.Wallet = walletName
		}
		if metricsAddr != "" {
			cfg.MetricsAddr = metricsAddr
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		lg = logger.New(os.Stderr, level)
		return nil
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel its context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errLine(err))
		os.Exit(1)
	}
}

func init() {
	// W3FAUCET_CONFIG_DIR overrides the --config default.
	if envDir := os.Getenv("W3FAUCET_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3faucet)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&walletName, "wallet", "", "signing wallet (default: config, else node accounts)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")

	rootCmd.AddCommand(
		dashboardCmd,
		statusCmd,
		connectCmd,
		donateCmd,
		withdrawCmd,
		walletCmd,
		contractCmd,
		configCmd,
	)
}
