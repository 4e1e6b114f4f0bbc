package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/w3faucet/internal/ui"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag string
	walletYesFlag bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage local signing wallets",
	Long: `Signing wallets replace the node's own accounts: transactions are signed
locally and broadcast with eth_sendRawTransaction. Private keys live in the OS
keychain (or an encrypted file under <config dir>/keys).

Without a selected wallet w3faucet uses the accounts the node exposes.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> --key <private-key>",
	Short: "Add a signing wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if walletKeyFlag == "" {
			return fmt.Errorf("--key is required\n  Usage: w3faucet wallet add <name> --key <private-key>")
		}
		w, err := newWalletManager().AddWithKey(name, walletKeyFlag)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
		fmt.Println(ui.Hint(fmt.Sprintf("Sign with it by default: w3faucet wallet use %s", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets, err := newWalletManager().List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured. Using the node's accounts."))
			fmt.Println(ui.Hint("Add one with: w3faucet wallet add dev --key 0x..."))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name"},
			{Title: "Address"},
			{Title: "Default"},
			{Title: "Active"},
		})
		for _, w := range wallets {
			def, active := "", ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			if w.Name == cfg.Wallet {
				active = ui.StyleSuccess.Render("●")
			}
			t.AddRow(ui.Row{ui.Val(w.Name), ui.Addr(w.Address), def, active})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !walletYesFlag && !ui.ConfirmDanger(os.Stdin, os.Stdout, fmt.Sprintf("Remove wallet %q and its key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if cfg.Wallet == name {
			cfg.Wallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Println(ui.Info("Back to the node's accounts."))
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Sign with this wallet by default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := newWalletManager().SetDefault(name); err != nil {
			return err
		}
		cfg.Wallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Signing with %q.", name)))
		fmt.Println(ui.Hint("Override per command with --wallet <name>."))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key (stored in the OS keychain)")
	walletRemoveCmd.Flags().BoolVarP(&walletYesFlag, "yes", "y", false, "skip confirmation")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}
