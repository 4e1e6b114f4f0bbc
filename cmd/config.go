package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Mohsinsiddi/w3faucet/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration (file, env and flags merged)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		fmt.Println(ui.Meta("Every key can be overridden with W3FAUCET_<KEY>, e.g. W3FAUCET_PROVIDER_URL."))
		return nil
	},
}

var configSetProviderCmd = &cobra.Command{
	Use:   "set-provider <url>",
	Short: "Set the JSON-RPC endpoint used as the wallet provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.ProviderURL = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Provider set to %s", args[0])))
		return nil
	},
}

var configSetPolicyCmd = &cobra.Command{
	Use:   "set-account-policy <soft|reset>",
	Short: "Choose how an account change is handled",
	Long: `soft   keep the provider and contract, switch to the new first account
reset  reinitialize the whole connection, as on a network change`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"soft", "reset"},
	RunE: func(cmd *cobra.Command, args []string) error {
		prev := cfg.AccountPolicy
		cfg.AccountPolicy = args[0]
		if err := cfg.Validate(); err != nil {
			cfg.AccountPolicy = prev
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Account policy set to %q", args[0])))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetProviderCmd, configSetPolicyCmd)
}
