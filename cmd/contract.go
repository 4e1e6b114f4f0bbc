package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Mohsinsiddi/w3faucet/internal/chain"
	"github.com/Mohsinsiddi/w3faucet/internal/contract"
	"github.com/Mohsinsiddi/w3faucet/internal/ui"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	contractABIFile string
	contractNetwork string
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Inspect and override Faucet deployments",
	Long: `The Faucet address and ABI come from <artifacts_dir>/<contract_name>.json,
a Truffle-style build artifact keyed by network id. Manual records added with
'contract add' take precedence over the artifact for their network.`,
}

var contractAddCmd = &cobra.Command{
	Use:   "add <address> --network <id>",
	Short: "Record a deployment manually",
	Long: `Record where the Faucet is deployed on a network, overriding the artifact.

ABI source, in order:
  --abi <file>      raw ABI array or build artifact
  the artifact      <artifacts_dir>/<contract_name>.json
  built-in          the bundled Faucet ABI

Examples:
  w3faucet contract add 0x5FbDB2315678afecb367f032d93F642f64180aa3 --network 31337
  w3faucet contract add 0xABCD... --network 11155111 --abi ./out/Faucet.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address := args[0]
		if !common.IsHexAddress(address) {
			return errors.Newf("invalid address %q", address)
		}
		if contractNetwork == "" {
			return errors.New("--network <id> is required (net_version of the target chain)")
		}

		var entries []contract.ABIEntry
		if contractABIFile != "" {
			var err error
			if entries, err = contract.LoadFromArtifact(contractABIFile); err != nil {
				return err
			}
		}

		reg := newContractRegistry()
		if err := reg.Load(); err != nil {
			return err
		}
		reg.Add(&contract.Entry{
			Name:    cfg.ContractName,
			Network: contractNetwork,
			Address: common.HexToAddress(address).Hex(),
			ABI:     entries,
		})
		if err := reg.Save(); err != nil {
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("%s recorded on network %s at %s", cfg.ContractName, contractNetwork, ui.Addr(address))))
		if len(entries) > 0 {
			fmt.Println(ui.Hint(fmt.Sprintf("%d ABI entries from %s", len(entries), contractABIFile)))
		}
		return nil
	},
}

var contractRemoveCmd = &cobra.Command{
	Use:   "remove --network <id>",
	Short: "Drop a manual deployment record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if contractNetwork == "" {
			return errors.New("--network <id> is required")
		}
		reg := newContractRegistry()
		if err := reg.Load(); err != nil {
			return err
		}
		if err := reg.Remove(cfg.ContractName, contractNetwork); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Record for %s on network %s removed.", cfg.ContractName, contractNetwork)))
		return nil
	},
}

var contractShowCmd = &cobra.Command{
	Use:   "show [network-id]",
	Short: "List deployments, or the resolved ABI for one network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := newContractRegistry()
		if err := reg.Load(); err != nil {
			return err
		}
		src := contract.NewArtifactSource(cfg.ArtifactsDir, reg)

		if len(args) == 0 {
			return listDeployments(reg)
		}

		md, err := src.Resolve(cfg.ContractName, args[0])
		if err != nil {
			return &contract.ResolutionError{Name: cfg.ContractName, NetworkID: args[0], Err: err}
		}
		fmt.Println(ui.KeyValueBlock(md.Name, [][2]string{
			{"Network", md.NetworkID},
			{"Address", ui.Addr(md.Address.Hex())},
		}))

		t := ui.NewTable([]ui.Column{{Title: "Function"}, {Title: "Selector"}, {Title: "Mutability"}})
		for _, e := range md.Entries {
			switch e.Type {
			case "function":
				t.AddRow(ui.Row{e.Signature(), ui.Addr(e.Selector()), ui.Meta(e.StateMutability)})
			case "receive", "fallback":
				t.AddRow(ui.Row{e.Type + "()", "", ui.Meta(e.StateMutability)})
			}
		}
		fmt.Println(t.Render())
		return nil
	},
}

// listDeployments merges artifact networks and manual records.
func listDeployments(reg *contract.Registry) error {
	type row struct{ network, address, source string }
	rows := map[string]row{}

	path := filepath.Join(cfg.ArtifactsDir, cfg.ContractName+".json")
	if a, err := contract.LoadArtifact(path); err == nil {
		for id := range a.Networks {
			rows[id] = row{id, a.Address(id), "artifact"}
		}
	} else {
		lg.Debug("no build artifact", "path", path, "err", err)
	}
	for _, e := range reg.GetByName(cfg.ContractName) {
		rows[e.Network] = row{e.Network, e.Address, "manual"}
	}

	if len(rows) == 0 {
		fmt.Println(ui.Info(fmt.Sprintf("No deployments of %s found.", cfg.ContractName)))
		fmt.Println(ui.Hint("Build with truffle into " + cfg.ArtifactsDir + " or: w3faucet contract add <address> --network <id>"))
		return nil
	}

	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := ui.NewTable([]ui.Column{{Title: "Network"}, {Title: "Address"}, {Title: "Source"}})
	for _, id := range ids {
		r := rows[id]
		t.AddRow(ui.Row{networkLabel(r.network), ui.Addr(r.address), ui.Meta(r.source)})
	}
	fmt.Printf("%s\n\n", ui.StyleTitle.Render(cfg.ContractName+" deployments"))
	fmt.Println(t.Render())
	return nil
}

func networkLabel(id string) string {
	return id + " " + ui.Meta(chain.LookupNetwork(id).Name)
}

func init() {
	contractAddCmd.Flags().StringVar(&contractABIFile, "abi", "", "ABI JSON array or build artifact")
	contractAddCmd.Flags().StringVar(&contractNetwork, "network", "", "network id (net_version)")
	contractRemoveCmd.Flags().StringVar(&contractNetwork, "network", "", "network id (net_version)")

	contractCmd.AddCommand(contractAddCmd, contractRemoveCmd, contractShowCmd)
}
