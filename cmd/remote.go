package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/Mohsinsiddi/govtoken/internal/chain"
	"github.com/Mohsinsiddi/govtoken/internal/config"
	"github.com/Mohsinsiddi/govtoken/internal/rpc"
	"github.com/Mohsinsiddi/govtoken/internal/token"
	"github.com/Mohsinsiddi/govtoken/internal/ui"
	"github.com/spf13/cobra"
)

var (
	remoteRPC      string
	remoteContract string
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Read role and pause state from a deployed token contract",
	Long: `Query a MobitToken / GovernanceToken contract over JSON-RPC. Read-only.

The endpoint comes from --rpc, GOVTOKEN_RPC_URL or rpc_url in config.
Several comma-separated endpoints may be given; each is probed and one is
chosen by rpc_strategy ("fastest" by default, or "failover").
The contract is an address or an alias saved with 'govtoken remote alias'.`,
}

func newRoleReader(ctx context.Context) (*chain.RoleReader, *chain.EVMClient, error) {
	urls := rpc.SplitURLs(remoteRPC)
	if len(urls) == 0 {
		urls = rpc.SplitURLs(cfg.RPCURL)
	}
	if len(urls) == 0 {
		return nil, nil, fmt.Errorf("no RPC endpoint: pass --rpc or set rpc_url")
	}
	if remoteContract == "" {
		return nil, nil, fmt.Errorf("--contract is required")
	}
	addr, err := cfg.ResolveRemote(remoteContract)
	if err != nil {
		return nil, nil, err
	}
	strategy, err := rpc.ParseStrategy(cfg.RPCStrategy)
	if err != nil {
		return nil, nil, err
	}

	ep, err := rpc.Select(ctx, urls, strategy, config.PingTimeout)
	if err != nil {
		if len(urls) == 1 {
			return nil, nil, fmt.Errorf("RPC %s unreachable: %w", urls[0], err)
		}
		return nil, nil, err
	}
	logger.Debug("rpc selected", "url", ep.URL, "strategy", strategy,
		"latency", ep.Latency, "block", ep.BlockNumber, "candidates", len(urls))

	client := chain.NewEVMClient(ep.URL, config.RPCCallTimeout)
	reader, err := chain.NewRoleReader(client, addr)
	if err != nil {
		return nil, nil, err
	}
	return reader, client, nil
}

// withSpinner shows a spinner on stderr while fn runs, when attached to a terminal.
func withSpinner(cmd *cobra.Command, msg string, fn func() error) error {
	if !interactive() {
		return fn()
	}
	sp := ui.NewSpinner(cmd.ErrOrStderr(), msg)
	sp.Start()
	err := fn()
	sp.Stop()
	return err
}

var remoteHasRoleCmd = &cobra.Command{
	Use:   "has-role <role> <account>",
	Short: "Call hasRole(role, account) on the contract",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := access.ParseRole(args[0])
		if err != nil {
			return err
		}
		account, err := resolveAccount(newWalletManager(), args[1])
		if err != nil {
			return err
		}
		reader, _, err := newRoleReader(cmd.Context())
		if err != nil {
			return err
		}

		var held bool
		var adminID string
		err = withSpinner(cmd, "querying hasRole…", func() error {
			held, err = reader.HasRole(cmd.Context(), role, account)
			if err != nil {
				return err
			}
			admin, id, known, err := reader.GetRoleAdmin(cmd.Context(), role)
			if err != nil {
				return err
			}
			adminID = id.Hex()
			if known {
				adminID = admin.String()
			}
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("hasRole", [][2]string{
			{"Contract", ui.Addr(reader.Contract().Hex())},
			{"Role", ui.RoleName(role.String())},
			{"Role id", ui.Meta(role.ID().Hex())},
			{"Admin role", adminID},
			{"Account", ui.Addr(account.Hex())},
			{"Holds role", ui.Verdict(held)},
		}))
		return nil
	},
}

var remoteStatusCmd = &cobra.Command{
	Use:   "status [account]",
	Short: "Show supply, cap, pause state and owner; with an account, its roles and balance",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, client, err := newRoleReader(cmd.Context())
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		var st *chain.Status
		var held []access.Role
		var balance string
		err = withSpinner(cmd, "reading contract…", func() error {
			if st, err = reader.Status(ctx); err != nil {
				return err
			}
			if len(args) == 0 {
				return nil
			}
			account, err := resolveAccount(newWalletManager(), args[0])
			if err != nil {
				return err
			}
			if held, err = reader.Members(ctx, account); err != nil {
				return err
			}
			bal, err := reader.BalanceOf(ctx, account)
			if err != nil {
				return err
			}
			balance = token.FormatUnits(bal, st.Decimals) + " " + st.Symbol
			return nil
		})
		if err != nil {
			return err
		}

		chainID, err := client.ChainID(ctx)
		if err != nil {
			return err
		}
		state := ui.StyleSuccess.Render("active")
		if st.Paused {
			state = ui.StyleWarning.Render("paused")
		}
		pairs := [][2]string{
			{"Chain id", chainID.String()},
			{"Contract", ui.Addr(st.Contract.Hex())},
			{"Symbol", st.Symbol},
			{"Total supply", token.FormatUnits(st.TotalSupply, st.Decimals)},
			{"Status", state},
		}
		if st.Cap != nil {
			pairs = append(pairs, [2]string{"Cap", token.FormatUnits(st.Cap, st.Decimals)})
		}
		if st.Owner != nil {
			pairs = append(pairs, [2]string{"Owner", ui.Addr(st.Owner.Hex())})
		}
		if len(args) == 1 {
			names := make([]string, len(held))
			for i, r := range held {
				names[i] = r.String()
			}
			roles := strings.Join(names, ", ")
			if roles == "" {
				roles = ui.Meta("none")
			}
			pairs = append(pairs, [2]string{"Roles", roles}, [2]string{"Balance", balance})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(st.Name, pairs))
		return nil
	},
}

var remoteAliasCmd = &cobra.Command{
	Use:   "alias <name> [address]",
	Short: "Save a contract address under a name (omit the address to delete)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if len(args) == 1 {
			err = cfg.RemoveRemote(args[0])
		} else {
			err = cfg.SetRemote(args[0], args[1])
		}
		if err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		if len(args) == 1 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Alias %q removed.", args[0])))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s → %s", args[0], cfg.Remotes[args[0]])))
		return nil
	},
}

func init() {
	remoteCmd.PersistentFlags().StringVar(&remoteRPC, "rpc", "", "JSON-RPC endpoint(s), comma-separated (default: rpc_url)")
	remoteCmd.PersistentFlags().StringVarP(&remoteContract, "contract", "c", "", "contract address or alias")
	remoteCmd.AddCommand(remoteHasRoleCmd, remoteStatusCmd, remoteAliasCmd)
}
