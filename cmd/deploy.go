package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/Mohsinsiddi/govtoken/internal/config"
	"github.com/Mohsinsiddi/govtoken/internal/store"
	"github.com/Mohsinsiddi/govtoken/internal/token"
	"github.com/Mohsinsiddi/govtoken/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	deployName     string
	deploySymbol   string
	deployDecimals uint8
	deployCap      string
	deployAdmin    string
	deployOwner    string
	deployDisable  string
	deployDefault  bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy <deployment>",
	Short: "Create a new token deployment",
	Long: `Create a capped token and its authorizer.

The admin (the council) receives DEFAULT_ADMIN_ROLE, MINTER_ROLE,
PAUSER_ROLE and OWNER_CHANGER_ROLE. Burner and transferer roles start empty.
Every feature category starts enabled unless listed in --disable.

Examples:
  govtoken deploy mtk --as council
  govtoken deploy gt1 --symbol GT1 --cap 1000000 --admin 0x717c... --disable burn,stake`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := store.ValidateName(name); err != nil {
			return err
		}

		features, err := parseDisabled(deployDisable)
		if err != nil {
			return err
		}
		maxSupply, err := token.ParseUnits(deployCap, deployDecimals)
		if err != nil {
			return fmt.Errorf("--cap: %w", err)
		}

		mgr := newWalletManager()
		var admin common.Address
		if deployAdmin != "" {
			admin, err = resolveAccount(mgr, deployAdmin)
		} else {
			admin, err = actingAs(mgr, nil)
		}
		if err != nil {
			return err
		}
		owner := admin
		if deployOwner != "" {
			if owner, err = resolveAccount(mgr, deployOwner); err != nil {
				return err
			}
		}

		auth, err := access.New(access.Config{Features: features, Admin: admin, Logger: logger})
		if err != nil {
			return err
		}
		tok, err := token.New(token.Params{
			Name:     deployName,
			Symbol:   deploySymbol,
			Decimals: deployDecimals,
			Cap:      maxSupply,
			Owner:    owner,
		}, auth, token.WithLogger(logger))
		if err != nil {
			return err
		}
		if err := createDeployment(cmd.Context(), name, tok); err != nil {
			return err
		}
		logger.Info("deployed", "token", name, "admin", admin.Hex(), "cap", maxSupply)

		if deployDefault || cfg.DefaultToken == "" {
			cfg.DefaultToken = name
			if err := cfg.Save(); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Deployed %s (%s)", name, deploySymbol)))
		fmt.Fprintln(out, ui.KeyValueBlock(deployName, [][2]string{
			{"Symbol", deploySymbol},
			{"Decimals", fmt.Sprint(deployDecimals)},
			{"Cap", formatAmount(tok, maxSupply)},
			{"Admin", ui.Addr(admin.Hex())},
			{"Owner", ui.Addr(owner.Hex())},
			{"Features", featureSummary(features)},
		}))
		if cfg.DefaultToken == name {
			fmt.Fprintln(out, ui.Meta("default token is now "+name))
		}
		return nil
	},
}

// parseDisabled turns "burn,stake" into a Features value with those off.
func parseDisabled(list string) (access.Features, error) {
	fs := access.AllEnabled()
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := access.ParseFeature(part)
		if err != nil {
			return fs, err
		}
		fs = fs.With(f, false)
	}
	return fs, nil
}

func featureSummary(fs access.Features) string {
	var parts []string
	for _, f := range access.AllFeatures() {
		mark := ui.StyleSuccess.Render(f.String())
		if !fs.Enabled(f) {
			mark = ui.StyleError.Render("-" + f.String())
		}
		parts = append(parts, mark)
	}
	return strings.Join(parts, " ")
}

func init() {
	deployCmd.Flags().StringVar(&deployName, "name", config.DefaultTokenName, "token name")
	deployCmd.Flags().StringVar(&deploySymbol, "symbol", config.DefaultTokenSymbol, "token symbol")
	deployCmd.Flags().Uint8Var(&deployDecimals, "decimals", config.DefaultTokenDecimals, "token decimals")
	deployCmd.Flags().StringVar(&deployCap, "cap", config.DefaultTokenCap, "maximum supply in whole tokens")
	deployCmd.Flags().StringVar(&deployAdmin, "admin", "", "council wallet or address (default: the acting wallet)")
	deployCmd.Flags().StringVar(&deployOwner, "owner", "", "initial owner (default: the admin)")
	deployCmd.Flags().StringVar(&deployDisable, "disable", "", "comma-separated feature categories to start disabled")
	deployCmd.Flags().BoolVar(&deployDefault, "default", false, "make this the default token")
}

// createDeployment stores a new deployment under its lock.
func createDeployment(ctx context.Context, name string, tok *token.Token) error {
	st := deploymentStore()
	lctx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	unlock, err := st.Lock(lctx, name)
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck
	return st.Create(store.Capture(name, tok))
}
