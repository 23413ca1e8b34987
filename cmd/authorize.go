package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/Mohsinsiddi/govtoken/internal/ui"
	"github.com/spf13/cobra"
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize <operation> <account>",
	Short: "Dry-run an authorization decision",
	Long: `Report whether account may perform operation right now, without
performing it. Operations: mint, burn, transfer, pause, unpause, change-owner.

Exits non-zero when the decision is a denial.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := access.ParseOperation(args[0])
		if err != nil {
			return err
		}
		s, err := openSession()
		if err != nil {
			return err
		}
		account, err := resolveAccount(s.wallets, args[1])
		if err != nil {
			return err
		}

		decision := s.auth().Authorize(op, account)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("Authorization", [][2]string{
			{"Operation", op.String()},
			{"Account", ui.Addr(account.Hex())},
			{"Feature", fmt.Sprintf("%s %s", op.Feature(), ui.Flag(s.auth().IsFeatureEnabled(op)))},
			{"Required role", ui.RoleName(op.RequiredRole().String())},
			{"Decision", ui.Verdict(decision == nil)},
		}))
		return decision
	},
}
