package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/Mohsinsiddi/govtoken/internal/ui"
	"github.com/spf13/cobra"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Inspect and administer roles",
	Long: `Roles: admin (DEFAULT_ADMIN_ROLE), minter, burner, transferer, pauser,
owner-changer, cap-manager. Short names, constant names, contract preimages
(TOKEN_MINTER) and 0x identifiers are all accepted.

cap-manager is MobitToken's operator role; it gates no local operation.`,
}

var roleIDCmd = &cobra.Command{
	Use:   "id [role]",
	Short: "Print the 32-byte identifier of a role (all roles when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roles := access.AllRoles()
		if len(args) == 1 {
			r, err := access.ParseRole(args[0])
			if err != nil {
				return err
			}
			roles = []access.Role{r}
		}
		t := ui.NewTable(ui.Column{Title: "ROLE"}, ui.Column{Title: "ID"})
		for _, r := range roles {
			t.AddRow(ui.RoleName(r.String()), ui.Addr(r.ID().Hex()))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var roleGrantCmd = &cobra.Command{
	Use:   "grant <role> <account>",
	Short: "Grant a role (caller must hold the role's admin role)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeRole(cmd, args[0], args[1], "grant")
	},
}

var roleRevokeCmd = &cobra.Command{
	Use:   "revoke <role> <account>",
	Short: "Revoke a role (caller must hold the role's admin role)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeRole(cmd, args[0], args[1], "revoke")
	},
}

var roleRenounceCmd = &cobra.Command{
	Use:   "renounce <role>",
	Short: "Give up a role held by the acting wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeRole(cmd, args[0], "", "renounce")
	},
}

func changeRole(cmd *cobra.Command, roleArg, accountArg, action string) error {
	role, err := access.ParseRole(roleArg)
	if err != nil {
		return err
	}
	s, err := openLocked(cmd.Context())
	if err != nil {
		return err
	}
	defer s.release()
	caller, err := s.caller()
	if err != nil {
		return err
	}
	account := caller
	if accountArg != "" {
		if account, err = resolveAccount(s.wallets, accountArg); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch action {
	case "grant":
		err = s.auth().GrantRole(role, account, caller)
	case "revoke":
		if !confirm(cmd, fmt.Sprintf("Revoke %s from %s?", role, account.Hex())) {
			return errAborted
		}
		err = s.auth().RevokeRole(role, account, caller)
	case "renounce":
		if !confirm(cmd, fmt.Sprintf("Renounce %s for %s? This cannot be undone by you.", role, account.Hex())) {
			return errAborted
		}
		err = s.auth().RenounceRole(role, account, caller)
	}
	if err != nil {
		return err
	}
	if err := s.commit(); err != nil {
		return err
	}
	verb := map[string]string{"grant": "granted to", "revoke": "revoked from", "renounce": "renounced by"}[action]
	fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s %s %s", role, verb, account.Hex())))
	return nil
}

var roleHasCmd = &cobra.Command{
	Use:   "has <role> <account>",
	Short: "Check whether an account holds a role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := access.ParseRole(args[0])
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
		if s.auth().HasRole(role, account) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s holds %s", account.Hex(), role)))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Warn(fmt.Sprintf("%s does not hold %s", account.Hex(), role)))
		return nil
	},
}

var roleListCmd = &cobra.Command{
	Use:   "list [role]",
	Short: "List role members and each role's admin role",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roles := access.AllRoles()
		if len(args) == 1 {
			r, err := access.ParseRole(args[0])
			if err != nil {
				return err
			}
			roles = []access.Role{r}
		}
		s, err := openSession()
		if err != nil {
			return err
		}
		auth := s.auth()

		t := ui.NewTable(ui.Column{Title: "ROLE"}, ui.Column{Title: "ADMIN ROLE"}, ui.Column{Title: "MEMBER"})
		for _, r := range roles {
			members := auth.Members(r)
			if len(members) == 0 {
				t.AddRow(ui.RoleName(r.String()), auth.GetRoleAdmin(r).String(), ui.Meta("(none)"))
				continue
			}
			for i, m := range members {
				name, admin := "", ""
				if i == 0 {
					name, admin = ui.RoleName(r.String()), auth.GetRoleAdmin(r).String()
				}
				t.AddRow(name, admin, ui.Addr(m.Hex()))
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var roleSetAdminCmd = &cobra.Command{
	Use:   "set-admin <role> <admin-role>",
	Short: "Delegate administration of a role to another role (admin only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := access.ParseRole(args[0])
		if err != nil {
			return err
		}
		adminRole, err := access.ParseRole(args[1])
		if err != nil {
			return err
		}
		s, err := openLocked(cmd.Context())
		if err != nil {
			return err
		}
		defer s.release()
		caller, err := s.caller()
		if err != nil {
			return err
		}
		if err := s.auth().SetRoleAdmin(role, adminRole, caller); err != nil {
			return err
		}
		if err := s.commit(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s is now administered by %s", role, adminRole)))
		return nil
	},
}

func init() {
	roleCmd.AddCommand(roleIDCmd, roleGrantCmd, roleRevokeCmd, roleRenounceCmd, roleHasCmd, roleListCmd, roleSetAdminCmd)
}
