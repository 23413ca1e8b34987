package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/govtoken/internal/ui"
	"github.com/Mohsinsiddi/govtoken/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag string
	walletShowKey bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the principals you can act as",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet (watch-only, or signing with --key)",
	Long: `Add a named principal.

Watch-only wallets are addresses you refer to by name (recipients, role
holders). Signing wallets hold a key in the OS keychain and can be used
with --as to act as a caller.

Set GOVTOKEN_KEY to supply a key in CI without a keychain.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		out := cmd.OutOrStdout()

		if walletKeyFlag != "" {
			w, err := mgr.AddWithKey(name, walletKeyFlag)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Act as it with: govtoken --as %s <command>", name)))
			return nil
		}
		if len(args) < 2 {
			return fmt.Errorf("address required for watch-only wallet\n  Usage: govtoken wallet add <name> <address>\n  Or for signing: govtoken wallet add <name> --key <private-key>")
		}
		w, err := mgr.AddWatchOnly(name, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address))))
		return nil
	},
}

var walletNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Generate a fresh signing wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		w, err := mgr.Generate(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Generated %q: %s", w.Name, ui.Addr(w.Address))))
		if walletShowKey {
			key, err := mgr.Keystore().Retrieve(w.KeyRef)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Warn("Private key (shown once, keep it secret): ")+ui.Val("0x"+key))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		wallets, err := mgr.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets configured yet."))
			fmt.Fprintln(out, ui.Hint("Create one with: govtoken wallet new council"))
			return nil
		}

		t := ui.NewTable(
			ui.Column{Title: "NAME"},
			ui.Column{Title: "ADDRESS"},
			ui.Column{Title: "TYPE"},
			ui.Column{Title: "DEFAULT"},
		)
		for _, w := range wallets {
			def := ""
			if w.Name == cfg.DefaultWallet || (cfg.DefaultWallet == "" && w.IsDefault) {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(w.Name, ui.Addr(w.Address), ui.Meta(w.Type), def)
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !confirm(cmd, fmt.Sprintf("Remove wallet %q and its key?", name)) {
			return errAborted
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the wallet used when --as is omitted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		if w.Type != wallet.TypeSigning {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn(fmt.Sprintf("%q is watch-only; it cannot act as a caller", name)))
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (stored in the OS keychain)")
	walletNewCmd.Flags().BoolVar(&walletShowKey, "show-key", false, "print the generated private key once")
	walletCmd.AddCommand(walletAddCmd, walletNewCmd, walletListCmd, walletRemoveCmd, walletDefaultCmd)
}
