package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/govtoken/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// mutate loads the deployment, proves the acting wallet, runs op and saves.
// op returns the success line to print.
func mutate(cmd *cobra.Command, op func(ctx context.Context, s *session, caller common.Address) (string, error)) error {
	s, err := openLocked(cmd.Context())
	if err != nil {
		return err
	}
	defer s.release()
	caller, err := s.caller()
	if err != nil {
		return err
	}
	msg, err := op(cmd.Context(), s, caller)
	if err != nil {
		return err
	}
	if err := s.commit(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(msg))
	return nil
}

var mintCmd = &cobra.Command{
	Use:   "mint <to> <amount>",
	Short: "Mint tokens (MINTER_ROLE, mint feature)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, s *session, caller common.Address) (string, error) {
			to, err := resolveAccount(s.wallets, args[0])
			if err != nil {
				return "", err
			}
			amount, err := parseAmount(args[1], s.tok.Decimals(), false)
			if err != nil {
				return "", err
			}
			if err := s.tok.Mint(ctx, caller, to, amount); err != nil {
				return "", err
			}
			return fmt.Sprintf("Minted %s to %s", formatAmount(s.tok, amount), to.Hex()), nil
		})
	},
}

var burnCmd = &cobra.Command{
	Use:   "burn <from> <amount>",
	Short: "Burn tokens held by an account (BURNER_ROLE, burn feature)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, s *session, caller common.Address) (string, error) {
			from, err := resolveAccount(s.wallets, args[0])
			if err != nil {
				return "", err
			}
			amount, err := parseAmount(args[1], s.tok.Decimals(), false)
			if err != nil {
				return "", err
			}
			if err := s.tok.Burn(ctx, caller, from, amount); err != nil {
				return "", err
			}
			return fmt.Sprintf("Burned %s from %s", formatAmount(s.tok, amount), from.Hex()), nil
		})
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Transfer tokens from the acting wallet (TRANSFERER_ROLE, transfer feature)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, s *session, caller common.Address) (string, error) {
			to, err := resolveAccount(s.wallets, args[0])
			if err != nil {
				return "", err
			}
			amount, err := parseAmount(args[1], s.tok.Decimals(), false)
			if err != nil {
				return "", err
			}
			if err := s.tok.Transfer(ctx, caller, to, amount); err != nil {
				return "", err
			}
			return fmt.Sprintf("Transferred %s to %s", formatAmount(s.tok, amount), to.Hex()), nil
		})
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <spender> <amount|max>",
	Short: "Set a spender's allowance over the acting wallet's tokens",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, s *session, caller common.Address) (string, error) {
			spender, err := resolveAccount(s.wallets, args[0])
			if err != nil {
				return "", err
			}
			amount, err := parseAmount(args[1], s.tok.Decimals(), true)
			if err != nil {
				return "", err
			}
			if err := s.tok.Approve(ctx, caller, spender, amount); err != nil {
				return "", err
			}
			return fmt.Sprintf("Allowance for %s set to %s", spender.Hex(), formatAmount(s.tok, amount)), nil
		})
	},
}

var transferFromCmd = &cobra.Command{
	Use:   "transfer-from <from> <to> <amount>",
	Short: "Spend an allowance (TRANSFERER_ROLE, transfer feature)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, s *session, caller common.Address) (string, error) {
			from, err := resolveAccount(s.wallets, args[0])
			if err != nil {
				return "", err
			}
			to, err := resolveAccount(s.wallets, args[1])
			if err != nil {
				return "", err
			}
			amount, err := parseAmount(args[2], s.tok.Decimals(), false)
			if err != nil {
				return "", err
			}
			if err := s.tok.TransferFrom(ctx, caller, from, to, amount); err != nil {
				return "", err
			}
			return fmt.Sprintf("Moved %s from %s to %s", formatAmount(s.tok, amount), from.Hex(), to.Hex()), nil
		})
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Halt all balance changes (PAUSER_ROLE, pause feature)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, s *session, caller common.Address) (string, error) {
			if err := s.tok.Pause(ctx, caller); err != nil {
				return "", err
			}
			return s.record.Name + " paused", nil
		})
	},
}

var unpauseCmd = &cobra.Command{
	Use:   "unpause",
	Short: "Resume balance changes (PAUSER_ROLE, pause feature)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, s *session, caller common.Address) (string, error) {
			if err := s.tok.Unpause(ctx, caller); err != nil {
				return "", err
			}
			return s.record.Name + " unpaused", nil
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance [account]",
	Short: "Show an account's balance (default: the acting wallet)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		who := actAs
		if len(args) == 1 {
			who = args[0]
		}
		if who == "" {
			who = cfg.DefaultWallet
		}
		if who == "" {
			return fmt.Errorf("account required: govtoken balance <wallet|address>")
		}
		account, err := resolveAccount(s.wallets, who)
		if err != nil {
			return err
		}
		bal := s.tok.BalanceOf(account)
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", ui.Addr(account.Hex()), ui.Val(formatAmount(s.tok, bal)))
		return nil
	},
}

var allowanceCmd = &cobra.Command{
	Use:   "allowance <owner> <spender>",
	Short: "Show how much spender may move on owner's behalf",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		owner, err := resolveAccount(s.wallets, args[0])
		if err != nil {
			return err
		}
		spender, err := resolveAccount(s.wallets, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Val(formatAmount(s.tok, s.tok.Allowance(owner, spender))))
		return nil
	},
}

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Show or transfer token ownership",
}

var ownerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Addr(s.tok.Owner().Hex()))
		return nil
	},
}

var ownerTransferCmd = &cobra.Command{
	Use:   "transfer <new-owner>",
	Short: "Record a new owner (OWNER_CHANGER_ROLE, change-owner feature)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, s *session, caller common.Address) (string, error) {
			next, err := resolveAccount(s.wallets, args[0])
			if err != nil {
				return "", err
			}
			if !confirm(cmd, fmt.Sprintf("Transfer ownership of %s to %s?", s.record.Name, next.Hex())) {
				return "", errAborted
			}
			if err := s.tok.TransferOwnership(ctx, caller, next); err != nil {
				return "", err
			}
			return "Owner is now " + next.Hex(), nil
		})
	},
}

func init() {
	ownerCmd.AddCommand(ownerShowCmd, ownerTransferCmd)
}
