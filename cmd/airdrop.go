package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Mohsinsiddi/govtoken/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	airdropFile   string
	airdropRandom int
)

var airdropCmd = &cobra.Command{
	Use:   "airdrop <amount> [recipient...]",
	Short: "Mint the same amount to many recipients, all or nothing",
	Long: `Mint <amount> to every recipient in one operation. Either every
recipient is credited or none is; the whole batch must fit under the cap.
Requires MINTER_ROLE and the mint feature.

Recipients come from the arguments, from --file (one wallet name or address
per line, # comments allowed) and from --random N freshly generated addresses.

Examples:
  govtoken airdrop 100 alice bob 0x3000...0001
  govtoken airdrop 100 --file holders.txt
  govtoken airdrop 100 --random 500`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(ctx context.Context, s *session, caller common.Address) (string, error) {
			amount, err := parseAmount(args[0], s.tok.Decimals(), false)
			if err != nil {
				return "", err
			}
			recipients, err := gatherRecipients(s.wallets, args[1:], airdropFile, airdropRandom)
			if err != nil {
				return "", err
			}
			logger.Debug("airdrop", "recipients", len(recipients), "amount", amount)
			if err := s.tok.Airdrop(ctx, caller, recipients, amount); err != nil {
				return "", err
			}
			return fmt.Sprintf("Airdropped %s to %d recipients", formatAmount(s.tok, amount), len(recipients)), nil
		})
	},
}

func gatherRecipients(mgr *wallet.Manager, args []string, file string, random int) ([]common.Address, error) {
	var out []common.Address
	for _, a := range args {
		addr, err := resolveAccount(mgr, a)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		fromFile, err := readRecipients(mgr, f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		out = append(out, fromFile...)
	}
	if random > 0 {
		gen, err := wallet.RandomAddresses(random)
		if err != nil {
			return nil, err
		}
		out = append(out, gen...)
	}
	return out, nil
}

func readRecipients(mgr *wallet.Manager, r io.Reader) ([]common.Address, error) {
	var out []common.Address
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, field := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
			addr, err := resolveAccount(mgr, field)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			out = append(out, addr)
		}
	}
	return out, sc.Err()
}

func init() {
	airdropCmd.Flags().StringVarP(&airdropFile, "file", "f", "", "file of recipients")
	airdropCmd.Flags().IntVar(&airdropRandom, "random", 0, "add N randomly generated recipients")
}
