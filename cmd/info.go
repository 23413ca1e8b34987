package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/govtoken/internal/token"
	"github.com/Mohsinsiddi/govtoken/internal/ui"
	"github.com/spf13/cobra"
)

var (
	infoAll    bool
	infoEvents int
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show a deployment's supply, pause state and features",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if infoAll {
			return listDeployments(cmd)
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		tok := s.tok
		status := ui.StyleSuccess.Render("active")
		if tok.Paused() {
			status = ui.StyleWarning.Render("paused")
		}
		fmt.Fprintln(out, ui.KeyValueBlock(fmt.Sprintf("%s (%s)", tok.Name(), s.record.Name), [][2]string{
			{"Symbol", tok.Symbol()},
			{"Decimals", fmt.Sprint(tok.Decimals())},
			{"Total supply", formatAmount(tok, tok.TotalSupply())},
			{"Cap", formatAmount(tok, tok.Cap())},
			{"Status", status},
			{"Owner", ui.Addr(tok.Owner().Hex())},
			{"Features", featureSummary(s.auth().Features())},
			{"Updated", ui.Meta(s.record.UpdatedAt)},
		}))

		if infoEvents > 0 {
			evs := tok.Events(0)
			if len(evs) > infoEvents {
				evs = evs[len(evs)-infoEvents:]
			}
			t := ui.NewTable(
				ui.Column{Title: "#"},
				ui.Column{Title: "EVENT"},
				ui.Column{Title: "FROM"},
				ui.Column{Title: "TO"},
				ui.Column{Title: "AMOUNT"},
			)
			for _, e := range evs {
				amount := ""
				if e.Amount != nil {
					amount = formatAmount(tok, e.Amount)
				}
				t.AddRow(fmt.Sprint(e.Seq), string(e.Kind), shortAddr(e.From.Hex()), shortAddr(e.To.Hex()), amount)
			}
			fmt.Fprintln(out, t.Render())
		}
		return nil
	},
}

func listDeployments(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	st := deploymentStore()
	names, err := st.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(out, ui.Info("No deployments yet."))
		fmt.Fprintln(out, ui.Hint("Create one with: govtoken deploy <name> --as <wallet>"))
		return nil
	}

	t := ui.NewTable(
		ui.Column{Title: "NAME"},
		ui.Column{Title: "SYMBOL"},
		ui.Column{Title: "SUPPLY"},
		ui.Column{Title: "PAUSED"},
		ui.Column{Title: "DEFAULT"},
	)
	for _, n := range names {
		d, err := st.Load(n)
		if err != nil {
			logger.Warn("skipping unreadable deployment", "token", n, "err", err)
			continue
		}
		def := ""
		if n == cfg.DefaultToken {
			def = "✓"
		}
		t.AddRow(n, d.Token.Symbol, token.FormatUnits(d.Token.TotalSupply, d.Token.Decimals),
			fmt.Sprint(d.Token.Paused), def)
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

// shortAddr truncates, rendering the zero address as "-".
func shortAddr(hex string) string {
	if hex == "0x0000000000000000000000000000000000000000" {
		return "-"
	}
	return ui.TruncateAddr(hex)
}

func init() {
	infoCmd.Flags().BoolVar(&infoAll, "all", false, "list every deployment")
	infoCmd.Flags().IntVar(&infoEvents, "events", 0, "also show the last N ledger events")
}
