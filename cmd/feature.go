package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/Mohsinsiddi/govtoken/internal/ui"
	"github.com/spf13/cobra"
)

var featureCmd = &cobra.Command{
	Use:   "feature",
	Short: "Inspect and toggle feature categories",
	Long: `Feature categories: mint, burn, pause (covers unpause), stake,
transfer, change-owner. A disabled category refuses every caller.
Toggling requires DEFAULT_ADMIN_ROLE.`,
}

var featureListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every feature category and the operations it gates",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		fs := s.auth().Features()

		t := ui.NewTable(ui.Column{Title: "FEATURE"}, ui.Column{Title: "STATE"}, ui.Column{Title: "GATES"})
		for _, f := range access.AllFeatures() {
			var ops []string
			for _, op := range access.AllOperations() {
				if op.Feature() == f {
					ops = append(ops, fmt.Sprintf("%s (%s)", op, op.RequiredRole()))
				}
			}
			gates := strings.Join(ops, ", ")
			if gates == "" {
				gates = ui.Meta("nothing")
			}
			t.AddRow(f.String(), ui.Flag(fs.Enabled(f)), gates)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var featureEnableCmd = &cobra.Command{
	Use:   "enable <feature>...",
	Short: "Enable feature categories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleFeatures(cmd, args, true)
	},
}

var featureDisableCmd = &cobra.Command{
	Use:   "disable <feature>...",
	Short: "Disable feature categories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleFeatures(cmd, args, false)
	},
}

func toggleFeatures(cmd *cobra.Command, names []string, on bool) error {
	s, err := openLocked(cmd.Context())
	if err != nil {
		return err
	}
	defer s.release()
	fs := s.auth().Features()
	for _, n := range names {
		f, err := access.ParseFeature(n)
		if err != nil {
			return err
		}
		fs = fs.With(f, on)
	}
	caller, err := s.caller()
	if err != nil {
		return err
	}
	if err := s.auth().SetFeatures(fs, caller); err != nil {
		return err
	}
	if err := s.commit(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Features: "+featureSummary(fs)))
	return nil
}

func init() {
	featureCmd.AddCommand(featureListCmd, featureEnableCmd, featureDisableCmd)
}
