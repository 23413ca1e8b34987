package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Mohsinsiddi/govtoken/internal/config"
	"github.com/Mohsinsiddi/govtoken/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/govtoken/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir    string
	cfg       *config.Config
	logger    *slog.Logger
	verbose   bool
	assumeYes bool
	tokenName string
	actAs     string
)

// Swapped out by tests.
var (
	stdin       io.Reader = os.Stdin
	interactive           = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	}
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "govtoken",
	Short: "Feature-gated governance token ledger",
	Long: `govtoken manages capped, pausable governance tokens whose privileged
operations are gated twice: a per-category feature flag, then a role.

  mint, burn, transfer, pause/unpause and ownership changes each belong to a
  feature category. A disabled category refuses every caller, the council
  included. An enabled one admits holders of the matching role.

Deployments are stored under the config directory. Pick one with --token
(or set default_token), and act as a wallet with --as.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger = newLogger(cmd.ErrOrStderr(), cfg, verbose)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, c *config.Config, verbose bool) *slog.Logger {
	level := c.Level()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, ui.Err(err.Error()))
	if hint := hintFor(err); hint != "" {
		fmt.Fprintln(w, ui.Hint(hint))
	}
}

// confirm asks before a destructive step unless --yes was given. Without a
// terminal it refuses rather than blocking.
func confirm(cmd *cobra.Command, prompt string) bool {
	if assumeYes {
		return true
	}
	if !interactive() {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn("refusing without a terminal; pass --yes"))
		return false
	}
	return ui.ConfirmDanger(stdin, cmd.OutOrStdout(), prompt)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $GOVTOKEN_CONFIG_DIR or ~/.govtoken)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompts")
	rootCmd.PersistentFlags().StringVarP(&tokenName, "token", "t", "", "deployment to operate on (default: default_token)")
	rootCmd.PersistentFlags().StringVar(&actAs, "as", "", "wallet to act as (default: default_wallet)")

	rootCmd.AddCommand(
		deployCmd,
		infoCmd,
		roleCmd,
		featureCmd,
		authorizeCmd,
		mintCmd,
		burnCmd,
		transferCmd,
		approveCmd,
		transferFromCmd,
		airdropCmd,
		balanceCmd,
		allowanceCmd,
		pauseCmd,
		unpauseCmd,
		ownerCmd,
		walletCmd,
		remoteCmd,
	)
}
