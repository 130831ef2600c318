package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/iksnae/readgye-cli/internal"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	noColor bool
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"

	v = internal.NewViper()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "readgye",
	Short: "Contract risk analysis from the terminal",
	Long: `readgye uploads contracts to the analysis service and shows the clauses
that deserve a second look.

Features:
  • Sign in with email, or try the shared guest account
  • Upload PDF contracts and browse the analysis archive
  • Export reports (JSONL, Markdown, YAML, JSON)
  • Ask the counseling assistant about a clause
  • Get notified when an analysis finishes

Quick Start:
  readgye guest                        # Try it without an account
  readgye upload contract.pdf          # Analyze a contract
  readgye archive list                 # Browse the archive
  readgye archive show <document-id>   # Read a report
  readgye chat                         # Talk to the assistant`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("api-url", "", "Analysis service base URL (default "+internal.DefaultAPIBaseURL+")")
	rootCmd.PersistentFlags().String("config-dir", "", "Directory holding config.yaml, .env and the local state database")

	_ = v.BindPFlag(internal.ConfigKeyAPIBaseURL, rootCmd.PersistentFlags().Lookup("api-url"))
	_ = v.BindPFlag(internal.ConfigKeyConfigDir, rootCmd.PersistentFlags().Lookup("config-dir"))

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
