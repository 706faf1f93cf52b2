// Package cmd defines and implements the CLI commands for the shelfscan
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelfscan",
		Short: "Check want-to-read titles for borrowability across digital catalogs.",
		Long: `shelfscan takes a reading-list export, fans every want-to-read title
across your configured digital catalogs, and records whether each title can
be borrowed right now along with its available formats.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (e.g. ./shelfscan.yaml)")
	cmd.AddCommand(newScanCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	// A local .env may carry SHELFSCAN_* overrides; absence is fine.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
