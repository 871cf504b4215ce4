// Command keypanel serves the API key dashboard and offers a few maintenance
// subcommands against the same store.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "keypanel",
		Short: "keypanel - a local dashboard for managing API keys.",
		Long: `keypanel keeps a small collection of labelled API keys in a local SQLite
database and serves a dashboard for creating, revealing, copying, editing,
regenerating and deleting them.

Configuration is read from KEYPANEL_* environment variables.

Usage:
  keypanel [command]

Running keypanel with no command starts the server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newKeysCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗")+" "+err.Error())
		os.Exit(1)
	}
}
