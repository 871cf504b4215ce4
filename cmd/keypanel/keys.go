package main

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/keypanel/internal/application"
	"github.com/ericfisherdev/keypanel/internal/config"
	"github.com/ericfisherdev/keypanel/internal/domain/model"
)

func newKeysCmd() *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Inspect stored API keys",
	}
	keysCmd.AddCommand(newKeysListCmd())
	keysCmd.AddCommand(newKeysGenerateCmd())
	return keysCmd
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show stored keys with masked secrets",
		Long: `List every stored API key, newest first. Secrets are always masked.

Examples:
  keypanel keys list
  KEYPANEL_DB_PATH=/var/lib/keypanel.db keypanel keys list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, closeDB, err := openStore(cmd.Context(), cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer closeDB()

			writeKeyList(cmd.OutOrStdout(), store.List())
			return nil
		},
	}
}

func newKeysGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Print a freshly generated API key without storing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := application.GenerateSecret(rand.Reader)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), secret)
			return err
		},
	}
}

func writeKeyList(w io.Writer, keys []model.APIKey) {
	if len(keys) == 0 {
		fmt.Fprintln(w, color.YellowString("!")+" No API keys stored")
		fmt.Fprintln(w, color.CyanString("→")+" Run "+color.YellowString("keypanel serve")+" and create one in the dashboard")
		return
	}

	fmt.Fprintln(w, color.GreenString("✓")+fmt.Sprintf(" %d API key(s):", len(keys)))
	for _, k := range keys {
		createdAt := k.CreatedAt
		fmt.Fprintf(w, "%s%s  %s  created %s  last used %s\n",
			color.CyanString("  • "),
			k.Label,
			k.Masked(),
			model.FormatDate(&createdAt),
			model.FormatDate(k.LastUsedAt),
		)
	}
}
