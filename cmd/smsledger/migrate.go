package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the rule database",
		Long: `Apply pending schema migrations. Every command that touches the database
migrates it first, so this is only needed to prepare a database ahead of time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			status, _ := cmd.Flags().GetBool("status")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			out := cmd.OutOrStdout()
			if status {
				version, err := store.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "Database: %s\nSchema version: %d (expected %d)\n",
					store.Path(), version, storage.ExpectedSchemaVersion)
				return err
			}

			_, err = fmt.Fprintln(out, cli.FormatSuccess("Database is up to date: "+store.Path()))
			return err
		},
	}
	cmd.Flags().Bool("status", false, "print the schema version")
	return cmd
}
