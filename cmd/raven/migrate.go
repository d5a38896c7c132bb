package main

import (
	"github.com/spf13/cobra"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Apply the database schema. Every statement is idempotent, so running it
against an up-to-date database is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := a.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer pool.Close()

			if schemaPath == "" {
				schemaPath = a.cfg.Database.SchemaPath
			}
			return db.ApplySchema(cmd.Context(), pool, schemaPath, a.log)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema file to apply instead of the embedded one (defaults to SCHEMA_PATH)")
	return cmd
}
