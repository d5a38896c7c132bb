package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/config"
	"github.com/aquilesbailo123/Raven-backend/pkg/db"
	"github.com/aquilesbailo123/Raven-backend/pkg/logger"
)

// app carries what every subcommand needs once the root pre-run has loaded it.
type app struct {
	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "raven",
		Short: "Raven startup and incubator platform",
		Long: `Raven connects startups with incubators.

Without a subcommand the HTTP API is started, same as "raven serve".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			a.cfg = cfg
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newSeedCmd(a))
	return root
}

// connect opens the pool; applySchema overrides APPLY_SCHEMA_ON_START.
func (a *app) connect(ctx context.Context, applySchema bool) (*pgxpool.Pool, error) {
	dbCfg := a.cfg.Database
	dbCfg.ApplySchemaOnStart = applySchema
	return db.Connect(ctx, dbCfg, a.log)
}
