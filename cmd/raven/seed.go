package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "incubators",
		Short: "Create demo incubator accounts with their team members",
		Long: fmt.Sprintf(`Create demo incubator accounts with their team members.

Accounts log in with the password %q. Running the command again only adds
what is missing.`, seed.DemoPassword),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := a.connect(cmd.Context(), a.cfg.Database.ApplySchemaOnStart)
			if err != nil {
				return err
			}
			defer pool.Close()

			report, err := seed.Incubators(cmd.Context(), pool, a.log)
			if err != nil {
				return err
			}
			a.log.Info("demo incubators seeded",
				zap.Int("users", report.Users),
				zap.Int("incubators", report.Incubators),
				zap.Int("members", report.Members))
			fmt.Fprintf(cmd.OutOrStdout(), "created %d users, %d incubators, %d members\n",
				report.Users, report.Incubators, report.Members)
			return nil
		},
	})

	return cmd
}
