package cli

import (
	"fmt"

	"github.com/foodgram/backend/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			check, _ := cmd.Flags().GetBool("check")
			if check {
				if a.cfg.DBDriver != "postgres" {
					return fmt.Errorf("--check needs the postgres driver, got %q", a.cfg.DBDriver)
				}
				if err := database.CheckPostgres(cmd.Context(), a.cfg.DSN()); err != nil {
					return err
				}
			}
			if err := database.RunMigrations(a.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}

	cmd.Flags().Bool("check", false, "ping PostgreSQL before migrating")

	return cmd
}
