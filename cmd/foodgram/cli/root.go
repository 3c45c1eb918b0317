// Package cli implements the foodgram admin commands.
package cli

import (
	"fmt"
	"os"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app is the state shared by subcommands. Fields set before Execute are
// kept, which lets tests inject a database.
type app struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:           "foodgram",
		Short:         "Foodgram administration",
		Long:          "Maintenance commands for the Foodgram backend: schema migration, catalog import and account management.",
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(path)
		},
	}

	cmd.PersistentFlags().StringVar(&path, "config", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newMigrateCommand(a))
	cmd.AddCommand(newLoadIngredientsCommand(a))
	cmd.AddCommand(newLoadTagsCommand(a))
	cmd.AddCommand(newCreateAdminCommand(a))
	cmd.AddCommand(newDeleteUserCommand(a))

	return cmd
}

func (a *app) init(path string) error {
	if a.cfg == nil {
		if path != "" {
			if err := os.Setenv(config.ConfigPathEnvVar, path); err != nil {
				return err
			}
		}
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		a.cfg = cfg
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console", File: cfg.LogFile})
	}
	if a.db == nil {
		db, err := database.New(a.cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
	}
	return nil
}
