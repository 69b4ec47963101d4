package main

import (
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/mytheresa/catalog-service/database"
	"github.com/mytheresa/catalog-service/logger"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
			return database.Migrate(cmd.Context(), cfg.Database.URL, log)
		},
	}

	cobraflags.RegisterMap(cmd, configFlags)
	return cmd
}
