package main

import (
	"github.com/Govind-619/EnrollSphere/config"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}
			if err := config.Migrate(db); err != nil {
				return err
			}
			utils.LogInfo("Database migrated")
			return nil
		},
	}
}
