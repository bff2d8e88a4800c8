/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"

	"github.com/mautops/request-gin/internal/database"
	"github.com/mautops/request-gin/internal/repository"
	"github.com/mautops/request-gin/internal/seed"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed [directory.yaml]",
	Short: "Load providers, departments and users",
	Long: `Load the organization directory (providers, departments and users)
from a YAML file. Existing rows are updated, so the command can be
re-run whenever the directory file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		dir, err := seed.LoadFile(args[0])
		if err != nil {
			return err
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}()

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		result, err := seed.Apply(cmd.Context(), repository.NewDirectoryRepository(db), dir)
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"providers":   result.Providers,
			"departments": result.Departments,
			"users":       result.Users,
		}).Info("directory loaded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
