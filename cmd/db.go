package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopsage/shopsage/internal/storage"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the PostgreSQL database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := loadConfig()
		if err := storage.Migrate(cfg.Database.URL); err != nil {
			return err
		}
		fmt.Println("Migrations applied.")
		return nil
	},
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo dataset (replaces existing rows)",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := loadConfig()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		db, err := storage.New(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := storage.Seed(ctx, db); err != nil {
			return err
		}
		fmt.Println("Demo dataset loaded.")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbSeedCmd)
}
