package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopsage/shopsage/internal/dependency"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the Meilisearch indexes from the database",
	RunE:  runSync,
}

func runSync(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	container, err := dependency.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	syncer, err := container.Syncer()
	if err != nil {
		return err
	}
	if err := syncer.SyncAll(ctx); err != nil {
		return err
	}
	fmt.Println("Search indexes synced.")
	return nil
}
