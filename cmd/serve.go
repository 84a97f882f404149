package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shopsage/shopsage/internal/dependency"
)

var serveSyncOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the scheduled index sync",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveSyncOnStart, "sync-on-start", true,
		"Sync the search indexes once before serving")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := dependency.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	syncer, err := container.Syncer()
	if err != nil {
		return err
	}
	httpServer, err := container.Server()
	if err != nil {
		return err
	}

	if serveSyncOnStart {
		if err := syncer.SyncAll(ctx); err != nil {
			slog.Warn("initial index sync failed, continuing", "err", err)
		}
	}

	scheduler := cron.New()
	if cfg.Meilisearch.SyncSchedule != "" {
		_, err := scheduler.AddFunc(cfg.Meilisearch.SyncSchedule, func() {
			if err := syncer.SyncAll(ctx); err != nil {
				slog.Error("scheduled index sync failed", "err", err)
			}
		})
		if err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(ctx)
	})
	g.Go(func() error {
		scheduler.Start()
		<-ctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})

	return g.Wait()
}
