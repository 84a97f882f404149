// Package cmd implements the shopsage CLI using cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shopsage/shopsage/internal/config"
)

const version = "0.1.0"

var (
	configPath string
	verbose    bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "shopsage",
	Short: "shopsage — natural-language e-commerce analytics agent",
	Long: "shopsage answers natural-language questions about an e-commerce catalogue\n" +
		"by orchestrating Meilisearch lookups, read-only SQL analytics and chart rendering.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Secrets live in .env during development; missing file is fine.
	_ = godotenv.Load()

	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(initCmd)
}

func loadConfig() *config.Config {
	return config.Load(configPath)
}
