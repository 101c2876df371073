// screener serves a live token screener over HTTP and websocket, or prints a
// one-off snapshot of the derived view.
//
// Usage:
//
//	screener serve --config configs/screener.example.yaml
//	screener snapshot --category new --search pepe --sort marketCap --sort marketCap
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rickgao/tokenscope/internal/config"
	"github.com/rickgao/tokenscope/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:          "screener",
		Short:        "Real-time token screener",
		Version:      version.String(),
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path (built-in defaults when empty)")
	root.PersistentFlags().String("log-level", "", "override log level (debug, info, warn, error)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the screener service",
		RunE:  runServe,
	}
	serveCmd.Flags().Int("port", 0, "override HTTP port")

	root.AddCommand(serveCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch one batch and print the derived view",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().String("category", "all", "category filter (all, new, final-stretch, migrated)")
	snapshotCmd.Flags().String("search", "", "case-insensitive name or symbol search")
	snapshotCmd.Flags().StringArray("sort", nil, "sort request; repeat a key to toggle its direction")
	snapshotCmd.Flags().Int("limit", 0, "print at most this many rows (0 = all)")

	root.AddCommand(snapshotCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config (or the defaults) and applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
	} else {
		var err error
		cfg, err = config.LoadAndValidate(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)
	return logger.With("instance", cfg.Instance.ID)
}
