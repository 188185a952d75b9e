package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StockMon/internal/di"
	"StockMon/pkg/config"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		feedType   string
	)
	load := func() (*config.Config, error) {
		cfg, err := config.LoadWithEnv(configPath)
		if err != nil {
			return nil, fmt.Errorf("config load failed: %w", err)
		}
		if feedType != "" {
			cfg.Feed.Type = feedType
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
		}
		return cfg, nil
	}

	root := &cobra.Command{
		Use:           "stockmon",
		Short:         "Interactive stock price monitor with price alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			app, cleanup, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			defer cleanup()
			return app.Run(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
	root.PersistentFlags().StringVar(&feedType, "feed", "", "override feed.type (sim, finnhub, kafka, redis)")

	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print the monitored stocks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "env=%s feed=%s\n", cfg.Environment, cfg.Feed.Type)
			for _, s := range cfg.Feed.Symbols {
				fmt.Fprintf(out, "%-6s %-30s %.2f\n", s.Code, s.Name, s.Price)
			}
			return nil
		},
	})
	return root
}
