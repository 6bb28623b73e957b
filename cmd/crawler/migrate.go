package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/chengjiao-crawler/internal/config"
	"github.com/user/chengjiao-crawler/internal/storage"
	"github.com/user/chengjiao-crawler/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the transactions table in PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			pgStore, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
			if err != nil {
				return err
			}
			defer pgStore.Close()

			if err := pgStore.Migrate(ctx); err != nil {
				return err
			}
			log.Info("schema applied", zap.String("table", "transactions"))
			return nil
		},
	}
}
