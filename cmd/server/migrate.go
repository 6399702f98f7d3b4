package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hongminglow/homeride-be/internal/config"
	"github.com/hongminglow/homeride-be/internal/storage/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), (*postgres.Store).MigrateUp)
		},
	}, &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), (*postgres.Store).MigrateDown)
		},
	})
	return cmd
}

func withStore(ctx context.Context, fn func(*postgres.Store) error) error {
	databaseURL, err := config.LoadDatabaseURL()
	if err != nil {
		return err
	}
	store, err := postgres.NewStore(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer store.Close()
	return fn(store)
}
