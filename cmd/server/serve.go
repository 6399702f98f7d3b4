package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hongminglow/homeride-be/internal/config"
	"github.com/hongminglow/homeride-be/internal/logging"
	"github.com/hongminglow/homeride-be/internal/server"
	"github.com/hongminglow/homeride-be/internal/storage"
	"github.com/hongminglow/homeride-be/internal/storage/memory"
	"github.com/hongminglow/homeride-be/internal/storage/postgres"
)

func newServeCmd() *cobra.Command {
	var inMemory bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), inMemory)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "use a process-local store instead of Postgres (data is lost on exit)")
	return cmd
}

func runServe(ctx context.Context, inMemory bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	var store storage.Store
	if inMemory {
		log.Warn().Msg("using in-memory store; data is not persisted")
		store = memory.New()
	} else {
		if err := cfg.RequireDatabase(); err != nil {
			return err
		}
		pg, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		if cfg.AutoMigrate {
			if err := pg.MigrateUp(); err != nil {
				pg.Close()
				return err
			}
			log.Info().Msg("database migrations applied")
		}
		store = pg
	}
	defer store.Close()

	srv, err := server.New(cfg, store, log)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddress()).Msg("HomeRide backend listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	log.Info().Msg("shutting down")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
	return nil
}
