package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/leaddist/internal/agents"
	"github.com/JonMunkholm/leaddist/internal/config"
	"github.com/JonMunkholm/leaddist/internal/core"
	"github.com/JonMunkholm/leaddist/internal/logging"
	"github.com/JonMunkholm/leaddist/internal/store"
	"github.com/JonMunkholm/leaddist/internal/web"
)

func main() {
	// Overload lets .env win over variables already set in the shell.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"require_api_key", cfg.Security.RequireAPIKey,
	)

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	st := store.New(pool, store.WithPageSize(cfg.History.DefaultPageSize, cfg.History.MaxPageSize))
	if cfg.Database.Migrate {
		if err := st.Migrate(ctx); err != nil {
			return err
		}
		slog.Info("schema migrated")
	}

	limiter := core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)

	server, err := web.NewServer(cfg, web.Deps{
		Distributor: core.NewDistributor(st, st),
		Agents:      agents.NewService(st, cfg.Security.BcryptCost),
		History:     st,
		Health:      st,
		Limiter:     limiter,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for distributions to finish", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("distributions did not finish in time", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
