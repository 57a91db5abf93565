package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "adreward/internal/adapter/http"
	"adreward/internal/adapter/memory"
	"adreward/internal/adapter/postgres"
	"adreward/internal/adapter/usecase"
	"adreward/internal/config"
	"adreward/internal/config/configs"
	"adreward/internal/core/port"
	"adreward/internal/db"
)

// main is the entry point of the adreward service. It loads configuration,
// opens the configured store (running migrations when asked), seeds the
// default data, schedules the daily reset and starts the HTTP server. On
// receiving a termination signal it gracefully shuts everything down.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}

	logger := slog.New(cfg.Log.Handler(os.Stdout)).With(slog.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store setup error", slog.Any("error", err))
		return
	}
	defer closeStore()

	var (
		clock  = clockwork.NewRealClock()
		loc    = cfg.Reward.Location()
		hasher = usecase.NewPasswordHasher(cfg.Reward.BcryptCost)
	)

	if cfg.Store.SeedDefaults {
		if err = db.Seed(ctx, store, cfg.Store, hasher, clock.Now(), loc); err != nil {
			logger.Error("seed error", slog.Any("error", err))
			return
		}
	}

	ledger := usecase.NewLedger(store, clock, loc, logger)
	reset := usecase.NewDailyReset(store, clock, loc, logger)
	if err = reset.Start(ctx); err != nil {
		logger.Error("scheduler error", slog.Any("error", err))
		return
	}
	defer func() {
		if err := reset.Shutdown(); err != nil {
			logger.Error("scheduler shutdown error", slog.Any("error", err))
		}
	}()

	handler := httpadapter.NewHandler(httpadapter.Services{
		Views:       usecase.NewViewer(store, ledger, clock, logger, cfg.Reward.MinWatchRatio),
		Ledger:      ledger,
		Stats:       usecase.NewStats(store, clock, loc, logger),
		Accounts:    usecase.NewAccounts(store, hasher, clock, loc, logger),
		Ads:         usecase.NewAds(store, clock, logger),
		Maintenance: reset,
	}, logger)
	if cfg.Reward.AutoCountdown {
		handler.AutoCountdown(ctx)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening",
			slog.Int("port", int(cfg.HTTP.Port)),
			slog.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()
	exitCode = 0

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stop()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}

// openStore returns the store selected by cfg.Store.Driver and a function
// releasing its resources.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.Store, func(), error) {
	switch cfg.Store.Driver {
	case configs.StoreMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		return memory.NewStore(), func() {}, nil
	case configs.StorePostgres:
		// Optionally run migrations if configured. We use the Psql sub-config.
		if cfg.Psql.RunMigrations {
			if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		return postgres.NewStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
