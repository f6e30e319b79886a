// Package cli provides the tracker's command tree and the initialization
// shared by its commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tracker/internal/app"
	"tracker/internal/backend"
	"tracker/internal/cache"
	"tracker/internal/config"
	"tracker/internal/log"
	"tracker/internal/store"
)

// SetupLogger initializes structured logging at level, or debug when the
// flag is set, and makes it the default logger.
func SetupLogger(w io.Writer, level string, debug bool) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	if debug {
		lvl = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: lvl, Component: log.ComponentCLI, Output: w})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads the optional env file, then the configuration,
// and validates it.
func LoadAndValidateConfig(envFile string) (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Env is an opened tracker with everything that must be released after it.
type Env struct {
	Config  *config.Config
	Logger  *log.Logger
	Tracker *app.Tracker
	Backend *backend.BackendResult
	Views   *cache.LRUCache[app.Screen]
}

// Close releases the backend.
func (e *Env) Close() error {
	if e.Backend == nil || e.Backend.Cleanup == nil {
		return nil
	}
	return e.Backend.Cleanup()
}

// OpenTracker builds the backend, loads the store and wraps it in a
// tracker. Change notifications are published when the backend has them.
func OpenTracker(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Env, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
		return nil, err
	}

	opts := []store.Option{
		store.WithKey(cfg.StorageKey),
		store.WithLogger(logger.WithComponent(log.ComponentStore)),
	}
	if result.Changes != nil {
		opts = append(opts, store.WithNotifier(result.Changes))
	}
	st := store.New(result.Backend, opts...)
	st.Load(ctx)

	views := cache.NewLRUCache[app.Screen](cfg.CacheSize, cfg.CacheTTL)
	tracker := app.New(st,
		app.WithLocation(loc),
		app.WithViewCache(views),
		app.WithLogger(logger.WithComponent(log.ComponentApp)),
	)

	return &Env{
		Config:  cfg,
		Logger:  logger,
		Tracker: tracker,
		Backend: result,
		Views:   views,
	}, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// signal is logged once it arrives.
func GracefulShutdown(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
