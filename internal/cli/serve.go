package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tracker/internal/amqp"
	"tracker/internal/cache"
	apphttp "tracker/internal/http"
	"tracker/internal/log"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve the tracker over HTTP on $PORT. When AMQP_URL is set, changes
are announced to other instances and their changes trigger a reload.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx, cancel := GracefulShutdown(cmd.Context(), env.Logger)
			defer cancel()
			return serve(ctx, env)
		},
	}
}

// serve runs the HTTP server, the view cache cleanup and the optional
// change consumer until ctx is done or one of them fails.
func serve(ctx context.Context, env *Env) error {
	logger := env.Logger

	caches := cache.NewManager(logger)
	caches.Register(env.Views)
	caches.StartCleanup(env.Config.CacheTTL)
	defer caches.Stop()

	srv := apphttp.NewServer(":"+env.Config.Port, env.Tracker, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting tracker server",
			"port", env.Config.Port, log.FieldBackend, env.Config.DataBackend, log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		logger.Info("Server stopped gracefully")
		return nil
	})

	if changes := env.Backend.Changes; changes != nil {
		g.Go(func() error {
			err := changes.ConsumeChanges(gctx, func(ctx context.Context, msg *amqp.ChangeMessage) error {
				logger.DebugContext(ctx, "Change announced by another instance",
					log.FieldInstance, msg.Instance, log.FieldTransactionID, msg.TransactionID)
				env.Tracker.Reload(ctx)
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("Change consumer stopped, other instances' changes need a restart to show",
					log.NewFields().WithError(err, log.ErrorTypeNetwork).ToSlice()...)
			}
			return nil
		})
	}

	return g.Wait()
}
