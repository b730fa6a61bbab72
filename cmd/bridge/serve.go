package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"calcburst/internal/bridge"
	"calcburst/internal/observability"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Export on an interval and accept manual triggers over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		b, cfg, flush, err := setup(ctx)
		if err != nil {
			return err
		}
		defer flush()

		srv := &http.Server{
			Addr:    cfg.Bridge.ListenAddr,
			Handler: bridge.NewRouter(b),
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return b.Start(ctx, cfg.Bridge.Interval)
		})

		g.Go(func() error {
			observability.Logger.Info("bridge trigger listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}
