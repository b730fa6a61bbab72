package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"calcburst/internal/app"
	"calcburst/internal/observability"
	"calcburst/internal/server"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"
)

func main() {

	ctx := context.Background()

	// Config
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger(cfg.Telemetry.LogLevel)
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Telemetry, recorders and store
	application, err := app.New(ctx, cfg)
	if err != nil {
		observability.Logger.Fatal("startup failed", zap.Error(err))
	}

	// Router
	router := server.NewRouter(server.Dependencies{
		Calculator: application.Handler,
		Gatherer:   application.Registry,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Server.Addr),
			zap.String("store", cfg.Store.Backend),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.Server.ShutdownTimeout, map[string]gfshutdown.Operation{
		"calcburst": func(ctx context.Context) error {
			// drain requests before flushing telemetry and closing the store
			if err := srv.Shutdown(ctx); err != nil {
				observability.Logger.Error("server shutdown failed", zap.Error(err))
			}
			return application.Shutdown(ctx)
		},
	})

	code := <-wait
	observability.Logger.Info("server stopped", zap.Int("exit_code", code))
	observability.SyncLogger()
	os.Exit(code)
}
