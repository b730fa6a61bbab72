// Command lambda serves calculation requests from API Gateway proxy events
// and direct invokes. Telemetry is flushed at the end of every invocation
// because lambda.Start never returns.
package main

import (
	"context"
	"os"

	"calcburst/internal/app"
	"calcburst/internal/config"
	"calcburst/internal/observability"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("CALCBURST_CONFIG"))
	if err != nil {
		panic(err)
	}

	if err := observability.InitLogger(cfg.Telemetry.LogLevel); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	application, err := app.New(ctx, cfg)
	if err != nil {
		observability.Logger.Fatal("startup failed", zap.Error(err))
	}

	lambda.Start(proxyHandler(application.Handler))
}
