package main

import (
	"context"
	"fmt"

	"calcburst/internal/bridge"
	"calcburst/internal/config"
	"calcburst/internal/observability"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
)

// setup loads configuration, starts the logger and builds the bridge. The
// returned func flushes the logger.
func setup(ctx context.Context) (*bridge.Bridge, *config.Config, func(), error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := observability.InitLogger(cfg.Telemetry.LogLevel); err != nil {
		return nil, nil, nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Bridge.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Bridge.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		observability.SyncLogger()
		return nil, nil, nil, fmt.Errorf("load aws config: %w", err)
	}

	source := bridge.NewCloudWatchSource(
		cloudwatch.NewFromConfig(awsCfg),
		bridge.DefaultQueries(cfg.Bridge.FunctionName, cfg.Bridge.APIName),
	)
	pusher := bridge.NewPushgateway(cfg.Metrics.SinkAddress, cfg.Metrics.Job)

	return bridge.New(source, pusher, cfg.Bridge.Window), cfg, observability.SyncLogger, nil
}
