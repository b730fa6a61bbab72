package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. CALCBURST_STORE__TARGET.
const EnvPrefix = "CALCBURST_"

// Config is the top-level configuration shared by the API, the Lambda
// handler and the metrics bridge.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Bridge    BridgeConfig    `koanf:"bridge"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StoreConfig selects and addresses the calculation store.
type StoreConfig struct {
	Backend   string `koanf:"backend"` // "dynamodb", "redis" or "memory"
	Target    string `koanf:"target"`  // DynamoDB table name or Redis key prefix
	Region    string `koanf:"region"`
	RedisAddr string `koanf:"redis_addr"`
}

// MetricsConfig addresses the push-based metrics sink.
type MetricsConfig struct {
	SinkAddress string `koanf:"sink_address"`
	Job         string `koanf:"job"`
}

// BridgeConfig controls the CloudWatch to Pushgateway bridge.
type BridgeConfig struct {
	Interval     time.Duration `koanf:"interval"`
	Window       time.Duration `koanf:"window"`
	FunctionName string        `koanf:"function_name"`
	APIName      string        `koanf:"api_name"`
	Region       string        `koanf:"region"`
	ListenAddr   string        `koanf:"listen_addr"`
}

// TelemetryConfig sets the log level and toggles the OTLP exporters.
type TelemetryConfig struct {
	LogLevel        string        `koanf:"log_level"`
	Tracing         bool          `koanf:"tracing"`
	SampleRatio     float64       `koanf:"sample_ratio"`
	Metrics         bool          `koanf:"metrics"`
	MetricsInterval time.Duration `koanf:"metrics_interval"`
	OTLPLogs        bool          `koanf:"otlp_logs"`
}

// legacyEnv maps the environment names used by earlier deployments.
var legacyEnv = map[string]string{
	"DYNAMODB_TABLE":     "store.target",
	"PROMETHEUS_GATEWAY": "metrics.sink_address",
}

func defaults() map[string]any {
	return map[string]any{
		"server.addr":                ":8080",
		"server.read_timeout":        "10s",
		"server.write_timeout":       "10s",
		"server.shutdown_timeout":    "5s",
		"store.backend":              "dynamodb",
		"store.target":               "calcburst-calculations",
		"store.region":               "",
		"store.redis_addr":           "localhost:6379",
		"metrics.sink_address":       "localhost:9091",
		"metrics.job":                "calcburst-metrics",
		"bridge.interval":            "5m",
		"bridge.window":              "5m",
		"bridge.function_name":       "calcburst-calculator",
		"bridge.api_name":            "CalcBurstAPI",
		"bridge.region":              "",
		"bridge.listen_addr":         ":9090",
		"telemetry.log_level":        "info",
		"telemetry.tracing":          true,
		"telemetry.sample_ratio":     1.0,
		"telemetry.metrics":          true,
		"telemetry.metrics_interval": "30s",
		"telemetry.otlp_logs":        false,
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// at configPath, then the environment. Later sources win.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// DYNAMODB_TABLE and PROMETHEUS_GATEWAY are honoured for compatibility;
	// prefixed variables loaded afterwards take precedence.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("load legacy env vars: %w", err)
	}

	// CALCBURST_STORE__TARGET=x overrides store.target
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "dynamodb", "redis", "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Target == "" {
		return fmt.Errorf("store.target is required")
	}
	if c.Metrics.SinkAddress == "" {
		return fmt.Errorf("metrics.sink_address is required")
	}
	if c.Bridge.Window <= 0 {
		return fmt.Errorf("bridge.window must be positive")
	}
	if c.Bridge.Interval <= 0 {
		return fmt.Errorf("bridge.interval must be positive")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sample_ratio must be between 0 and 1")
	}
	if c.Telemetry.Metrics && c.Telemetry.MetricsInterval <= 0 {
		return fmt.Errorf("telemetry.metrics_interval must be positive")
	}
	return nil
}
