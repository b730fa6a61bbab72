package main

import (
	"flag"
	"os"

	"calcburst/internal/config"
)

// loadConfig reads .env, then the YAML file named by -config (or
// CALCBURST_CONFIG), then the environment.
func loadConfig() (*config.Config, error) {
	configPath := flag.String("config", os.Getenv("CALCBURST_CONFIG"), "path to a YAML config file")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	return config.Load(*configPath)
}
