// Command bridge copies CloudWatch metrics for the calculation service into
// a Prometheus Pushgateway.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "calcburst-bridge",
	Short:        "Republish CloudWatch metrics to a Prometheus Pushgateway",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CALCBURST_CONFIG"), "path to a YAML config file")

	rootCmd.AddCommand(runCmd, serveCmd, lambdaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
