package main

import (
	"context"
	"encoding/json"
	"net/http"

	"calcburst/internal/bridge"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as a scheduled AWS Lambda function",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, _, flush, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer flush()

		lambda.Start(exportHandler(b))
		return nil
	},
}

// exportResult mirrors a Lambda proxy response so the scheduler's logs show
// the outcome of each run.
type exportResult struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func exportHandler(b *bridge.Bridge) func(context.Context) (exportResult, error) {
	return func(ctx context.Context) (exportResult, error) {
		snap, err := b.Run(ctx)
		if err != nil {
			body, _ := json.Marshal(map[string]string{"error": err.Error()})
			return exportResult{StatusCode: http.StatusInternalServerError, Body: string(body)}, nil
		}

		body, err := json.Marshal(bridge.ExportResponse{
			Message: "Metrics exported successfully",
			Metrics: snap,
		})
		if err != nil {
			return exportResult{}, err
		}
		return exportResult{StatusCode: http.StatusOK, Body: string(body)}, nil
	}
}
