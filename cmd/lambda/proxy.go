package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"calcburst/internal/calculator"
	"calcburst/internal/handlers"
	"calcburst/internal/observability"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// calculateFunc is satisfied by (*calculator.Handler).Handle.
type calculateFunc func(ctx context.Context, body io.Reader) calculator.Outcome

// flushFunc exports buffered telemetry before the invocation returns.
type flushFunc func(ctx context.Context) error

type invokeFunc func(context.Context, json.RawMessage) (events.APIGatewayProxyResponse, error)

// proxyHandler adapts the calculation handler to Lambda invocations.
func proxyHandler(h *calculator.Handler) invokeFunc {
	return newProxyHandler(h.Handle, observability.ForceFlush)
}

// newProxyHandler accepts either an API Gateway proxy event, whose body
// holds the request, or the calculation request itself as sent by a direct
// invoke. An event is a proxy event when it is an object with a "body" key.
func newProxyHandler(calculate calculateFunc, flush flushFunc) invokeFunc {
	return func(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
		body, gatewayID := requestBody(event)

		requestID := observability.RequestIDOrNew(gatewayID)
		ctx = observability.ContextWithRequestID(ctx, requestID)

		out := calculate(ctx, body)

		payload, err := json.Marshal(out.Body)
		if err != nil {
			out.Status = http.StatusInternalServerError
			payload, _ = json.Marshal(calculator.ErrorResponse{Error: "Internal server error"})
		}

		if err := flush(ctx); err != nil {
			observability.LoggerWithTrace(ctx).Warn("flush telemetry failed",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
		}

		headers := handlers.Headers()
		headers[observability.RequestIDHeader] = requestID

		return events.APIGatewayProxyResponse{
			StatusCode: out.Status,
			Headers:    headers,
			Body:       string(payload),
		}, nil
	}
}

// requestBody extracts the calculation payload from event and the gateway
// request id, if any.
func requestBody(event json.RawMessage) (io.Reader, string) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(event, &keys); err != nil {
		return bytes.NewReader(event), ""
	}
	if _, ok := keys["body"]; !ok {
		return bytes.NewReader(event), ""
	}

	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &req); err != nil {
		// a non-string body cannot be decoded as a request
		return strings.NewReader(""), ""
	}

	var body io.Reader = strings.NewReader(req.Body)
	if req.IsBase64Encoded {
		body = base64.NewDecoder(base64.StdEncoding, body)
	}
	return body, req.RequestContext.RequestID
}
