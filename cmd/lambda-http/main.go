package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"authenticity-backend/internal/analyses"
	"authenticity-backend/internal/bootstrap"
	"authenticity-backend/internal/shared/config"
	"authenticity-backend/internal/shared/telemetry"
)

var (
	initOnce  sync.Once
	initErr   error
	ginLambda *ginadapter.GinLambdaV2
)

func initApp() {
	cfg := config.Load()
	telemetry.Configure(cfg.LogLevel)
	app, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		telemetry.Error("bootstrap.failed", map[string]any{"error": err.Error()})
		return
	}
	ginLambda = ginadapter.NewV2(app.Router)
	telemetry.Info("lambda.cold_start", map[string]any{"env": cfg.Env})
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil || ginLambda == nil {
		return failedResponse(), nil
	}
	return ginLambda.ProxyWithContext(ctx, req)
}

// failedResponse mirrors the API's own 500 body so clients handle a broken
// cold start the same way as a failed analysis.
func failedResponse() events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(map[string]any{
		"error":        analyses.MessageInternal,
		"authenticity": 0,
		"status":       "error",
		"details":      analyses.MessageInternalDetails,
	})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
	}
}

func main() {
	lambda.Start(handler)
}
