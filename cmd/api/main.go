// Package main serves the image API from Lambda behind an API Gateway HTTP API.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/kylejryan/image-upload-service/internal/app"
	"github.com/kylejryan/image-upload-service/internal/config"
	"github.com/kylejryan/image-upload-service/internal/lambdax"
	"github.com/kylejryan/image-upload-service/internal/logging"

	"github.com/aws/aws-lambda-go/lambda"
)

// main initializes the app and starts the Lambda handler.
func main() {
	logger := logging.CreateLogger()
	slog.SetDefault(logger)

	env, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	a, err := app.New(context.Background(), env, logger)
	if err != nil {
		log.Fatal(err)
	}
	lambda.Start(lambdax.Proxy(a.Router()))
}
