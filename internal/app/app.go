// Package app wires configuration, AWS clients and the image service together
// for the process entrypoints.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kylejryan/image-upload-service/internal/awsutil"
	"github.com/kylejryan/image-upload-service/internal/config"
	"github.com/kylejryan/image-upload-service/internal/ddb"
	"github.com/kylejryan/image-upload-service/internal/images"
	"github.com/kylejryan/image-upload-service/internal/metrics"
	"github.com/kylejryan/image-upload-service/internal/s3io"
	"github.com/kylejryan/image-upload-service/internal/server"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
)

// App holds the application state, including configuration and AWS-backed stores.
type App struct {
	Env     config.Env
	Logger  *slog.Logger
	Service *images.Service
	Metrics *metrics.Observer
}

// New loads AWS configuration for env and builds the service.
func New(ctx context.Context, env config.Env, logger *slog.Logger) (*App, error) {
	cfg, err := awsutil.Load(ctx, env.Region)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	obs, err := metrics.NewObserver("image_service", promclient.DefaultRegisterer)
	if err != nil {
		return nil, err
	}

	s3c := awsutil.NewS3(cfg, env.Endpoint)
	repo := &ddb.Repo{
		DB:       awsutil.NewDynamoDB(cfg, env.Endpoint),
		Table:    env.Table,
		Observer: obs,
	}
	store := &s3io.Store{
		API:              s3c,
		Presigner:        s3.NewPresignClient(s3c),
		Bucket:           env.Bucket,
		InternalEndpoint: env.Endpoint,
		PublicEndpoint:   env.PublicEndpoint,
		Observer:         obs,
	}
	svc := images.New(repo, store, images.Options{
		PutTTL:        env.PresignPutTTL,
		GetTTL:        env.PresignGetTTL,
		MaxUploadSize: env.MaxUploadSize,
		Logger:        logger,
	})

	logger.Info("image service configured",
		"region", env.Region, "bucket", env.Bucket, "table", env.Table,
		"endpoint", env.Endpoint, "max_upload_size", env.MaxUploadSize)
	return &App{Env: env, Logger: logger, Service: svc, Metrics: obs}, nil
}

// Router returns the HTTP adapter for the service.
func (a *App) Router() *gin.Engine {
	return server.NewRouter(a.Service, server.Options{
		Logger:         a.Logger,
		Metrics:        a.Metrics,
		Gatherer:       promclient.DefaultGatherer,
		AllowedOrigins: a.Env.AllowedOrigins,
	})
}
