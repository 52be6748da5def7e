// Package main finalizes an upload after the S3 PUT by running completion for
// every ObjectCreated event under images/.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"

	"github.com/kylejryan/image-upload-service/internal/app"
	"github.com/kylejryan/image-upload-service/internal/config"
	"github.com/kylejryan/image-upload-service/internal/images"
	"github.com/kylejryan/image-upload-service/internal/logging"
	"github.com/kylejryan/image-upload-service/internal/s3io"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

type completer interface {
	Complete(ctx context.Context, imageID string) (images.View, error)
}

// Indexer holds the service used to confirm uploads.
type Indexer struct {
	svc completer
	log *slog.Logger
}

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
	idx := &Indexer{svc: a.Service, log: logger}
	lambda.Start(idx.handler)
}

// ---- Handler ----

// handler processes S3 event records; a failing record does not fail the batch.
func (x *Indexer) handler(ctx context.Context, ev events.S3Event) error {
	for _, rec := range ev.Records {
		if err := x.processS3Record(ctx, rec); err != nil {
			x.log.ErrorContext(ctx, "indexer: process error", "key", rec.S3.Object.Key, "error", err)
		}
	}
	return nil
}

// processS3Record completes the image referenced by a single S3 event record.
func (x *Indexer) processS3Record(ctx context.Context, record events.S3EventRecord) error {
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return fmt.Errorf("bad key %q: %w", record.S3.Object.Key, err)
	}
	imageID, ok := s3io.ParseKey(key)
	if !ok {
		x.log.InfoContext(ctx, "indexer: skipping key outside images/", "key", key)
		return nil
	}

	v, err := x.svc.Complete(ctx, imageID)
	if err != nil {
		return fmt.Errorf("complete %s: %w", imageID, err)
	}

	x.log.InfoContext(ctx, "finalized upload",
		"image_id", imageID, "status", v.Image.Status, "size", v.Image.Size, "etag", v.Image.ETag)
	return nil
}
