// Package awsutil provides utilities for loading AWS configuration and clients.
package awsutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Load loads the AWS configuration for region.
func Load(ctx context.Context, region string) (aws.Config, error) {
	return awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region))
}

// NewS3 builds an S3 client; a non-empty endpoint (e.g. http://localstack:4566)
// overrides the service URL and switches to path-style addressing.
func NewS3(cfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // localstack/dev friendliness
		}
	})
}

// NewDynamoDB builds a DynamoDB client, honoring an endpoint override.
func NewDynamoDB(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}
