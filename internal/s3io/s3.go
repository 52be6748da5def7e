// Package s3io provides utilities for working with S3: presigning URLs,
// checking object existence and removing objects.
package s3io

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kylejryan/image-upload-service/internal/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrNotFound is returned when the object does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// Presigner defines the interface for presigning S3 requests.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// API is the subset of the S3 client used by Store.
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ObjectInfo holds the S3 object metadata needed to confirm an upload.
type ObjectInfo struct {
	Size        int64
	ETag        string
	ContentType string
}

// Store wraps an S3 client, presigner and bucket for image objects.
type Store struct {
	API       API
	Presigner Presigner
	Bucket    string

	// When both are set, presigned URLs issued against InternalEndpoint are
	// rewritten to PublicEndpoint (e.g. http://localstack:4566 -> http://localhost:4566).
	InternalEndpoint string
	PublicEndpoint   string

	Observer metrics.StoreObserver
}

// PresignPut generates a presigned URL for uploading an object with the given content type.
func (s *Store) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (_ string, _ time.Duration, err error) {
	defer s.observe("presign_put", time.Now(), &err)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	req, err := s.Presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) { o.Expires = ttl })
	if err != nil {
		return "", 0, err
	}
	return s.publicURL(req.URL), ttl, nil
}

// PresignGet generates a presigned URL for downloading an object. It does not
// check that the object exists; callers that care use Head first.
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (_ string, _ time.Duration, err error) {
	defer s.observe("presign_get", time.Now(), &err)

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}
	req, err := s.Presigner.PresignGetObject(ctx, input, func(o *s3.PresignOptions) { o.Expires = ttl })
	if err != nil {
		return "", 0, err
	}
	return s.publicURL(req.URL), ttl, nil
}

// Head fetches object metadata, returning ErrNotFound if the object is absent.
func (s *Store) Head(ctx context.Context, key string) (info ObjectInfo, err error) {
	defer s.observe("head", time.Now(), &err)

	ho, err := s.API.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if IsNotFound(err) {
			return info, ErrNotFound
		}
		return info, err
	}
	if ho.ContentLength != nil {
		info.Size = *ho.ContentLength
	}
	if ho.ETag != nil {
		info.ETag = strings.Trim(*ho.ETag, "\"")
	}
	if ho.ContentType != nil {
		info.ContentType = *ho.ContentType
	}
	return info, nil
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (s *Store) Delete(ctx context.Context, key string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	_, err = s.API.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	return err
}

// IsNotFound reports whether err is an S3 missing-object error.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "404", "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

func (s *Store) publicURL(u string) string {
	if s.InternalEndpoint == "" || s.PublicEndpoint == "" {
		return u
	}
	internal := strings.TrimSuffix(s.InternalEndpoint, "/")
	public := strings.TrimSuffix(s.PublicEndpoint, "/")
	if strings.HasPrefix(u, internal) {
		return public + strings.TrimPrefix(u, internal)
	}
	return u
}

func (s *Store) observe(op string, start time.Time, errp *error) {
	if s.Observer == nil {
		return
	}
	err := *errp
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	s.Observer.ObserveStoreOp("s3", op, time.Since(start), err)
}
