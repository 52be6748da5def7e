package s3io_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kylejryan/image-upload-service/internal/awsfake"
	"github.com/kylejryan/image-upload-service/internal/s3io"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() (*s3io.Store, *awsfake.S3) {
	fake := awsfake.NewS3("http://localstack:4566")
	return &s3io.Store{API: fake, Presigner: fake, Bucket: "images-bucket"}, fake
}

func TestBuildAndParseKey(t *testing.T) {
	assert.Equal(t, "images/abc", s3io.BuildKey("abc"))

	tests := []struct {
		key    string
		wantID string
		wantOK bool
	}{
		{"images/abc", "abc", true},
		{"images/", "", false},
		{"user/u1/abc.txt", "", false},
		{"images/a/b", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			id, ok := s3io.ParseKey(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestPresignPut(t *testing.T) {
	store, _ := newStore()
	url, ttl, err := store.PresignPut(context.Background(), "images/abc", "image/png", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)
	assert.True(t, strings.HasPrefix(url, "http://localstack:4566/images-bucket/images/abc?"), url)
	assert.Contains(t, url, "X-Amz-Expires=300")
}

func TestPresignRewritesInternalHost(t *testing.T) {
	store, _ := newStore()
	store.InternalEndpoint = "http://localstack:4566"
	store.PublicEndpoint = "http://localhost:4566/"

	url, _, err := store.PresignGet(context.Background(), "images/abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:4566/images-bucket/images/abc?"), url)
}

func TestPresignError(t *testing.T) {
	store, fake := newStore()
	fake.Err["PresignPutObject"] = errors.New("no credentials")
	_, _, err := store.PresignPut(context.Background(), "images/abc", "image/png", time.Minute)
	assert.Error(t, err)
}

func TestHead(t *testing.T) {
	store, fake := newStore()
	fake.PutObjectBytes("images-bucket", "images/abc", "image/png", []byte("1234567890"))

	info, err := store.Head(context.Background(), "images/abc")
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size)
	assert.Equal(t, "image/png", info.ContentType)
	assert.NotEmpty(t, info.ETag)
	assert.NotContains(t, info.ETag, "\"")
}

func TestHeadMissing(t *testing.T) {
	store, _ := newStore()
	_, err := store.Head(context.Background(), "images/missing")
	assert.ErrorIs(t, err, s3io.ErrNotFound)
}

func TestHeadOtherError(t *testing.T) {
	store, fake := newStore()
	fake.Err["HeadObject"] = errors.New("access denied")
	_, err := store.Head(context.Background(), "images/abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, s3io.ErrNotFound)
}

func TestDelete(t *testing.T) {
	store, fake := newStore()
	fake.PutObjectBytes("images-bucket", "images/abc", "image/png", []byte("x"))

	require.NoError(t, store.Delete(context.Background(), "images/abc"))
	assert.False(t, fake.Has("images-bucket", "images/abc"))
	require.NoError(t, store.Delete(context.Background(), "images/abc"))
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", s3io.ErrNotFound, true},
		{"api 404", &smithy.GenericAPIError{Code: "404"}, true},
		{"api NoSuchKey", &smithy.GenericAPIError{Code: "NoSuchKey"}, true},
		{"api AccessDenied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s3io.IsNotFound(tt.err))
		})
	}
}
