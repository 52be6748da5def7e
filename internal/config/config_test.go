package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	e, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", e.Region)
	assert.Equal(t, "montycloud-images", e.Bucket)
	assert.Equal(t, "Images", e.Table)
	assert.Equal(t, 300*time.Second, e.PresignPutTTL)
	assert.Equal(t, 300*time.Second, e.PresignGetTTL)
	assert.Equal(t, int64(10*1024*1024), e.MaxUploadSize)
	assert.Equal(t, "", e.Endpoint)
	assert.Equal(t, "0.0.0.0:8080", e.HTTPAddr)
	assert.Equal(t, []string{"*"}, e.AllowedOrigins)
}

func TestOverrides(t *testing.T) {
	e, err := FromLookup(lookupFrom(map[string]string{
		"AWS_REGION":            "eu-west-1",
		"S3_BUCKET":             "b",
		"DDB_TABLE":             "t",
		"PRESIGNED_PUT_EXPIRES": "60",
		"PRESIGNED_GET_EXPIRES": " 120 ",
		"MAX_UPLOAD_SIZE":       "5",
		"AWS_ENDPOINT_URL":      "http://localstack:4566",
		"PUBLIC_ENDPOINT_URL":   "http://localhost:4566",
		"CORS_ALLOWED_ORIGINS":  "http://a, http://b,",
	}))
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", e.Region)
	assert.Equal(t, "b", e.Bucket)
	assert.Equal(t, "t", e.Table)
	assert.Equal(t, time.Minute, e.PresignPutTTL)
	assert.Equal(t, 2*time.Minute, e.PresignGetTTL)
	assert.Equal(t, int64(5), e.MaxUploadSize)
	assert.Equal(t, "http://localstack:4566", e.Endpoint)
	assert.Equal(t, "http://localhost:4566", e.PublicEndpoint)
	assert.Equal(t, []string{"http://a", "http://b"}, e.AllowedOrigins)
}

func TestInvalidNumbers(t *testing.T) {
	tests := map[string]string{
		"PRESIGNED_PUT_EXPIRES": "abc",
		"PRESIGNED_GET_EXPIRES": "0",
		"MAX_UPLOAD_SIZE":       "-1",
	}
	for k, v := range tests {
		t.Run(k, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(map[string]string{k: v}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), k)
		})
	}
}
