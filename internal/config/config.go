// Package config loads configuration from environment variables and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Env holds the configuration values for the application.
type Env struct {
	Region         string
	Bucket         string
	Table          string
	PresignPutTTL  time.Duration
	PresignGetTTL  time.Duration
	MaxUploadSize  int64
	Endpoint       string // AWS_ENDPOINT_URL, e.g. http://localstack:4566
	PublicEndpoint string // host presigned URLs are rewritten to when Endpoint is set
	HTTPAddr       string
	AllowedOrigins []string
}

// Load reads .env (if present) and the environment. Numeric settings must be
// positive integers.
func Load() (Env, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: could not read .env", "error", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds an Env using lookup in place of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Env, error) {
	l := loader{lookup: lookup}
	e := Env{
		Region:         l.get("AWS_REGION", "us-east-1"),
		Bucket:         l.get("S3_BUCKET", "montycloud-images"),
		Table:          l.get("DDB_TABLE", "Images"),
		PresignPutTTL:  time.Duration(l.positive("PRESIGNED_PUT_EXPIRES", 300)) * time.Second,
		PresignGetTTL:  time.Duration(l.positive("PRESIGNED_GET_EXPIRES", 300)) * time.Second,
		MaxUploadSize:  l.positive("MAX_UPLOAD_SIZE", 10*1024*1024),
		Endpoint:       l.get("AWS_ENDPOINT_URL", ""),
		PublicEndpoint: l.get("PUBLIC_ENDPOINT_URL", ""),
		HTTPAddr:       l.get("HTTP_ADDR", "0.0.0.0:8080"),
		AllowedOrigins: splitCSV(l.get("CORS_ALLOWED_ORIGINS", "*")),
	}
	if l.err != nil {
		return Env{}, l.err
	}
	return e, nil
}

type loader struct {
	lookup func(string) (string, bool)
	err    error
}

// get returns the value of the environment variable k or def if not set.
func (l *loader) get(k, def string) string {
	if v, ok := l.lookup(k); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// positive parses k as an integer >= 1, recording the first failure.
func (l *loader) positive(k string, def int64) int64 {
	raw := l.get(k, "")
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err == nil && n < 1 {
		err = fmt.Errorf("must be >= 1")
	}
	if err != nil {
		if l.err == nil {
			l.err = fmt.Errorf("invalid env %s=%q: %w", k, raw, err)
		}
		return def
	}
	return n
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
