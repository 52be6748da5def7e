package server

import (
	"log/slog"
	"time"

	"github.com/kylejryan/image-upload-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-Id"

const requestIDKey = "request_id"

// RequestID propagates an inbound X-Request-Id or assigns a fresh ULID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog writes one log line per request and counts it in obs.
func AccessLog(logger *slog.Logger, obs *metrics.Observer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		obs.ObserveHTTPRequest(c.Request.Method, route, status)

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000.0),
			slog.String("request_id", c.GetString(requestIDKey)),
		)
	}
}
