// Package server exposes the image service over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kylejryan/image-upload-service/internal/images"
	"github.com/kylejryan/image-upload-service/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the router. All fields are optional.
type Options struct {
	Logger         *slog.Logger
	Metrics        *metrics.Observer
	Gatherer       promclient.Gatherer // serves /metrics when set
	AllowedOrigins []string
	Debug          bool
}

// NewRouter creates the gin engine with all endpoints registered.
func NewRouter(svc *images.Service, opts Options) *gin.Engine {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(AccessLog(logger, opts.Metrics))
	engine.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	h := &Handler{svc: svc}

	engine.GET("/healthz", h.Health)
	if opts.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := engine.Group("/v1/images")
	v1.POST("", h.Initiate)
	v1.GET("", h.List)
	v1.POST("/:image_id/complete", h.Complete)
	v1.GET("/:image_id", h.Fetch)
	v1.DELETE("/:image_id", h.Delete)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if strings.Contains(o, "*") {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
