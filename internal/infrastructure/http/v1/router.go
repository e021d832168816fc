// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"jobboard/internal/infrastructure/http/v1/handlers"
	"jobboard/internal/infrastructure/http/v1/middleware"
	"jobboard/internal/metadata"
	"jobboard/pkg/logger"
)

// RouterConfig holds the dependencies of the API.
type RouterConfig struct {
	Logger *logger.Logger

	// JobPosts lists job posts through the filter compiler.
	JobPosts handlers.JobPostLister

	// Compiler and SQL back the explain endpoint. SQL is optional.
	Compiler handlers.FilterCompiler
	SQL      handlers.SQLRenderer

	MetadataRegistry *metadata.Registry
	Attributes       handlers.AttributeLister

	Health *handlers.HealthHandler

	// Compression enables zstd responses for clients that accept them.
	Compression       bool
	CompressThreshold int
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Order matters: Recovery writes into the compressed buffer.
	router.Use(middleware.Trace())
	if cfg.Compression {
		compress, err := middleware.Compress(cfg.CompressThreshold)
		if err != nil {
			return nil, err
		}
		router.Use(compress)
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger(cfg.Logger, "/health/live", "/health/ready"))
	router.Use(middleware.ErrorHandler())

	if cfg.Health != nil {
		health := router.Group("/health")
		health.GET("/live", cfg.Health.Live)
		health.GET("/ready", cfg.Health.Ready)
		health.GET("/info", cfg.Health.Info)
	}

	base := handlers.NewBaseHandler()
	api := router.Group("/api/v1")

	RegisterListRoutes(api.Group("/job-posts"), handlers.NewJobPostHandler(base, cfg.JobPosts))

	filters := handlers.NewFilterHandler(base, cfg.Compiler, cfg.SQL)
	api.POST("/filters/explain", filters.Explain)

	meta := handlers.NewMetadataHandler(base, cfg.MetadataRegistry, cfg.Attributes)
	api.GET("/meta", meta.ListEntities)
	api.GET("/meta/job-posts", meta.JobPosts)
	api.GET("/meta/:name", meta.GetEntity)

	return router, nil
}
