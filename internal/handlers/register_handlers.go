package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/middleware"
	"github.com/SscSPs/statement_importer/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RouteOptions carries the optional pieces of the HTTP surface.
type RouteOptions struct {
	// UploadMiddleware runs before the statement upload handler only.
	UploadMiddleware []gin.HandlerFunc
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	setupAPIV1Routes(r, cfg, services, opts)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerImportRoutes(v1, services.Import, services.ImportBatch, cfg.MaxUploadBytes, opts.UploadMiddleware...)
	RegisterBatchRoutes(v1, services.ImportBatch)
	RegisterFxRateRoutes(v1, services.FxRate)
}
