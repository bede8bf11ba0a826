// Package v1 implements the HTTP surface of the compression service.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/mkatbalasd/PDFCompress/config"
	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/internal/auth"
	"github.com/mkatbalasd/PDFCompress/internal/compression"
	"github.com/mkatbalasd/PDFCompress/internal/ratelimit"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

const traceName = "http-v1"

// Deps bundles everything the router wires into handlers. Repo,
// Publisher and Storage may be nil: the async job endpoints are then
// not registered and the service runs purely synchronous.
type Deps struct {
	Config    *config.Config
	Usecase   *compression.CompressionUsecase
	Limiter   *ratelimit.Limiter
	Auth      *auth.Authenticator
	Repo      *compression.CompressionRepository
	Publisher JobPublisher
	Storage   entity.StorageRepository
}

// NewRouter -.
func NewRouter(handler *gin.Engine, l logger.Interface, deps Deps) {
	handler.Use(gin.Recovery())
	handler.Use(securityHeaders())

	handler.GET("/healthz", healthz(deps))
	handler.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limiterMW := rateLimit(deps.Limiter)

	api := handler.Group("/api", requireAPIKey(deps.Auth, l))
	{
		api.GET("/version", version(deps.Config))

		newCompressionRoutes(api, limiterMW, deps.Usecase, deps.Config.Limits.MaxUploadBytes, l)

		if deps.Repo != nil && deps.Publisher != nil && deps.Storage != nil {
			newJobRoutes(api, limiterMW, deps.Repo, deps.Storage, deps.Publisher,
				deps.Config.S3.UploadBucket, deps.Config.S3.CompressedBucket,
				deps.Config.Limits.MaxUploadBytes, l)
		}
	}
}

// @Summary     Engine health
// @ID          healthz
// @Tags  	    status
// @Produce     json
// @Success     200
// @Failure     503
// @Router      /healthz [get]
func healthz(deps Deps) gin.HandlerFunc {
	engine := deps.Usecase.Engine()
	appVersion := deps.Config.App.Version

	return func(c *gin.Context) {
		payload := gin.H{
			"status":      "ok",
			"ghostscript": engine.Command(),
			"version":     appVersion,
		}

		if !engine.Available() {
			payload["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, payload)
			return
		}

		c.JSON(http.StatusOK, payload)
	}
}

// @Summary     Build metadata
// @ID          version
// @Tags  	    status
// @Produce     json
// @Success     200
// @Router      /api/version [get]
func version(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := gin.H{"version": cfg.App.Version}
		if cfg.App.Commit != "" {
			payload["commit"] = cfg.App.Commit
		}
		if cfg.App.BuildTime != "" {
			payload["build_time"] = cfg.App.BuildTime
		}
		c.JSON(http.StatusOK, payload)
	}
}
