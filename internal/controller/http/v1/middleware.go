package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/internal/auth"
	"github.com/mkatbalasd/PDFCompress/internal/ratelimit"
	"github.com/mkatbalasd/PDFCompress/internal/telemetry/metric"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

const callerContextKey = "caller"

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("X-Frame-Options", "DENY")
		header.Set("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

// requireAPIKey gates the API group. When keys are configured a missing
// or unknown X-API-Key aborts with 401; no temp file exists yet at this
// point. The resolved caller is stashed for downstream handlers.
func requireAPIKey(a *auth.Authenticator, l logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := a.Authenticate(c.Request.Context(), c.GetHeader("X-API-Key"))
		if err != nil {
			errorResponse(c, 401, kindUnauthorized,
				"A valid API key must be supplied via the X-API-Key header.")
			return
		}
		if caller != nil {
			c.Set(callerContextKey, caller)
		}
		c.Next()
	}
}

// rateLimit rejects over-quota clients before any staging happens.
func rateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), clientKey(c)) {
			metric.RateLimited.Inc()
			errorResponse(c, 429, kindRateLimited,
				"Too many requests, please try again later.")
			return
		}
		c.Next()
	}
}

// clientKey buckets authenticated callers by identity and anonymous
// clients by remote address.
func clientKey(c *gin.Context) string {
	if caller := callerFrom(c); caller != nil {
		return "caller:" + caller.ID
	}
	return "ip:" + c.ClientIP()
}

func callerFrom(c *gin.Context) *entity.Caller {
	if value, ok := c.Get(callerContextKey); ok {
		if caller, ok := value.(*entity.Caller); ok {
			return caller
		}
	}
	return nil
}
