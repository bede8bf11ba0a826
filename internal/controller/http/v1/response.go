package v1

import "github.com/gin-gonic/gin"

// Error kinds of the API envelope. Clients match on these, not on the
// human-readable detail.
const (
	kindMissingFile          = "missing_file"
	kindInvalidProfile       = "invalid_profile"
	kindUnauthorized         = "unauthorized"
	kindPayloadTooLarge      = "payload_too_large"
	kindUnsupportedMediaType = "unsupported_media_type"
	kindRateLimited          = "rate_limited"
	kindStorageError         = "storage_error"
	kindEngineError          = "ghostscript_error"
	kindEngineUnavailable    = "ghostscript_unavailable"
	kindEngineTimeout        = "ghostscript_timeout"
	kindJobNotFound          = "job_not_found"
	kindJobNotReady          = "job_not_ready"
	kindInternalError        = "internal_error"
)

type errorEnvelope struct {
	Ok     bool   `json:"ok"`
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func errorResponse(c *gin.Context, code int, kind, detail string) {
	c.AbortWithStatusJSON(code, errorEnvelope{Ok: false, Error: kind, Detail: detail})
}
