package v1

import (
	"errors"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/internal/compression"
	"github.com/mkatbalasd/PDFCompress/internal/telemetry/metric"
	"github.com/mkatbalasd/PDFCompress/pkg/ghostscript"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

// multipartOverhead is the slack on top of the upload limit granted to
// form boundaries and small extra fields.
const multipartOverhead = 64 * 1024

type compressionRoutes struct {
	uc        *compression.CompressionUsecase
	maxUpload int64
	l         logger.Interface
}

func newCompressionRoutes(handler *gin.RouterGroup, limiterMW gin.HandlerFunc, uc *compression.CompressionUsecase, maxUpload int64, l logger.Interface) {
	r := &compressionRoutes{uc: uc, maxUpload: maxUpload, l: l}

	handler.POST("/compress", limiterMW, r.compress)
}

type compressionSummary struct {
	Ok              bool    `json:"ok"`
	OriginalBytes   int64   `json:"original_bytes"`
	CompressedBytes int64   `json:"compressed_bytes"`
	Ratio           float64 `json:"ratio"`
	Profile         string  `json:"profile"`
	RequestID       string  `json:"request_id"`
}

// @Summary     Compress a PDF
// @Description Compresses an uploaded PDF with Ghostscript and returns the document or a JSON summary depending on Accept
// @ID          compress
// @Tags  	    compression
// @Accept      mpfd
// @Produce     json
// @Produce     application/pdf
// @Param       file formData file true "PDF document"
// @Param       profile formData string false "low, medium or high"
// @Param       keep_images formData string false "disable image downsampling"
// @Success     200
// @Failure     400 {object} errorEnvelope
// @Failure     401 {object} errorEnvelope
// @Failure     413 {object} errorEnvelope
// @Failure     415 {object} errorEnvelope
// @Failure     429 {object} errorEnvelope
// @Failure     500 {object} errorEnvelope
// @Failure     503 {object} errorEnvelope
// @Router      /api/compress [post]
func (r *compressionRoutes) compress(c *gin.Context) {
	ctx, span := otel.Tracer(traceName).Start(c.Request.Context(), "compress-api")
	defer span.End()

	up, ok := extractUpload(c, r.maxUpload)
	if !ok {
		return
	}

	req := entity.CompressionRequest{
		Data:       up.data,
		Filename:   up.filename,
		Profile:    up.profile,
		KeepImages: up.keepImages,
		Caller:     callerFrom(c),
		RequestID:  uuid.New().String(),
	}

	start := time.Now()
	outcome, cleanup, err := r.uc.Compress(ctx, req)
	defer cleanup()
	metric.CompressionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		r.l.Error(err, "http - v1 - compress")
		metric.CompressionsTotal.WithLabelValues(string(req.Profile), statusLabel(err)).Inc()
		compressionErrorResponse(c, err)
		return
	}

	metric.CompressionsTotal.WithLabelValues(string(req.Profile), "ok").Inc()
	if saved := outcome.OriginalBytes - outcome.CompressedBytes; saved > 0 {
		metric.BytesSaved.Add(float64(saved))
	}

	if wantsJSON(c.GetHeader("Accept")) {
		c.JSON(http.StatusOK, compressionSummary{
			Ok:              true,
			OriginalBytes:   outcome.OriginalBytes,
			CompressedBytes: outcome.CompressedBytes,
			Ratio:           math.Round(outcome.Ratio()*10000) / 10000,
			Profile:         string(outcome.Profile),
			RequestID:       outcome.RequestID,
		})
		return
	}

	c.FileAttachment(outcome.Output.Path, outcome.DownloadName)
}

// compressionErrorResponse maps usecase failures to the API envelope.
// Engine diagnostics stay in the logs; clients get generic detail.
func compressionErrorResponse(c *gin.Context, err error) {
	var stagingErr *entity.StagingError
	var engineErr *entity.EngineError

	switch {
	case errors.Is(err, entity.ErrInvalidProfile):
		errorResponse(c, http.StatusBadRequest, kindInvalidProfile,
			"Profile must be one of: low, medium, high.")
	case errors.As(err, &stagingErr):
		errorResponse(c, http.StatusInternalServerError, kindStorageError,
			"Failed to save the uploaded file.")
	case errors.Is(err, entity.ErrEngineUnavailable):
		errorResponse(c, http.StatusServiceUnavailable, kindEngineUnavailable,
			"Ghostscript is not available on the server. Please install it and ensure it can be executed.")
	case errors.Is(err, entity.ErrEngineTimeout):
		errorResponse(c, http.StatusGatewayTimeout, kindEngineTimeout,
			"Compression did not finish in time.")
	case errors.As(err, &engineErr):
		errorResponse(c, http.StatusInternalServerError, kindEngineError,
			"Ghostscript failed while compressing the file.")
	default:
		errorResponse(c, http.StatusInternalServerError, kindInternalError,
			"An unexpected error occurred.")
	}
}

func statusLabel(err error) string {
	var engineErr *entity.EngineError
	switch {
	case errors.Is(err, entity.ErrEngineUnavailable):
		return "unavailable"
	case errors.Is(err, entity.ErrEngineTimeout):
		return "timeout"
	case errors.As(err, &engineErr):
		return "failed"
	default:
		return "error"
	}
}

type upload struct {
	data       []byte
	filename   string
	profile    entity.Profile
	keepImages bool
}

// extractUpload parses and validates the multipart form shared by the
// sync and async endpoints. On failure it writes the error envelope and
// returns ok=false. Validation happens before any temp file exists.
func extractUpload(c *gin.Context, maxUpload int64) (upload, bool) {
	if c.Request.ContentLength > maxUpload+multipartOverhead {
		payloadTooLarge(c, maxUpload)
		return upload{}, false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			payloadTooLarge(c, maxUpload)
			return upload{}, false
		}
		errorResponse(c, http.StatusBadRequest, kindMissingFile,
			"A PDF file must be provided in the 'file' form field.")
		return upload{}, false
	}
	if fh.Size == 0 {
		errorResponse(c, http.StatusBadRequest, kindMissingFile,
			"The uploaded file is empty.")
		return upload{}, false
	}
	if fh.Size > maxUpload {
		payloadTooLarge(c, maxUpload)
		return upload{}, false
	}

	profile, _, err := ghostscript.Resolve(c.PostForm("profile"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, kindInvalidProfile,
			"Profile must be one of: low, medium, high.")
		return upload{}, false
	}

	if strings.ToLower(filepath.Ext(fh.Filename)) != ".pdf" {
		unsupportedMedia(c)
		return upload{}, false
	}

	f, err := fh.Open()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, kindStorageError,
			"Failed to read the uploaded file.")
		return upload{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, kindStorageError,
			"Failed to read the uploaded file.")
		return upload{}, false
	}

	if !mimetype.Detect(data).Is("application/pdf") {
		unsupportedMedia(c)
		return upload{}, false
	}

	return upload{
		data:       data,
		filename:   fh.Filename,
		profile:    profile,
		keepImages: truthyFlag(c.PostForm("keep_images")),
	}, true
}

func payloadTooLarge(c *gin.Context, maxUpload int64) {
	limitMiB := float64(maxUpload) / (1024 * 1024)

	display := strconv.FormatFloat(limitMiB, 'f', 2, 64)
	if limitMiB == math.Trunc(limitMiB) {
		display = strconv.FormatInt(int64(limitMiB), 10)
	}

	errorResponse(c, http.StatusRequestEntityTooLarge, kindPayloadTooLarge,
		"The uploaded file exceeds the "+display+" MiB limit.")
}

func unsupportedMedia(c *gin.Context) {
	errorResponse(c, http.StatusUnsupportedMediaType, kindUnsupportedMediaType,
		"Only PDF documents are supported for compression.")
}

// Checkbox-style form values.
func truthyFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
