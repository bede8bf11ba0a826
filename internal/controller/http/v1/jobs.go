package v1

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/internal/compression"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

// JobPublisher hands a queued job to the worker fleet.
type JobPublisher interface {
	PublishJob(ctx context.Context, msg entity.CompressionJobMessage) error
}

type jobRoutes struct {
	repo             *compression.CompressionRepository
	storage          entity.StorageRepository
	pub              JobPublisher
	uploadBucket     string
	compressedBucket string
	maxUpload        int64
	l                logger.Interface
}

func newJobRoutes(handler *gin.RouterGroup, limiterMW gin.HandlerFunc, repo *compression.CompressionRepository, storage entity.StorageRepository, pub JobPublisher, uploadBucket, compressedBucket string, maxUpload int64, l logger.Interface) {
	r := &jobRoutes{
		repo:             repo,
		storage:          storage,
		pub:              pub,
		uploadBucket:     uploadBucket,
		compressedBucket: compressedBucket,
		maxUpload:        maxUpload,
		l:                l,
	}

	h := handler.Group("/jobs")
	{
		h.POST("", limiterMW, r.submit)
		h.GET("/:id", r.status)
		h.GET("/:id/download", r.download)
	}
}

type jobAccepted struct {
	Ok     bool   `json:"ok"`
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type jobStatusResponse struct {
	Ok              bool       `json:"ok"`
	JobID           string     `json:"job_id"`
	Status          string     `json:"status"`
	Profile         string     `json:"profile"`
	OriginalBytes   int64      `json:"original_bytes"`
	CompressedBytes *int64     `json:"compressed_bytes,omitempty"`
	Error           *string    `json:"error,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// @Summary     Submit an async compression job
// @ID          submit-job
// @Tags  	    jobs
// @Accept      mpfd
// @Produce     json
// @Success     202 {object} jobAccepted
// @Failure     500 {object} errorEnvelope
// @Router      /api/jobs [post]
func (r *jobRoutes) submit(c *gin.Context) {
	ctx, span := otel.Tracer(traceName).Start(c.Request.Context(), "submit-job-api")
	defer span.End()

	up, ok := extractUpload(c, r.maxUpload)
	if !ok {
		return
	}

	jobID := uuid.New().String()
	inputKey := jobID + ".pdf"

	if err := r.storage.UploadObject(ctx, r.uploadBucket, inputKey, bytes.NewReader(up.data)); err != nil {
		r.l.Error(err, "http - v1 - submit - upload")
		errorResponse(c, http.StatusInternalServerError, kindStorageError,
			"Failed to store the uploaded file.")
		return
	}

	job := entity.CompressionJob{
		ID:                jobID,
		OriginalFilename:  up.filename,
		OriginalSizeBytes: int64(len(up.data)),
		Profile:           string(up.profile),
		KeepImages:        up.keepImages,
		Status:            entity.JobQueued,
	}
	if caller := callerFrom(c); caller != nil {
		job.CallerID = &caller.ID
	}
	if err := r.repo.CreateJob(ctx, &job); err != nil {
		r.l.Error(err, "http - v1 - submit - create")
		errorResponse(c, http.StatusInternalServerError, kindInternalError,
			"Failed to record the compression job.")
		return
	}

	msg := entity.CompressionJobMessage{
		JobID:      jobID,
		InputKey:   inputKey,
		Filename:   up.filename,
		Profile:    string(up.profile),
		KeepImages: up.keepImages,
	}
	if err := r.pub.PublishJob(ctx, msg); err != nil {
		r.l.Error(err, "http - v1 - submit - publish")
		if failErr := r.repo.FailJob(ctx, jobID, "could not enqueue job"); failErr != nil {
			r.l.Error(failErr, "http - v1 - submit - fail")
		}
		errorResponse(c, http.StatusInternalServerError, kindInternalError,
			"Failed to enqueue the compression job.")
		return
	}

	c.JSON(http.StatusAccepted, jobAccepted{Ok: true, JobID: jobID, Status: string(entity.JobQueued)})
}

// @Summary     Job status
// @ID          job-status
// @Tags  	    jobs
// @Produce     json
// @Success     200 {object} jobStatusResponse
// @Failure     404 {object} errorEnvelope
// @Router      /api/jobs/{id} [get]
func (r *jobRoutes) status(c *gin.Context) {
	job, ok := r.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, jobStatusResponse{
		Ok:              true,
		JobID:           job.ID,
		Status:          string(job.Status),
		Profile:         job.Profile,
		OriginalBytes:   job.OriginalSizeBytes,
		CompressedBytes: job.CompressedSizeBytes,
		Error:           job.ErrorMessage,
		CompletedAt:     job.CompletedAt,
	})
}

// @Summary     Download a finished job
// @ID          job-download
// @Tags  	    jobs
// @Produce     application/pdf
// @Success     200
// @Failure     404 {object} errorEnvelope
// @Failure     409 {object} errorEnvelope
// @Router      /api/jobs/{id}/download [get]
func (r *jobRoutes) download(c *gin.Context) {
	ctx, span := otel.Tracer(traceName).Start(c.Request.Context(), "download-job-api")
	defer span.End()

	job, ok := r.lookup(c)
	if !ok {
		return
	}

	if job.Status != entity.JobCompleted {
		errorResponse(c, http.StatusConflict, kindJobNotReady,
			"The compression job has not completed yet.")
		return
	}

	var buf bytes.Buffer
	if err := r.storage.DownloadObject(ctx, r.compressedBucket, job.ID+".pdf", &buf); err != nil {
		r.l.Error(err, "http - v1 - download")
		errorResponse(c, http.StatusInternalServerError, kindStorageError,
			"Failed to fetch the compressed file.")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+compression.DownloadName(job.OriginalFilename)+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (r *jobRoutes) lookup(c *gin.Context) (*entity.CompressionJob, bool) {
	job, err := r.repo.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorResponse(c, http.StatusNotFound, kindJobNotFound, "Unknown job id.")
			return nil, false
		}
		r.l.Error(err, "http - v1 - job lookup")
		errorResponse(c, http.StatusInternalServerError, kindInternalError,
			"An unexpected error occurred.")
		return nil, false
	}
	return job, true
}
