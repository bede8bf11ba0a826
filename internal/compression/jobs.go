package compression

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/internal/tempfiles"
	"github.com/mkatbalasd/PDFCompress/pkg/ghostscript"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

// JobProcessor executes queued compression jobs on the worker side:
// fetch the staged upload from blob storage, run the engine, store the
// result, and transition the job row.
type JobProcessor struct {
	tmp              *tempfiles.Manager
	engine           *ghostscript.Executor
	repo             *CompressionRepository
	storage          entity.StorageRepository
	uploadBucket     string
	compressedBucket string
	l                logger.Interface
}

func NewJobProcessor(tmp *tempfiles.Manager, engine *ghostscript.Executor, repo *CompressionRepository, storage entity.StorageRepository, uploadBucket, compressedBucket string, l logger.Interface) *JobProcessor {
	return &JobProcessor{
		tmp:              tmp,
		engine:           engine,
		repo:             repo,
		storage:          storage,
		uploadBucket:     uploadBucket,
		compressedBucket: compressedBucket,
		l:                l,
	}
}

// ProcessJob runs one job end to end. The returned error is for the
// consumer's logs; the caller-visible state lives on the job row.
// Failures are terminal: jobs are never retried, the caller resubmits.
func (p *JobProcessor) ProcessJob(ctx context.Context, msg entity.CompressionJobMessage) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "ProcessJob")
	defer span.End()
	span.SetAttributes(attribute.String("job_id", msg.JobID))

	if err := p.repo.MarkJobRunning(ctx, msg.JobID); err != nil {
		return errors.Wrap(err, "mark running")
	}

	_, preset, err := ghostscript.Resolve(msg.Profile)
	if err != nil {
		p.fail(ctx, msg.JobID, "invalid compression profile")
		return err
	}

	var buf bytes.Buffer
	if err := p.storage.DownloadObject(ctx, p.uploadBucket, msg.InputKey, &buf); err != nil {
		p.fail(ctx, msg.JobID, "could not fetch the uploaded file")
		return errors.Wrap(err, "download input")
	}

	input, err := p.tmp.Stage(&buf)
	if err != nil {
		p.fail(ctx, msg.JobID, "could not stage the uploaded file")
		return err
	}
	output := p.tmp.ReserveOutput()
	defer p.tmp.Release(input, output)

	compressedBytes, err := p.engine.Run(ctx, input.Path, preset, msg.KeepImages, output.Path)
	if err != nil {
		p.fail(ctx, msg.JobID, failMessage(err))
		return err
	}

	f, err := os.Open(output.Path)
	if err != nil {
		p.fail(ctx, msg.JobID, "could not read the compressed file")
		return err
	}
	uploadErr := p.storage.UploadObject(ctx, p.compressedBucket, msg.JobID+".pdf", f)
	f.Close()
	if uploadErr != nil {
		p.fail(ctx, msg.JobID, "could not store the compressed file")
		return errors.Wrap(uploadErr, "upload output")
	}

	if err := p.repo.CompleteJob(ctx, msg.JobID, compressedBytes); err != nil {
		return errors.Wrap(err, "complete job")
	}

	// The staged upload object is no longer needed.
	if err := p.storage.DeleteObject(ctx, p.uploadBucket, msg.InputKey); err != nil {
		p.l.Warn("could not remove input object %s: %s", msg.InputKey, err)
	}

	return nil
}

func (p *JobProcessor) fail(ctx context.Context, jobID, message string) {
	if err := p.repo.FailJob(ctx, jobID, message); err != nil {
		p.l.Error("marking job %s failed: %s", jobID, err)
	}
}

// failMessage renders a caller-safe classification; engine diagnostics
// stay in the worker logs.
func failMessage(err error) string {
	var engineErr *entity.EngineError
	switch {
	case stderrors.Is(err, entity.ErrEngineUnavailable):
		return "ghostscript is not available on the worker"
	case stderrors.Is(err, entity.ErrEngineTimeout):
		return "compression did not finish in time"
	case stderrors.As(err, &engineErr):
		return "ghostscript failed while compressing the file"
	default:
		return "compression failed"
	}
}
