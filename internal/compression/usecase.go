package compression

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/internal/tempfiles"
	"github.com/mkatbalasd/PDFCompress/pkg/ghostscript"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

const traceName = "compression-usecase"

const defaultDownloadName = "document"

// CompressionUsecase drives one compression: stage the upload, invoke
// the engine, account the result. Temp files are owned here and handed
// back to the caller through an idempotent cleanup closure so they can
// outlive the call just long enough to stream the response.
type CompressionUsecase struct {
	tmp    *tempfiles.Manager
	engine *ghostscript.Executor
	repo   *CompressionRepository
	l      logger.Interface
}

// NewCompressionUsecase -. repo may be nil; accounting is then skipped.
func NewCompressionUsecase(tmp *tempfiles.Manager, engine *ghostscript.Executor, repo *CompressionRepository, l logger.Interface) *CompressionUsecase {
	return &CompressionUsecase{tmp: tmp, engine: engine, repo: repo, l: l}
}

// Engine exposes the executor for health checks.
func (uc *CompressionUsecase) Engine() *ghostscript.Executor { return uc.engine }

// Compress runs one synchronous compression. The returned cleanup is
// never nil, is safe to call more than once, and must be deferred by
// the caller; failure paths inside Compress release eagerly as well, so
// temp files are gone on every exit.
func (uc *CompressionUsecase) Compress(ctx context.Context, req entity.CompressionRequest) (*entity.CompressionOutcome, func(), error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Compress")
	defer span.End()
	span.SetAttributes(attribute.String("profile", string(req.Profile)))

	cleanup := func() {}

	_, preset, err := ghostscript.Resolve(string(req.Profile))
	if err != nil {
		return nil, cleanup, err
	}

	input, err := uc.tmp.Stage(bytes.NewReader(req.Data))
	if err != nil {
		return nil, cleanup, err
	}

	output := uc.tmp.ReserveOutput()
	cleanup = func() { uc.tmp.Release(input, output) }

	compressedBytes, err := uc.engine.Run(ctx, input.Path, preset, req.KeepImages, output.Path)
	if err != nil {
		cleanup()
		uc.record(ctx, req, input.Size, nil, err)
		return nil, cleanup, err
	}

	outcome := &entity.CompressionOutcome{
		Output:          entity.StagedFile{Path: output.Path, Size: compressedBytes},
		DownloadName:    DownloadName(req.Filename),
		OriginalBytes:   input.Size,
		CompressedBytes: compressedBytes,
		Profile:         req.Profile,
		RequestID:       req.RequestID,
	}
	uc.record(ctx, req, input.Size, &compressedBytes, nil)

	return outcome, cleanup, nil
}

// record writes the accounting row. Best effort: by now the engine
// outcome decides the response, a failed insert only gets logged.
func (uc *CompressionUsecase) record(ctx context.Context, req entity.CompressionRequest, originalBytes int64, compressedBytes *int64, runErr error) {
	if uc.repo == nil {
		return
	}

	job := entity.CompressionJob{
		ID:                  req.RequestID,
		OriginalFilename:    req.Filename,
		OriginalSizeBytes:   originalBytes,
		CompressedSizeBytes: compressedBytes,
		Profile:             string(req.Profile),
		KeepImages:          req.KeepImages,
		Status:              entity.JobCompleted,
	}
	if req.Caller != nil {
		job.CallerID = &req.Caller.ID
	}
	if runErr != nil {
		message := runErr.Error()
		job.Status = entity.JobFailed
		job.ErrorMessage = &message
	}

	if err := uc.repo.CreateJob(ctx, &job); err != nil {
		uc.l.Error("recording compression job %s: %s", job.ID, err)
	}
}

// DownloadName derives the suggested attachment name from the uploaded
// filename: `report.pdf` becomes `report-compressed.pdf`.
func DownloadName(original string) string {
	stem := sanitizeStem(original)
	if stem == "" {
		stem = defaultDownloadName
	}
	return stem + "-compressed.pdf"
}

func sanitizeStem(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}

	return strings.Trim(b.String(), "._")
}
