package compression

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

// CompressionRepository persists callers and compression job rows.
type CompressionRepository struct {
	db *gorm.DB
	l  logger.Interface
}

func NewCompressionRepository(db *gorm.DB, l logger.Interface) *CompressionRepository {
	return &CompressionRepository{db: db, l: l}
}

// FirstOrCreateCaller loads the row bound to caller.APIKey, creating it
// on first use. The unique index on api_key makes concurrent first use
// from several replicas converge on one row.
func (cr *CompressionRepository) FirstOrCreateCaller(ctx context.Context, caller *entity.Caller) error {
	return cr.db.WithContext(ctx).
		Where(entity.Caller{APIKey: caller.APIKey}).
		Attrs(entity.Caller{ID: caller.ID, Name: caller.Name}).
		FirstOrCreate(caller).Error
}

func (cr *CompressionRepository) CreateJob(ctx context.Context, job *entity.CompressionJob) error {
	return cr.db.WithContext(ctx).Create(job).Error
}

func (cr *CompressionRepository) GetJob(ctx context.Context, id string) (*entity.CompressionJob, error) {
	var job entity.CompressionJob
	if err := cr.db.WithContext(ctx).Take(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (cr *CompressionRepository) MarkJobRunning(ctx context.Context, id string) error {
	return cr.db.WithContext(ctx).
		Model(&entity.CompressionJob{}).
		Where("id = ?", id).
		Update("status", entity.JobRunning).Error
}

func (cr *CompressionRepository) CompleteJob(ctx context.Context, id string, compressedBytes int64) error {
	return cr.db.WithContext(ctx).
		Model(&entity.CompressionJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":                entity.JobCompleted,
			"compressed_size_bytes": compressedBytes,
			"completed_at":          time.Now(),
		}).Error
}

func (cr *CompressionRepository) FailJob(ctx context.Context, id string, message string) error {
	return cr.db.WithContext(ctx).
		Model(&entity.CompressionJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        entity.JobFailed,
			"error_message": message,
			"completed_at":  time.Now(),
		}).Error
}
