package entity

import "time"

// JobStatus tracks the lifecycle of a compression job row.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// CompressionJob is the accounting record of one compression. Synchronous
// requests insert a terminal row; async jobs walk queued -> running ->
// completed/failed.
type CompressionJob struct {
	ID                  string  `gorm:"primaryKey;size:36"`
	CallerID            *string `gorm:"size:36;index"`
	OriginalFilename    string  `gorm:"size:255;not null"`
	OriginalSizeBytes   int64   `gorm:"not null"`
	CompressedSizeBytes *int64
	Profile             string    `gorm:"size:20;not null"`
	KeepImages          bool      `gorm:"not null;default:false"`
	Status              JobStatus `gorm:"size:20;not null;default:queued"`
	ErrorMessage        *string   `gorm:"type:text"`
	CompletedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (CompressionJob) TableName() string { return "compression_jobs" }

// CompressionJobMessage is the queue payload handed to the worker.
type CompressionJobMessage struct {
	JobID      string `json:"job_id"`
	InputKey   string `json:"input_key"`
	Filename   string `json:"filename"`
	Profile    string `json:"profile"`
	KeepImages bool   `json:"keep_images"`
}
