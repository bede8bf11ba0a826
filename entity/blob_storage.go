package entity

import (
	"context"
	"io"
)

// StorageRepository moves job payloads between the API and the worker.
type StorageRepository interface {
	DownloadObject(ctx context.Context, bucket string, key string, w io.Writer) error
	UploadObject(ctx context.Context, bucket string, key string, r io.Reader) error
	DeleteObject(ctx context.Context, bucket string, key string) error
}
