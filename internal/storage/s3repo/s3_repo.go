package s3repo

import (
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"

	"github.com/mkatbalasd/PDFCompress/config"
	"github.com/mkatbalasd/PDFCompress/entity"
)

const traceName = "s3-repo"

// S3Repository moves job payloads through an S3-compatible store
// (AWS S3 or MinIO for on-prem deployments).
type S3Repository struct {
	client *s3.Client
}

var _ entity.StorageRepository = (*S3Repository)(nil)

func NewS3Repository(cfg config.S3) (*S3Repository, error) {
	awsCfg := aws.Config{Region: cfg.Region}

	if cfg.Endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...any) (aws.Endpoint, error) {
				return aws.Endpoint{
					PartitionID:       "aws",
					SigningRegion:     cfg.Region,
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			})
	}

	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}

	return &S3Repository{client: s3.NewFromConfig(awsCfg)}, nil
}

func (r *S3Repository) DownloadObject(ctx context.Context, bucket string, key string, w io.Writer) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "DownloadObject")
	defer span.End()

	downloader := manager.NewDownloader(r.client)

	bw := manager.NewWriteAtBuffer(nil)

	numBytes, err := downloader.Download(ctx, bw, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}

	if numBytes < 1 {
		return errors.New("downloaded object is empty")
	}

	_, err = w.Write(bw.Bytes())
	return err
}

func (r *S3Repository) UploadObject(ctx context.Context, bucket string, key string, reader io.Reader) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "UploadObject")
	defer span.End()

	uploader := manager.NewUploader(r.client)

	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   reader,
	})
	return err
}

func (r *S3Repository) DeleteObject(ctx context.Context, bucket string, key string) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "DeleteObject")
	defer span.End()

	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}
