package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mkatbalasd/PDFCompress/config"
	"github.com/mkatbalasd/PDFCompress/internal/compression"
	"github.com/mkatbalasd/PDFCompress/internal/controller/rmq"
	"github.com/mkatbalasd/PDFCompress/internal/db/gorm/mysql"
	"github.com/mkatbalasd/PDFCompress/internal/storage/s3repo"
	ttrace "github.com/mkatbalasd/PDFCompress/internal/telemetry/trace"
	"github.com/mkatbalasd/PDFCompress/internal/tempfiles"
	"github.com/mkatbalasd/PDFCompress/pkg/ghostscript"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

var name = "pdf-compression-worker"

// NewWorker -.
func NewWorker(cfg *config.Config) *Worker {
	worker := &Worker{}

	worker.InitGlobalProvider(name, cfg.OTEL.JaegerEndpoint)

	return worker
}

type Worker struct {
	traceProviderCloseFn []ttrace.CloseFunc
}

// Run consumes compression jobs until a signal arrives or the queue
// channel closes. Persistence and blob storage are mandatory here:
// jobs live in MySQL and payloads travel through S3.
func (w *Worker) Run(ctx context.Context, cfg *config.Config) error {
	l := logger.New(cfg.Log.Level)
	l.Info("starting %s %s", name, cfg.App.Version)

	db, err := mysql.NewDB(cfg.MYSQL)
	if err != nil {
		l.Fatal(err)
	}
	repo := compression.NewCompressionRepository(db, l)

	tmp, err := tempfiles.New(cfg.Engine.UploadDir, cfg.Engine.OutputDir, l)
	if err != nil {
		l.Fatal(err)
	}

	gsCommand := ghostscript.Detect(cfg.Engine.Command)
	engine := ghostscript.NewExecutor(gsCommand, cfg.Engine.Timeout, l)
	if !engine.Available() {
		l.Warn("ghostscript binary %s not found, jobs will fail until it appears", engine.Command())
	}

	storage, err := s3repo.NewS3Repository(cfg.S3)
	if err != nil {
		l.Fatal(err)
	}

	processor := compression.NewJobProcessor(tmp, engine, repo, storage,
		cfg.S3.UploadBucket, cfg.S3.CompressedBucket, l)

	consumer, err := rmq.NewJobConsumer(cfg, l, processor)
	if err != nil {
		l.Fatal(err)
	}

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.StartConsumer()
	}()

	l.Info("compression worker started")

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-interrupt:
		l.Info("app - Run - signal: " + sig.String())
	case err = <-consumerErr:
		l.Error(fmt.Errorf("app - Run - consumer stopped: %w", err))
	}

	log.Printf("worker stopped")

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown
	if err := consumer.CloseChan(); err != nil {
		l.Error(fmt.Errorf("app - Run - consumer.CloseChan: %w", err))
	}

	sql, dbErr := db.DB()
	if dbErr != nil {
		log.Fatal().Msgf("unable to get db driver")
	}
	if err := sql.Close(); err != nil {
		log.Fatal().Msgf("unable close db connection")
	}

	log.Printf("worker exited properly")

	for _, closeFn := range w.traceProviderCloseFn {
		go func(closeFn ttrace.CloseFunc) {
			if err := closeFn(ctxShutDown); err != nil {
				log.Error().Err(err).Msgf("Unable to close trace provider")
			}
		}(closeFn)
	}

	return err
}
