package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mkatbalasd/PDFCompress/config"
	"github.com/mkatbalasd/PDFCompress/internal/auth"
	"github.com/mkatbalasd/PDFCompress/internal/compression"
	v1 "github.com/mkatbalasd/PDFCompress/internal/controller/http/v1"
	"github.com/mkatbalasd/PDFCompress/internal/controller/rmq"
	"github.com/mkatbalasd/PDFCompress/internal/db/gorm/mysql"
	"github.com/mkatbalasd/PDFCompress/internal/ratelimit"
	"github.com/mkatbalasd/PDFCompress/internal/storage/s3repo"
	tmetric "github.com/mkatbalasd/PDFCompress/internal/telemetry/metric"
	ttrace "github.com/mkatbalasd/PDFCompress/internal/telemetry/trace"
	"github.com/mkatbalasd/PDFCompress/internal/tempfiles"
	"github.com/mkatbalasd/PDFCompress/pkg/ghostscript"
	"github.com/mkatbalasd/PDFCompress/pkg/httpserver"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

var name = "pdf-compression-server"

// NewServer -.
func NewServer(cfg *config.Config) *Server {
	srv := &Server{}

	srv.InitGlobalProvider(name, cfg.OTEL.JaegerEndpoint)

	return srv
}

type Server struct {
	traceProviderCloseFn []ttrace.CloseFunc
}

// Run wires the compression stack and serves until a signal arrives.
func (s *Server) Run(ctx context.Context, cfg *config.Config) error {
	l := logger.New(cfg.Log.Level)
	l.Info("starting %s %s", cfg.App.Name, cfg.App.Version)

	tmp, err := tempfiles.New(cfg.Engine.UploadDir, cfg.Engine.OutputDir, l)
	if err != nil {
		l.Fatal(err)
	}

	gsCommand := ghostscript.Detect(cfg.Engine.Command)
	engine := ghostscript.NewExecutor(gsCommand, cfg.Engine.Timeout, l)
	if !engine.Available() {
		l.Warn("ghostscript binary %s not found, compressions will fail until it appears", engine.Command())
	}

	// Persistence is optional: without it the service still compresses,
	// it just keeps no accounting and offers no async jobs.
	var db *gorm.DB
	var repo *compression.CompressionRepository
	if cfg.MYSQL.Host != "" {
		db, err = mysql.NewDB(cfg.MYSQL)
		if err != nil {
			l.Fatal(err)
		}
		repo = compression.NewCompressionRepository(db, l)
	}

	var limiterStore ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.RateLimit.Store == "mysql" {
		if db == nil {
			l.Fatal("rate_limit.store is mysql but no mysql host is configured")
		}
		limiterStore, err = ratelimit.NewGormStore(db)
		if err != nil {
			l.Fatal(err)
		}
	}
	limiter := ratelimit.New(limiterStore, cfg.RateLimit.Quota, cfg.RateLimit.Window, l)

	var callerStore auth.CallerStore
	if repo != nil {
		callerStore = repo
	}
	authn := auth.New(cfg.Auth.APIKeys, callerStore, l)
	if !authn.Enabled() {
		l.Warn("no api keys configured, running in open mode")
	}

	uc := compression.NewCompressionUsecase(tmp, engine, repo, l)

	deps := v1.Deps{
		Config:  cfg,
		Usecase: uc,
		Limiter: limiter,
		Auth:    authn,
	}

	var publisher *rmq.JobQueue
	if cfg.RMQ.URL != "" {
		if repo == nil {
			l.Fatal("rabbitmq is configured but async jobs need mysql persistence")
		}
		publisher, err = rmq.NewJobQueue(cfg, l)
		if err != nil {
			l.Fatal(err)
		}
		storage, err := s3repo.NewS3Repository(cfg.S3)
		if err != nil {
			l.Fatal(err)
		}
		deps.Repo = repo
		deps.Publisher = publisher
		deps.Storage = storage
		l.Info("async job endpoints enabled")
	}

	handler := gin.New()
	v1.NewRouter(handler, l, deps)
	httpServer := httpserver.New(s.cors().Handler(handler), httpserver.Port(cfg.Server.Port))

	if cfg.OTEL.PrometheusPort != "" {
		go func() {
			metricsAddr := ":" + cfg.OTEL.PrometheusPort
			l.Info("metrics serving on %s", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, tmetric.Handler()); err != nil {
				l.Error(fmt.Errorf("app - Run - metrics listener: %w", err))
			}
		}()
	}

	l.Info("server serving on port %s", cfg.Server.Port)

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-interrupt:
		l.Info("app - Run - signal: " + sig.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	log.Printf("server stopped")

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown
	if err := httpServer.Shutdown(); err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	if publisher != nil {
		if err := publisher.CloseChan(); err != nil {
			l.Error(fmt.Errorf("app - Run - publisher.CloseChan: %w", err))
		}
	}

	if db != nil {
		if sql, dbErr := db.DB(); dbErr == nil {
			if closeErr := sql.Close(); closeErr != nil {
				l.Error(fmt.Errorf("app - Run - db.Close: %w", closeErr))
			}
		}
	}

	log.Printf("server exited properly")

	for _, closeFn := range s.traceProviderCloseFn {
		go func(closeFn ttrace.CloseFunc) {
			if err := closeFn(ctxShutDown); err != nil {
				log.Error().Err(err).Msgf("Unable to close trace provider")
			}
		}(closeFn)
	}

	return err
}

func (s *Server) cors() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"POST", "GET", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:     []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "X-API-Key"},
		MaxAge:             60, // 1 minutes
		AllowCredentials:   true,
		OptionsPassthrough: false,
		Debug:              false,
	})
}
