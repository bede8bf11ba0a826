package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	// Config -.
	Config struct {
		App       `yaml:"app"`
		Server    `yaml:"server"`
		Log       `yaml:"logger"`
		Engine    `yaml:"ghostscript"`
		Limits    `yaml:"limits"`
		RateLimit `yaml:"rate_limit"`
		Auth      `yaml:"auth"`
		MYSQL     `yaml:"mysql"`
		RMQ       `yaml:"rabbitmq"`
		S3        `yaml:"s3"`
		OTEL      `yaml:"otel"`
	}

	// App -.
	App struct {
		Name      string `env-required:"true" yaml:"name"    env:"APP_NAME"`
		Version   string `env-required:"true" yaml:"version" env:"APP_VERSION"`
		Commit    string `yaml:"commit"     env:"APP_COMMIT"`
		BuildTime string `yaml:"build_time" env:"APP_BUILD_TIME"`
	}

	// Server -.
	Server struct {
		Port string `env-required:"true" yaml:"port" env:"HTTP_PORT"`
	}

	// Log -.
	Log struct {
		Level string `env-required:"true" yaml:"log_level" env:"LOG_LEVEL"`
	}

	// Engine configures the external Ghostscript binary.
	Engine struct {
		Command   string        `yaml:"command" env:"GHOSTSCRIPT_COMMAND"`
		Timeout   time.Duration `env-required:"true" yaml:"timeout" env:"GHOSTSCRIPT_TIMEOUT"`
		UploadDir string        `env-required:"true" yaml:"upload_dir" env:"UPLOAD_FOLDER"`
		OutputDir string        `env-required:"true" yaml:"output_dir" env:"COMPRESSED_FOLDER"`
	}

	// Limits -.
	Limits struct {
		MaxUploadBytes int64 `env-required:"true" yaml:"max_upload_bytes" env:"MAX_CONTENT_LENGTH"`
	}

	// RateLimit -. Store selects the counter backend: "memory" for a
	// single instance, "mysql" for a quota shared between replicas.
	RateLimit struct {
		Quota  int           `env-required:"true" yaml:"quota" env:"RATELIMIT_QUOTA"`
		Window time.Duration `env-required:"true" yaml:"window" env:"RATELIMIT_WINDOW"`
		Store  string        `env-required:"true" yaml:"store" env:"RATELIMIT_STORE"`
	}

	// Auth -. APIKeys holds comma-separated `key:name` bindings; empty
	// disables authentication.
	Auth struct {
		APIKeys string `yaml:"api_keys" env:"API_KEYS"`
	}

	// MYSQL -. Empty host disables persistence on the server side.
	MYSQL struct {
		Host     string `yaml:"host"     env:"MYSQL_HOST"`
		Port     string `yaml:"port"     env:"MYSQL_PORT"`
		Username string `yaml:"username" env:"MYSQL_USERNAME"`
		Password string `yaml:"password" env:"MYSQL_PASSWORD"`
		Dbname   string `yaml:"dbname"   env:"MYSQL_DBNAME"`
	}

	// RMQ -. Empty URL disables the async job pipeline.
	RMQ struct {
		URL      string `yaml:"url"      env:"RMQ_URL"`
		Exchange string `yaml:"exchange" env:"RMQ_EXCHANGE"`
		Queue    string `yaml:"queue"    env:"RMQ_QUEUE"`
	}

	// S3 -.
	S3 struct {
		Endpoint         string `yaml:"endpoint"          env:"S3_ENDPOINT"`
		Region           string `yaml:"region"            env:"S3_REGION"`
		AccessKey        string `yaml:"access_key"        env:"S3_ACCESS_KEY"`
		SecretKey        string `yaml:"secret_key"        env:"S3_SECRET_KEY"`
		UploadBucket     string `yaml:"upload_bucket"     env:"S3_UPLOAD_BUCKET"`
		CompressedBucket string `yaml:"compressed_bucket" env:"S3_COMPRESSED_BUCKET"`
	}

	// OTEL -.
	OTEL struct {
		JaegerEndpoint string `yaml:"jaeger_endpoint" env:"JAEGER_ENDPOINT"`
		PrometheusPort string `yaml:"prometheus_port" env:"PROMETHEUS_PORT"`
	}
)

// NewConfig returns app config.
func NewConfig() (*Config, error) {
	cfg := &Config{}

	err := cleanenv.ReadConfig("./config/config.yml", cfg)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
