package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL       string        `envconfig:"DATABASE_URL"        required:"true"`
	HTTPPort          string        `envconfig:"HTTP_PORT"           default:":8000"`
	GrpcPort          string        `envconfig:"GRPC_PORT"           default:":50051"` // health and reflection only
	LogLevel          string        `envconfig:"LOG_LEVEL"           default:"info"`
	RunMigrations     bool          `envconfig:"RUN_MIGRATIONS"      default:"true"`
	RedisURL          string        `envconfig:"REDIS_URL"`
	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"60s"`
	AMQPURL           string        `envconfig:"AMQP_URL"`
	AMQPExchange      string        `envconfig:"AMQP_EXCHANGE"       default:"smartmart.events"`
	AMQPQueue         string        `envconfig:"AMQP_QUEUE"          default:"smartmart.imports"`
	MaxUploadBytes    int64         `envconfig:"MAX_UPLOAD_BYTES"    default:"10485760"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT"    default:"10s"`
}

var (
	config Config
	once   sync.Once
)

// Load reads the environment into a fresh Config. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}
	return &cfg, nil
}

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}
		config = *cfg

		logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s", config.HTTPPort, config.GrpcPort, config.LogLevel)
		logger.Info("Configuration loaded: DatabaseURL is set")
		if config.RedisURL == "" {
			logger.Info("Configuration: REDIS_URL not set, dashboard cache disabled")
		}
		if config.AMQPURL == "" {
			logger.Info("Configuration: AMQP_URL not set, import events disabled")
		}
	})
	return &config
}
