package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageBackendNone  = "none"
	StorageBackendMinio = "minio"
	StorageBackendGCS   = "gcs"

	MQBackendNone     = "none"
	MQBackendRabbitMQ = "rabbitmq"
	MQBackendPubSub   = "pubsub"
)

// Config holds all service settings read from the environment.
type Config struct {
	Env        string `env:"ENV" envDefault:"prod"`
	ServerPort int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// PublicBaseURL prefixes every hyperlink written into responses.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	Database DatabaseConfig `envPrefix:"DB_"`
	Storage  StorageConfig
	MQ       MQConfig
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"userservice"`
	Password string `env:"PASSWORD" envDefault:"password"`
	DBName   string `env:"NAME" envDefault:"userservice_db"`
	UseSSL   bool   `env:"USE_SSL" envDefault:"false"`
}

// StorageConfig selects and configures the profile image store.
type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND" envDefault:"none"`

	// ProfileImageMaxBytes bounds a single profile image upload.
	ProfileImageMaxBytes int64 `env:"PROFILE_IMAGE_MAX_BYTES" envDefault:"5242880"`

	Minio MinioConfig `envPrefix:"MINIO_"`
	GCS   GCSConfig   `envPrefix:"GCS_"`
}

// MinioConfig holds MinIO connection settings.
type MinioConfig struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"profile-images"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// GCSConfig holds Google Cloud Storage settings.
type GCSConfig struct {
	Bucket          string `env:"BUCKET"`
	ProjectID       string `env:"PROJECT_ID"`
	CredentialsFile string `env:"CREDENTIALS_FILE"`
}

// MQConfig selects and configures the user events broker.
type MQConfig struct {
	Backend string `env:"MQ_BACKEND" envDefault:"none"`

	// UserEventsChannel is the queue/topic user lifecycle events are published to.
	UserEventsChannel string `env:"USER_EVENTS_CHANNEL" envDefault:"user-events"`

	RabbitMQ RabbitMQConfig `envPrefix:"RABBITMQ_"`
	PubSub   PubSubConfig   `envPrefix:"PUBSUB_"`
}

// RabbitMQConfig holds RabbitMQ connection settings.
type RabbitMQConfig struct {
	URL             string `env:"URL"`
	PrefetchCount   int    `env:"PREFETCH_COUNT" envDefault:"10"`
	QueueDurable    bool   `env:"QUEUE_DURABLE" envDefault:"true"`
	QueueAutoDelete bool   `env:"QUEUE_AUTO_DELETE" envDefault:"false"`
}

// PubSubConfig holds Google Pub/Sub settings.
type PubSubConfig struct {
	ProjectID          string `env:"PROJECT_ID"`
	CredentialsFile    string `env:"CREDENTIALS_FILE"`
	SubscriptionSuffix string `env:"SUBSCRIPTION_SUFFIX" envDefault:"-sub"`
}

// LoadConfig reads the process environment (and .env in dev) into a Config.
func LoadConfig() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if cfg.PublicBaseURL == "" {
		return errors.New("PUBLIC_BASE_URL is required")
	}

	switch cfg.Storage.Backend {
	case StorageBackendNone, StorageBackendMinio, StorageBackendGCS:
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.Storage.Backend)
	}
	if cfg.Storage.ProfileImageMaxBytes <= 0 {
		return errors.New("PROFILE_IMAGE_MAX_BYTES must be positive")
	}

	switch cfg.MQ.Backend {
	case MQBackendNone, MQBackendRabbitMQ, MQBackendPubSub:
	default:
		return fmt.Errorf("unsupported MQ_BACKEND %q", cfg.MQ.Backend)
	}
	return nil
}
