package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	LLM      LLMConfig
	Webhook  WebhookConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Database DatabaseConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// BackendConfig holds the base URL of the backend API that persists
// meeting metadata and issues presigned upload URLs.
type BackendConfig struct {
	APIURL  string        `envconfig:"BACKEND_API_URL"`
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"30s"`
}

// LLMConfig holds the chat-completion provider configuration
type LLMConfig struct {
	APIKey    string        `envconfig:"LLM_API_KEY"`
	BaseURL   string        `envconfig:"LLM_API_URL" default:"https://api.groq.com"`
	Model     string        `envconfig:"LLM_MODEL" default:"llama-3.3-70b-versatile"`
	MaxTokens int           `envconfig:"LLM_MAX_TOKENS" default:"8000"`
	Timeout   time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
}

// WebhookConfig holds inbound webhook authentication settings.
// Both secrets are optional; leaving them empty disables the
// corresponding check.
type WebhookConfig struct {
	JWTSecret     string `envconfig:"WEBHOOK_JWT_SECRET"`
	SigningSecret string `envconfig:"WEBHOOK_SIGNING_SECRET"`
}

// StorageConfig holds presentation artifact storage configuration.
// Mode "backend" uploads through the backend's presigned-URL service;
// mode "minio" uploads straight to a MinIO bucket.
type StorageConfig struct {
	Mode            string `envconfig:"STORAGE_MODE" default:"backend"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meeting-presentations"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// RedisConfig holds Redis configuration for the idempotency store.
// An empty Addr falls back to the in-process store.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// DatabaseConfig holds the optional run-audit database configuration
type DatabaseConfig struct {
	Enabled     bool   `envconfig:"DB_ENABLED" default:"false"`
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"meeting_insights"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Backend.APIURL == "" {
		return fmt.Errorf("BACKEND_API_URL is required")
	}
	if c.Storage.Mode != "backend" && c.Storage.Mode != "minio" {
		return fmt.Errorf("STORAGE_MODE must be \"backend\" or \"minio\", got %q", c.Storage.Mode)
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
