package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string        `yaml:"port" env:"SERVER_PORT"`
		Mode            string        `yaml:"mode" env:"SERVER_MODE"`
		BaseURL         string        `yaml:"base_url" env:"SERVER_BASE_URL"`
		FrontendURL     string        `yaml:"frontend_url" env:"SERVER_FRONTEND_URL"`
		AllowedOrigins  []string      `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Redis struct {
		Enabled        bool          `yaml:"enabled" env:"REDIS_ENABLED"`
		URL            string        `yaml:"url" env:"REDIS_URL"`
		RetryAttempts  int           `yaml:"retry_attempts" env:"REDIS_RETRY_ATTEMPTS"`
		RetryInterval  time.Duration `yaml:"retry_interval" env:"REDIS_RETRY_INTERVAL"`
		ConnectTimeout time.Duration `yaml:"connect_timeout" env:"REDIS_CONNECT_TIMEOUT"`
	} `yaml:"redis"`

	Storage struct {
		Backend   string `yaml:"backend" env:"STORAGE_BACKEND"`
		LocalPath string `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		S3        struct {
			Bucket         string `yaml:"bucket" env:"S3_BUCKET"`
			Region         string `yaml:"region" env:"S3_REGION"`
			Endpoint       string `yaml:"endpoint" env:"S3_ENDPOINT"`
			AccessKeyID    string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
			SecretKey      string `yaml:"secret_key" env:"S3_SECRET_KEY"`
			PublicURL      string `yaml:"public_url" env:"S3_PUBLIC_URL"`
			ForcePathStyle bool   `yaml:"force_path_style" env:"S3_FORCE_PATH_STYLE"`
		} `yaml:"s3"`
		MaxUploadSize int64 `yaml:"max_upload_size" env:"STORAGE_MAX_UPLOAD_SIZE"`
	} `yaml:"storage"`

	Realtime struct {
		Channel       string        `yaml:"channel" env:"REALTIME_CHANNEL"`
		MinBackoff    time.Duration `yaml:"min_backoff" env:"REALTIME_MIN_BACKOFF"`
		MaxBackoff    time.Duration `yaml:"max_backoff" env:"REALTIME_MAX_BACKOFF"`
		StoreCapacity int           `yaml:"store_capacity" env:"REALTIME_STORE_CAPACITY"`
	} `yaml:"realtime"`

	Assistant struct {
		GatewayURL string        `yaml:"gateway_url" env:"ASSISTANT_GATEWAY_URL"`
		APIKey     string        `yaml:"api_key" env:"ASSISTANT_API_KEY"`
		Timeout    time.Duration `yaml:"timeout" env:"ASSISTANT_TIMEOUT"`
	} `yaml:"assistant"`

	SMTP struct {
		Host     string `yaml:"host" env:"SMTP_HOST"`
		Port     int    `yaml:"port" env:"SMTP_PORT"`
		Username string `yaml:"username" env:"SMTP_USERNAME"`
		Password string `yaml:"password" env:"SMTP_PASSWORD"`
		From     string `yaml:"from" env:"SMTP_FROM"`
		FromName string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		UseTLS   bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	RateLimit struct {
		Enabled   bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
		PerMinute int  `yaml:"per_minute" env:"RATE_LIMIT_PER_MINUTE"`
		Burst     int  `yaml:"burst" env:"RATE_LIMIT_BURST"`
	} `yaml:"rate_limit"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Values already present in the process environment win over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"
	config.Server.FrontendURL = "http://localhost:5173"
	config.Server.AllowedOrigins = []string{"*"}
	config.Server.ShutdownTimeout = 10 * time.Second

	config.Database.Driver = "postgres"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "campusdesk"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "campusdesk.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.Enabled = false
	config.Redis.URL = "redis://localhost:6379/0"
	config.Redis.RetryAttempts = 3
	config.Redis.RetryInterval = 2 * time.Second
	config.Redis.ConnectTimeout = 5 * time.Second

	config.Storage.Backend = "local"
	config.Storage.LocalPath = "./uploads"
	config.Storage.S3.Region = "us-east-1"
	config.Storage.MaxUploadSize = 20 << 20

	config.Realtime.Channel = "campus_realtime"
	config.Realtime.MinBackoff = 500 * time.Millisecond
	config.Realtime.MaxBackoff = 30 * time.Second
	config.Realtime.StoreCapacity = 50

	config.Assistant.Timeout = 30 * time.Second

	config.SMTP.Port = 587
	config.SMTP.FromName = "CampusDesk"

	config.RateLimit.Enabled = true
	config.RateLimit.PerMinute = 60
	config.RateLimit.Burst = 20
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	switch config.Storage.Backend {
	case "local":
		if config.Storage.LocalPath == "" {
			return fmt.Errorf("storage local_path is required for the local backend")
		}
	case "s3":
		if config.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage s3 bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}

	if config.Realtime.MinBackoff <= 0 || config.Realtime.MaxBackoff < config.Realtime.MinBackoff {
		return fmt.Errorf("realtime backoff must satisfy 0 < min_backoff <= max_backoff")
	}

	if config.Realtime.StoreCapacity <= 0 {
		return fmt.Errorf("realtime store_capacity must be positive")
	}

	if config.Redis.Enabled && config.Redis.URL == "" {
		return fmt.Errorf("redis url is required when redis is enabled")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
