package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Data backend kinds.
const (
	DataBackendFile  = "file"
	DataBackendMySQL = "mysql"
)

// Blob backend kinds.
const (
	BlobBackendFS    = "fs"
	BlobBackendMinio = "minio"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Data   DataConfig
	DB     DBConfig
	Blob   BlobConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int     `envconfig:"SERVER_PORT" default:"3000"`
	WriteRateLimit float64 `envconfig:"SERVER_WRITE_RATE_LIMIT" default:"50"`
	WriteRateBurst int     `envconfig:"SERVER_WRITE_RATE_BURST" default:"100"`
	MaxUploadBytes int64   `envconfig:"SERVER_MAX_UPLOAD_BYTES" default:"536870912"`
}

// DataConfig selects where the snapshot document lives
type DataConfig struct {
	Backend  string `envconfig:"DATA_BACKEND" default:"file"`
	File     string `envconfig:"DATA_FILE" default:"data.json"`
	Document string `envconfig:"DATA_DOCUMENT" default:"tootube"`
}

// DBConfig holds database configuration for the mysql data backend
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASSWORD"`
	Database string `envconfig:"DB_NAME" default:"tootube"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"10"`
}

// BlobConfig selects where uploaded media bytes live
type BlobConfig struct {
	Backend   string `envconfig:"BLOB_BACKEND" default:"fs"`
	Dir       string `envconfig:"BLOB_DIR" default:"uploads"`
	Endpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"tootube-media"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	PublicURL string `envconfig:"MINIO_PUBLIC_URL"`
}

// DSN returns the MySQL data source name
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Data); err != nil {
		return nil, fmt.Errorf("failed to load data config: %w", err)
	}

	if err := envconfig.Process("", &cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to load db config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Blob); err != nil {
		return nil, fmt.Errorf("failed to load blob config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	if c.Server.WriteRateLimit <= 0 {
		return fmt.Errorf("SERVER_WRITE_RATE_LIMIT must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("SERVER_MAX_UPLOAD_BYTES must be positive")
	}

	switch c.Data.Backend {
	case DataBackendFile:
		if c.Data.File == "" {
			return fmt.Errorf("DATA_FILE is required for the file backend")
		}
	case DataBackendMySQL:
		if c.DB.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the mysql backend")
		}
	default:
		return fmt.Errorf("DATA_BACKEND must be %q or %q", DataBackendFile, DataBackendMySQL)
	}

	switch c.Blob.Backend {
	case BlobBackendFS:
		if c.Blob.Dir == "" {
			return fmt.Errorf("BLOB_DIR is required for the fs backend")
		}
	case BlobBackendMinio:
		if c.Blob.AccessKey == "" || c.Blob.SecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
		}
	default:
		return fmt.Errorf("BLOB_BACKEND must be %q or %q", BlobBackendFS, BlobBackendMinio)
	}

	return nil
}
