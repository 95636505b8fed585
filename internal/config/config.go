package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
// An empty Endpoint means cloud storage is not configured.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Configured reports whether all settings required to build a client are present.
func (c MinIOConfig) Configured() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// StorageConfig holds local file store settings.
type StorageConfig struct {
	UploadRoot     string
	MaxUploadBytes int
	QueueSize      int
	QueueWorkers   int
}

// BackupConfig holds settings for the periodic database snapshot.
type BackupConfig struct {
	Enabled        bool
	Interval       time.Duration
	InitialDelay   time.Duration
	SnapshotPrefix string
}

// MigrationConfig holds settings for the local-to-cloud migration.
type MigrationConfig struct {
	Workers      int
	FileTimeout  time.Duration
	ObjectPrefix string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Timezone  string
	LogLevel  string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Storage   StorageConfig
	Backup    BackupConfig
	Migration MigrationConfig
}

// Location resolves Timezone, falling back to UTC when it is empty or unknown.
func (c *AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Storage: StorageConfig{
			UploadRoot:     getEnv("STORAGE_UPLOAD_ROOT", "./uploads"),
			MaxUploadBytes: getEnvInt("UPLOAD_MAX_BYTES", 20*1024*1024),
			QueueSize:      getEnvInt("STORAGE_QUEUE_SIZE", 256),
			QueueWorkers:   getEnvInt("STORAGE_QUEUE_WORKERS", 2),
		},
		Backup: BackupConfig{
			Enabled:        getEnvBool("BACKUP_ENABLED", true),
			Interval:       getEnvDuration("BACKUP_INTERVAL", time.Hour),
			InitialDelay:   getEnvDuration("BACKUP_INITIAL_DELAY", 10*time.Second),
			SnapshotPrefix: getEnv("BACKUP_SNAPSHOT_PREFIX", "backups"),
		},
		Migration: MigrationConfig{
			Workers:      getEnvInt("MIGRATION_WORKERS", 1),
			FileTimeout:  getEnvDuration("MIGRATION_FILE_TIMEOUT", time.Minute),
			ObjectPrefix: getEnv("MIGRATION_OBJECT_PREFIX", "files"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("90s", "1h"); non-positive values use def.
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}
