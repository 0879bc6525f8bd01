package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port    string
	SiteURL string

	// Database configuration
	DBType            string // sqlite, sqlite3, mysql, mariadb, postgres, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string

	// Token authentication
	TokenSecret string
	TokenTTL    time.Duration

	// Authorizer configuration, optional
	AuthzURL      string
	AuthzClientID string

	// Listing
	PageSize int

	// Media storage
	MediaBackend string // local, s3
	MediaRoot    string
	MediaURL     string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3PublicURL  string

	// Shopping list rendering
	ShoppingListFormat string // pdf, txt
	ChromePath         string
	ChromeWSURL        string

	ShortLinkCacheSize int

	// Logging
	LogLevel string
	LogJSON  bool
}

// Load loads configuration from the environment, after applying the .env
// file named by ENV_FILE (default ".env") when it exists.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		SiteURL:            strings.TrimSuffix(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		DBType:             getEnv("DB_TYPE", "sqlite"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBDatabase:         getEnv("DB_DATABASE", "foodgram.db"),
		DBUser:             getEnv("DB_USER", ""),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:  getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBLogLevel:         getEnv("DB_LOG_LEVEL", "warn"),
		TokenSecret:        getEnv("TOKEN_SECRET", ""),
		TokenTTL:           getEnvAsDuration("TOKEN_TTL", 30*24*time.Hour),
		AuthzURL:           getEnv("AUTHZ_URL", ""),
		AuthzClientID:      getEnv("AUTHZ_CLIENT_ID", ""),
		PageSize:           getEnvAsInt("PAGE_SIZE", 6),
		MediaBackend:       getEnv("MEDIA_BACKEND", "local"),
		MediaRoot:          getEnv("MEDIA_ROOT", "media"),
		MediaURL:           strings.TrimSuffix(getEnv("MEDIA_URL", "/media"), "/"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Region:           getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3AccessKey:        getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:        getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:        strings.TrimSuffix(getEnv("S3_PUBLIC_URL", ""), "/"),
		ShoppingListFormat: getEnv("SHOPPING_LIST_FORMAT", "pdf"),
		ChromePath:         getEnv("CHROME_PATH", ""),
		ChromeWSURL:        getEnv("CHROME_WS_URL", ""),
		ShortLinkCacheSize: getEnvAsInt("SHORTLINK_CACHE_SIZE", 1024),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogJSON:            getEnvAsBool("LOG_JSON", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and enumerations.
func (cfg *Config) Validate() error {
	if cfg.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	switch cfg.DBType {
	case "sqlite", "sqlite3":
	case "mysql", "mariadb", "postgres", "postgresql", "sqlserver", "mssql":
		if cfg.DBUser == "" {
			return fmt.Errorf("DB_USER is required for DB_TYPE %s", cfg.DBType)
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", cfg.DBType)
	}
	if cfg.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET is required")
	}
	if cfg.AuthzURL != "" && cfg.AuthzClientID == "" {
		return fmt.Errorf("AUTHZ_CLIENT_ID is required when AUTHZ_URL is set")
	}
	if cfg.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	switch cfg.MediaBackend {
	case "local":
	case "s3":
		if cfg.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for MEDIA_BACKEND s3")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_BACKEND: %s", cfg.MediaBackend)
	}
	switch cfg.ShoppingListFormat {
	case "pdf", "txt":
	default:
		return fmt.Errorf("unsupported SHOPPING_LIST_FORMAT: %s", cfg.ShoppingListFormat)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
