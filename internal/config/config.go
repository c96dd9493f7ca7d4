package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

type DB struct {
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
}

type Email struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type RateLimit struct {
	RedisURL    string
	Window      time.Duration
	MaxRequests int
}

type Config struct {
	ServerPort     int
	Env            string
	DB             DB
	MinIO          MinIO
	Email          Email
	RateLimit      RateLimit
	JWTSecretKey   string
	JWTExpire      time.Duration
	StorageBackend string
	UploadDir      string
	MaxUploadSize  int64
	FrontendURL    string
	LogLevel       string
	LogFormat      string
	MigrationsPath string
	// EnvFileLoaded is false when no .env file was found.
	EnvFileLoaded bool
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// parseDuration accepts Go durations plus a "d" suffix for days ("7d").
func parseDuration(value string, fallback time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return fallback
		}
		return time.Duration(n) * 24 * time.Hour
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

// parseWindow reads RATE_LIMIT_WINDOW as milliseconds or as a duration string.
func parseWindow(value string, fallback time.Duration) time.Duration {
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		if ms <= 0 {
			return fallback
		}
		return time.Duration(ms) * time.Millisecond
	}
	return parseDuration(value, fallback)
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "storyloom"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "uploads"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
	}
}

func LoadEmail() Email {
	user := getEnv("EMAIL_USER", "")
	return Email{
		Host:     getEnv("EMAIL_HOST", ""),
		Port:     getEnvAsInt("EMAIL_PORT", 587),
		User:     user,
		Password: getEnv("EMAIL_PASS", ""),
		From:     getEnv("EMAIL_FROM", user),
	}
}

func LoadRateLimit() RateLimit {
	return RateLimit{
		RedisURL:    getEnv("REDIS_URL", ""),
		Window:      parseWindow(getEnv("RATE_LIMIT_WINDOW", "900000"), 15*time.Minute),
		MaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 100),
	}
}

func LoadConfig() *Config {
	loaded := godotenv.Load() == nil

	return &Config{
		ServerPort:     getEnvAsInt("SERVER_PORT", 5000),
		Env:            getEnv("APP_ENV", "development"),
		DB:             LoadDB(),
		MinIO:          LoadMinIO(),
		Email:          LoadEmail(),
		RateLimit:      LoadRateLimit(),
		JWTSecretKey:   getEnv("JWT_SECRET", ""),
		JWTExpire:      parseDuration(getEnv("JWT_EXPIRE", "7d"), 7*24*time.Hour),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadSize:  getEnvAsInt64("MAX_FILE_SIZE", 5*1024*1024),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations/001_create_tables.sql"),
		EnvFileLoaded:  loaded,
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.MaxUploadSize <= 0 {
		return errors.New("MAX_FILE_SIZE must be positive")
	}
	switch c.StorageBackend {
	case StorageLocal, StorageMinIO:
	default:
		return errors.New("STORAGE_BACKEND must be local or minio")
	}
	return nil
}
