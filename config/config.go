package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const (
	// DefaultOutputPath is where generate writes when no path is given
	DefaultOutputPath = "records.xlsx"
	// DefaultRecordCount is the number of records generate produces by default
	DefaultRecordCount = 10000
	// DefaultMaxExportCount caps how many records one HTTP request may generate
	DefaultMaxExportCount = 100000
)

type Config struct {
	Environment string
	LogLevel    string
	// Records
	OutputPath     string
	RecordCount    int
	Seed           uint64
	NumericPolicy  string // "strict" or "lenient"
	MaxExportCount int
	// Server
	ServerPort string
	UploadDir  string
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using system environment variables")
	}

	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		OutputPath:        getEnv("RECORDS_OUTPUT_PATH", DefaultOutputPath),
		RecordCount:       getEnvInt("RECORDS_COUNT", DefaultRecordCount),
		Seed:              uint64(getEnvInt("RECORDS_SEED", 0)),
		NumericPolicy:     getEnv("RECORDS_NUMERIC_POLICY", "strict"),
		MaxExportCount:    getEnvInt("RECORDS_MAX_EXPORT", DefaultMaxExportCount),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		UploadDir:         getEnv("UPLOAD_DIR", "storage/records"),
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
	}
}

// R2Configured reports whether every credential needed for R2 storage is set
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Using default value for %s: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		log.Warnf("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
