package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/anime-shed/localens-go/pkg/validation"
)

// Sink types for REPORT_SINK
const (
	SinkLocal = "local"
	SinkAzure = "azure"
	SinkHTTP  = "http"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Analysis backend
	APIBase          string
	UseMock          bool
	APIRetryCount    int
	ProviderStrategy string
	Workers          int

	// Overlay
	SeekTimeout  time.Duration
	MaxImageSize int64
	MaxVideoSize int64

	// Reports
	ReportSink           string
	ReportDir            string
	ReportURL            string
	AzureStorageAccount  string
	AzureStorageKey      string
	AzureReportContainer string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}
	return LoadFromEnv()
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8000"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 150*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 120*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 110*1024*1024), // one video plus form overhead

		APIBase:          getEnvOrDefault("API_BASE", "http://localhost:8000/api"),
		UseMock:          parseBoolOrDefault("USE_MOCK", true),
		APIRetryCount:    int(parseIntOrDefault("API_RETRY_COUNT", 3)),
		ProviderStrategy: strings.ToLower(getEnvOrDefault("PROVIDER_STRATEGY", "strict")),
		Workers:          int(parseIntOrDefault("WORKERS", 4)),

		SeekTimeout:  parseDurationOrDefault("SEEK_TIMEOUT", time.Second),
		MaxImageSize: parseIntOrDefault("MAX_IMAGE_SIZE", validation.DefaultMaxImageSize),
		MaxVideoSize: parseIntOrDefault("MAX_VIDEO_SIZE", validation.DefaultMaxVideoSize),

		ReportSink:           strings.ToLower(getEnvOrDefault("REPORT_SINK", SinkLocal)),
		ReportDir:            getEnvOrDefault("REPORT_DIR", "reports"),
		ReportURL:            os.Getenv("REPORT_URL"),
		AzureStorageAccount:  os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:      os.Getenv("AZURE_STORAGE_KEY"),
		AzureReportContainer: getEnvOrDefault("AZURE_REPORT_CONTAINER", "reports"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.AnalysisTimeout <= 0 || cfg.SeekTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, analysis=%s, seek=%s)",
			cfg.RequestTimeout, cfg.AnalysisTimeout, cfg.SeekTimeout)
	}
	if cfg.APIRetryCount < 1 {
		return nil, fmt.Errorf("API_RETRY_COUNT must be >= 1 (got %d)", cfg.APIRetryCount)
	}
	if cfg.ProviderStrategy != "strict" && cfg.ProviderStrategy != "fallback" {
		return nil, fmt.Errorf("PROVIDER_STRATEGY must be strict or fallback (got %q)", cfg.ProviderStrategy)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("WORKERS must be >= 1 (got %d)", cfg.Workers)
	}
	if !cfg.UseMock {
		if err := validation.NewURLValidator().ValidateBaseURL(cfg.APIBase); err != nil {
			return nil, fmt.Errorf("invalid API_BASE %q: %w", cfg.APIBase, err)
		}
	}
	switch cfg.ReportSink {
	case SinkLocal:
	case SinkAzure:
		if cfg.AzureStorageAccount == "" || cfg.AzureStorageKey == "" {
			return nil, fmt.Errorf("REPORT_SINK=azure needs AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	case SinkHTTP:
		if cfg.ReportURL == "" {
			return nil, fmt.Errorf("REPORT_SINK=http needs REPORT_URL")
		}
	default:
		return nil, fmt.Errorf("unsupported REPORT_SINK: %q", cfg.ReportSink)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
