package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	DatabaseURL       string
	JWTSecret         string
	AllowedOrigins    []string
	StorageBasePath   string
	StorageBaseURL    string
	InviteBaseURL     string
	GeoIPDBPath       string
	DefaultLocale     string
	TranslateAPIKey   string
	TranslateBaseURL  string
	TranscribeAPIKey  string
	TranscribeModel   string
	TranscribeBaseURL string
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
	RateLimitPerMin   int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AllowedOrigins:    splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		StorageBasePath:   getEnv("STORAGE_BASE_PATH", "./data/blobs"),
		StorageBaseURL:    getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		InviteBaseURL:     getEnv("INVITE_BASE_URL", "http://localhost:3000"),
		GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:     getEnv("DEFAULT_LOCALE", "en"),
		TranslateAPIKey:   os.Getenv("TRANSLATE_API_KEY"),
		TranslateBaseURL:  getEnv("TRANSLATE_BASE_URL", "https://translation.googleapis.com"),
		TranscribeAPIKey:  os.Getenv("TRANSCRIBE_API_KEY"),
		TranscribeModel:   getEnv("TRANSCRIBE_MODEL", "whisper-1"),
		TranscribeBaseURL: getEnv("TRANSCRIBE_BASE_URL", "https://api.openai.com/v1"),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
