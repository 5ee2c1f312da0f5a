package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Gemini   GeminiConfig
	Vector   VectorConfig
	Ingest   IngestConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type AuthConfig struct {
	TokenSecret     string
	AccessExpiresIn time.Duration
	ResumeExpiresIn time.Duration
}

type GeminiConfig struct {
	APIKey     string
	EmbedModel string
}

type VectorConfig struct {
	APIKey     string
	BaseURL    string
	IndexName  string
	IndexHost  string
	APIVersion string
	Namespace  string
}

type IngestConfig struct {
	CatalogURLs []string
	Workers     int
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),

		ConnectTimeout:        durationEnv("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32Env("DB_POOL_MAX_CONNS", 0),
		PoolMinConns:          int32Env("DB_POOL_MIN_CONNS", 0),
		PoolMaxConnLifetime:   durationEnv("DB_POOL_MAX_CONN_LIFETIME", 0),
		PoolMaxConnIdleTime:   durationEnv("DB_POOL_MAX_CONN_IDLE_TIME", 0),
		PoolHealthCheckPeriod: durationEnv("DB_POOL_HEALTH_CHECK_PERIOD", 0),
	}

	cfg.Auth = AuthConfig{
		TokenSecret:     req("AUTH_TOKEN_SECRET"),
		AccessExpiresIn: durationEnv("AUTH_ACCESS_EXPIRES_IN", 15*time.Minute),
		ResumeExpiresIn: durationEnv("AUTH_RESUME_EXPIRES_IN", 24*time.Hour),
	}

	cfg.Gemini = GeminiConfig{
		APIKey:     opt("GEMINI_API_KEY"),
		EmbedModel: opt("GEMINI_EMBED_MODEL"),
	}

	cfg.Vector = VectorConfig{
		APIKey:     opt("VECTOR_API_KEY"),
		BaseURL:    opt("VECTOR_BASE_URL"),
		IndexName:  opt("VECTOR_INDEX_NAME"),
		IndexHost:  opt("VECTOR_INDEX_HOST"),
		APIVersion: opt("VECTOR_API_VERSION"),
		Namespace:  opt("VECTOR_NAMESPACE"),
	}

	cfg.Ingest = IngestConfig{
		CatalogURLs: splitCSV(opt("INGEST_CATALOG_URLS")),
		Workers:     intEnv("INGEST_WORKERS", 4),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func intEnv(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func int32Env(key string, def int32) int32 {
	return int32(intEnv(key, int(def)))
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
