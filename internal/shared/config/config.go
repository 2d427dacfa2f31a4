package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"resume-builder/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	APIVersion      string
	CORSAllowOrigin []string
	ClientURL       string
	Env             string

	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	EncryptionKey string
	JWTSecret     string
	SessionTTL    time.Duration

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	ChromePath        string
	PDFContentTimeout time.Duration
	PDFRenderTimeout  time.Duration
	PDFSettleDelay    time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files; real environment variables win.
	_ = godotenv.Load(existing(".env", "cmd/.env")...)

	env := normalizeEnv(getEnv("ENV", "dev"))
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		APIVersion:        getEnv("API_VERSION", "v1"),
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ClientURL:         strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:5173"), "/"),
		Env:               env,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		CacheTTL:          getDuration("CACHE_TTL", 5*time.Minute),
		EncryptionKey:     os.Getenv("ENCRYPTION_KEY"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SessionTTL:        getDuration("SESSION_TTL", 24*time.Hour),
		ObjectStoreType:   normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:     getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:         getEnv("AWS_REGION", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),
		ChromePath:        getEnv("CHROME_PATH", ""),
		PDFContentTimeout: getDuration("PDF_CONTENT_TIMEOUT", 30*time.Second),
		PDFRenderTimeout:  getDuration("PDF_RENDER_TIMEOUT", 60*time.Second),
		PDFSettleDelay:    getDuration("PDF_SETTLE_DELAY", 1500*time.Millisecond),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}

	if env == "production" {
		for key, val := range map[string]string{
			"DATABASE_URL":   cfg.DatabaseURL,
			"ENCRYPTION_KEY": cfg.EncryptionKey,
			"JWT_SECRET":     cfg.JWTSecret,
		} {
			if val == "" {
				telemetry.Error("config.missing", map[string]any{"key": key, "env": env})
			}
		}
	}
	return cfg
}

// IsProduction reports whether the process runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func existing(paths ...string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getDuration accepts Go durations ("30s") or plain milliseconds ("1500").
func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
