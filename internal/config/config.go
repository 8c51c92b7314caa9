package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey      string
	CORSOrigins []string

	// Storage
	DBPath string

	// Import worker pool
	WorkerCount    int
	MaxQueueSize   int
	JobTTL         time.Duration
	MaxUploadBytes int64

	// PDF
	PDFFallbackPdftotext bool

	// Document sync
	SeedNewDocuments         bool
	ReconstructPreserveOrder bool
	MinifyHTML               bool
	ExcerptTokens            int

	// Legacy backend
	UpstreamURL     string
	UpstreamAPIKey  string
	UpstreamTimeout time.Duration
	UpstreamPublish bool

	LogLevel slog.Level
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey:      os.Getenv("CARDPRESS_API_KEY"),
		CORSOrigins: envList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		DBPath: envOr("DB_PATH", "data/cardpress.db"),

		WorkerCount:    envInt("WORKER_COUNT", 2),
		MaxQueueSize:   envInt("MAX_QUEUE_SIZE", 50),
		JobTTL:         envDuration("JOB_TTL", 1*time.Hour),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20<<20),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		SeedNewDocuments:         envBool("SEED_NEW_DOCUMENTS", true),
		ReconstructPreserveOrder: envBool("RECONSTRUCT_PRESERVE_ORDER", false),
		MinifyHTML:               envBool("MINIFY_HTML", true),
		ExcerptTokens:            envInt("EXCERPT_TOKENS", 60),

		UpstreamURL:     os.Getenv("UPSTREAM_URL"),
		UpstreamAPIKey:  os.Getenv("UPSTREAM_API_KEY"),
		UpstreamTimeout: envDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		UpstreamPublish: envBool("UPSTREAM_PUBLISH", false),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
	if cfg.ExcerptTokens <= 0 {
		cfg.ExcerptTokens = 60
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 15 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CARDPRESS_API_KEY is required")
	}
	if c.UpstreamPublish && c.UpstreamURL == "" {
		return fmt.Errorf("UPSTREAM_URL is required when UPSTREAM_PUBLISH is set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// envLevel accepts debug, info, warn and error.
func envLevel(key string, fallback slog.Level) slog.Level {
	var l slog.Level
	if v := os.Getenv(key); v != "" {
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
