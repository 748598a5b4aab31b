// Package config reads service configuration from ADMITLY_* environment
// variables so main stays lean. Every value has a development default;
// production deployments override through the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything main needs to wire the service.
type Config struct {
	Addr          string
	JWTSigningKey string

	// Empty DSN selects the in-memory stores.
	PostgresDSN string

	// Empty URL selects the HMAC download signer.
	RedisURL string

	BlobRoot        string
	DownloadBaseURL string
	DownloadTTL     time.Duration

	SubmitThreshold int
	MaxUploadBytes  int64

	// Empty broker list selects the slog notification sink.
	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("ADMITLY_ADDR", ":8080"),
		JWTSigningKey:   envOr("ADMITLY_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresDSN:     os.Getenv("ADMITLY_POSTGRES_DSN"),
		RedisURL:        os.Getenv("ADMITLY_REDIS_URL"),
		BlobRoot:        envOr("ADMITLY_BLOB_ROOT", "./data/blobs"),
		DownloadBaseURL: envOr("ADMITLY_DOWNLOAD_BASE_URL", "http://localhost:8080/files"),
		DownloadTTL:     envDurationOr("ADMITLY_DOWNLOAD_TTL", time.Hour),
		SubmitThreshold: envIntOr("ADMITLY_SUBMIT_THRESHOLD", 80),
		MaxUploadBytes:  int64(envIntOr("ADMITLY_MAX_UPLOAD_BYTES", 10<<20)),
		KafkaTopic:      envOr("ADMITLY_KAFKA_TOPIC", "admitly.notifications"),
	}
	if brokers := os.Getenv("ADMITLY_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
