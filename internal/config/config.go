package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                 string
	DBPath               string
	LogLevel             string
	LogFormat            string
	DefaultBatchSize     int
	AudioDir             string
	TTSEndpoint          string
	TTSAPIKey            string
	TTSTimeoutSeconds    int
	DefaultVoice         string
	RedisURL             string
	PrefetchWorkerCount  int
	PrefetchQueueSize    int
	SessionTTLHours      int
	SweepIntervalMinutes int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                 envOr("ADDR", ":8080"),
		DBPath:               envOr("DB_PATH", "file:wordflash.db"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		LogFormat:            envOr("LOG_FORMAT", "console"),
		DefaultBatchSize:     envIntOr("DEFAULT_BATCH_SIZE", 20),
		AudioDir:             envOr("AUDIO_DIR", "data/audio"),
		TTSEndpoint:          envOr("TTS_ENDPOINT", "http://localhost:5002/api/tts"),
		TTSAPIKey:            os.Getenv("TTS_API_KEY"),
		TTSTimeoutSeconds:    envIntOr("TTS_TIMEOUT_SECONDS", 20),
		DefaultVoice:         envOr("DEFAULT_VOICE", "female-1"),
		RedisURL:             os.Getenv("REDIS_URL"),
		PrefetchWorkerCount:  envIntOr("PREFETCH_WORKER_COUNT", 2),
		PrefetchQueueSize:    envIntOr("PREFETCH_QUEUE_SIZE", 128),
		SessionTTLHours:      envIntOr("SESSION_TTL_HOURS", 48),
		SweepIntervalMinutes: envIntOr("SWEEP_INTERVAL_MINUTES", 60),
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if c.DefaultBatchSize < 1 || c.DefaultBatchSize > 500 {
		return fmt.Errorf("DEFAULT_BATCH_SIZE must be between 1 and 500, got %d", c.DefaultBatchSize)
	}
	if strings.TrimSpace(c.AudioDir) == "" {
		return fmt.Errorf("AUDIO_DIR cannot be empty")
	}
	u, err := url.Parse(c.TTSEndpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("TTS_ENDPOINT must be an http(s) URL, got %q", c.TTSEndpoint)
	}
	if c.TTSTimeoutSeconds < 1 {
		return fmt.Errorf("TTS_TIMEOUT_SECONDS must be at least 1, got %d", c.TTSTimeoutSeconds)
	}
	if strings.TrimSpace(c.DefaultVoice) == "" {
		return fmt.Errorf("DEFAULT_VOICE cannot be empty")
	}
	if c.RedisURL != "" && !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://")
	}
	if c.PrefetchWorkerCount < 1 {
		return fmt.Errorf("PREFETCH_WORKER_COUNT must be at least 1, got %d", c.PrefetchWorkerCount)
	}
	if c.PrefetchQueueSize < 1 {
		return fmt.Errorf("PREFETCH_QUEUE_SIZE must be at least 1, got %d", c.PrefetchQueueSize)
	}
	if c.SessionTTLHours < 1 {
		return fmt.Errorf("SESSION_TTL_HOURS must be at least 1, got %d", c.SessionTTLHours)
	}
	if c.SweepIntervalMinutes < 1 {
		return fmt.Errorf("SWEEP_INTERVAL_MINUTES must be at least 1, got %d", c.SweepIntervalMinutes)
	}
	return nil
}

func (c Config) TTSTimeout() time.Duration {
	return time.Duration(c.TTSTimeoutSeconds) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
