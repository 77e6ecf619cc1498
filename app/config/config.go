// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSecret = "dev-insecure-session-secret"

type Config struct {
	Addr      string
	Env       string
	DataDir   string
	BackupDir string
	MediaDir  string

	SessionSecret string
	SessionTTL    time.Duration

	PageCacheTTL       time.Duration
	LoginRatePerMinute int
	LoginRateBurst     int
	MaxUploadBytes     int64

	// TrustedOrigins may post forms cross-origin, e.g. a proxy's
	// public URL.
	TrustedOrigins []string
}

// Load reads an optional .env file and then the process environment.
// Malformed numbers and durations fall back to their defaults.
func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "production")
	secret := getEnv("SESSION_SECRET", "")
	if secret == "" && env == "development" {
		secret = devSecret
	}

	return &Config{
		Addr:      getEnv("APP_ADDR", ":8080"),
		Env:       env,
		DataDir:   getEnv("DATA_DIR", "data/badger"),
		BackupDir: getEnv("BACKUP_DIR", "data/backups"),
		MediaDir:  getEnv("MEDIA_DIR", "data/media"),

		SessionSecret: secret,
		SessionTTL:    getDuration("SESSION_TTL", 14*24*time.Hour),

		PageCacheTTL:       getDuration("PAGE_CACHE_TTL", 20*time.Second),
		LoginRatePerMinute: getInt("LOGIN_RATE_PER_MINUTE", 10),
		LoginRateBurst:     getInt("LOGIN_RATE_BURST", 5),
		MaxUploadBytes:     int64(getInt("MAX_UPLOAD_MB", 5)) << 20,

		TrustedOrigins: getList("TRUSTED_ORIGINS"),
	}
}

// Development reports whether APP_ENV is "development".
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

// getList splits a comma separated value, dropping blanks.
func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
