package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	PageSize       int
	SessionFile    string
	// Redis session storage, used when set (shared bot/CI logins)
	RedisURL string
}

func Load() Config {
	// A CLI has no process manager injecting env; pick up a local .env first.
	_ = godotenv.Load()

	return Config{
		APIBaseURL:     getenv("PARLO_API_URL", "http://localhost:5000/api"),
		RequestTimeout: time.Duration(getenvInt("PARLO_REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		PageSize:       getenvInt("PARLO_PAGE_SIZE", 10),
		SessionFile:    getenv("PARLO_SESSION_FILE", defaultSessionFile()),
		RedisURL:       getenv("PARLO_REDIS_URL", ""),
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".parlo-session.json"
	}
	return filepath.Join(dir, "parlo", "session.json")
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
