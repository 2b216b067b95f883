package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DataPath     string
	DataURL      string
	Port         string
	HTTPTimeout  time.Duration
	LoadRetries  int
	PopupDismiss time.Duration
	LogLevel     slog.Level
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load(files...)
	return FromEnv()
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	dismiss := 300 * time.Millisecond
	if v := os.Getenv("POPUP_DISMISS_MS"); v != "" {
		if d, err := time.ParseDuration(v + "ms"); err == nil && d >= 0 {
			dismiss = d
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		DataPath:     envOr("DATA_PATH", "data/marketing-data.json"),
		DataURL:      os.Getenv("DATA_URL"),
		Port:         envOr("PORT", "8080"),
		HTTPTimeout:  to,
		LoadRetries:  atoiOr(os.Getenv("LOAD_RETRIES"), 2),
		PopupDismiss: dismiss,
		LogLevel:     lvl,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return def
	}
	return v
}
