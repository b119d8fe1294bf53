// internal/config/config.go
//
// Environment-driven configuration. A `.env` file in the working directory is
// loaded first (development); real environment variables win.
//
// Environment variables:
//   PORT, LOG_LEVEL, LOG_FORMAT, DB_PATH, JWT_SECRET, JWT_EXPIRES_DAYS,
//   COOKIE_NAME, CLIENT_ORIGIN, NODE_ENV, DAILY_SALT, WORDS_DIR, GAME_IDLE_MINUTES

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	LogLevel     string
	LogFormat    string // "json" | "console"
	DBPath       string
	JWTSecret    string
	JWTExpiry    time.Duration
	CookieName   string
	AnonCookie   string
	ClientOrigin string
	Production   bool
	DailySalt    string
	WordsDir     string
	GameIdle     time.Duration // live games unused this long are evicted
}

// Load reads .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	days := getInt("JWT_EXPIRES_DAYS", 14)
	idle := getInt("GAME_IDLE_MINUTES", 60)
	return Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		DBPath:       getEnv("DB_PATH", "./data/app.db"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiry:    time.Duration(days) * 24 * time.Hour,
		CookieName:   getEnv("COOKIE_NAME", "middlefiddle_token"),
		AnonCookie:   "middlefiddle_anon",
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:   os.Getenv("NODE_ENV") == "production",
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		WordsDir:     os.Getenv("WORDS_DIR"),
		GameIdle:     time.Duration(idle) * time.Minute,
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getInt returns k as a positive int, or def if unset or invalid.
func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
