package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "LOG_FORMAT", "DB_PATH", "JWT_SECRET", "JWT_EXPIRES_DAYS",
		"COOKIE_NAME", "CLIENT_ORIGIN", "NODE_ENV", "DAILY_SALT", "WORDS_DIR", "GAME_IDLE_MINUTES"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Port != "5175" {
		t.Errorf("Port %q, want 5175", c.Port)
	}
	if c.JWTExpiry != 14*24*time.Hour {
		t.Errorf("JWTExpiry %v, want 14 days", c.JWTExpiry)
	}
	if c.Production {
		t.Error("Production should default to false")
	}
	if c.CookieName != "middlefiddle_token" || c.DailySalt != "local_dev_salt" {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.GameIdle != time.Hour {
		t.Errorf("GameIdle %v, want 1h", c.GameIdle)
	}
	if c.WordsDir != "" {
		t.Errorf("WordsDir %q, want empty", c.WordsDir)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_EXPIRES_DAYS", "3")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("WORDS_DIR", "/tmp/words")
	t.Setenv("GAME_IDLE_MINUTES", "5")
	c := FromEnv()
	if c.Port != "9000" || c.JWTExpiry != 3*24*time.Hour || !c.Production || c.WordsDir != "/tmp/words" || c.GameIdle != 5*time.Minute {
		t.Errorf("overrides not applied: %+v", c)
	}
}

func TestFromEnv_BadExpiry(t *testing.T) {
	t.Setenv("JWT_EXPIRES_DAYS", "soon")
	if c := FromEnv(); c.JWTExpiry != 14*24*time.Hour {
		t.Errorf("JWTExpiry %v, want default on bad input", c.JWTExpiry)
	}
}
