package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL    string
	HTTPAddr       string
	OpsAddr        string
	LogLevel       string
	Env            string // dev|prod
	SentryDSN      string
	JWTSecret      string
	SessionTTL     time.Duration
	RestoreTimeout time.Duration
	BotToken       string // empty disables telegram notifications
	SchoolYear     int
	Location       *time.Location
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Asia/Seoul")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	ttl, err := parseDuration(getenv("SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	restore, err := parseDuration(getenv("RESTORE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("RESTORE_TIMEOUT: %w", err)
	}

	year := time.Now().In(loc).Year()
	if v := os.Getenv("SCHOOL_YEAR"); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SCHOOL_YEAR: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:    mustEnv("DATABASE_URL"),
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		OpsAddr:        getenv("OPS_ADDR", ":9090"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Env:            getenv("ENV", "dev"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		JWTSecret:      mustEnv("JWT_SECRET"),
		SessionTTL:     ttl,
		RestoreTimeout: restore,
		BotToken:       os.Getenv("BOT_TOKEN"),
		SchoolYear:     year,
		Location:       loc,
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("bad duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
