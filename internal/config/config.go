// Package config reads process configuration from the environment.
// main loads .env first (godotenv), so values may come from either.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const DefaultJWTSecret = "dev_secret_change_me"

// Config holds application configuration.
type Config struct {
	Port     string
	LogLevel string
	AppEnv   string

	DatabaseURL string
	SeedWords   bool
	WordsFile   string

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string

	GroqAPIKey    string
	GroqBaseURL   string
	GroqModel     string
	OracleTimeout time.Duration
	OracleRetries int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CronSecret        string
	ReminderEmails    []string
	ReminderFromEmail string
	ReminderCron      string
	AppURL            string
	AWSRegion         string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "5175"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		AppEnv:   getEnv("APP_ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", "./data/wordplay.db"),
		SeedWords:   getBool("SEED_WORDS", true),
		WordsFile:   os.Getenv("WORDS_FILE"),

		JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTExpiresDays: getInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "wordplay_token"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),

		GroqAPIKey:    os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:   os.Getenv("GROQ_BASE_URL"),
		GroqModel:     os.Getenv("GROQ_MODEL"),
		OracleTimeout: getDuration("ORACLE_TIMEOUT", 8*time.Second),
		OracleRetries: getInt("ORACLE_RETRIES", 1),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		CronSecret:        os.Getenv("CRON_SECRET"),
		ReminderEmails:    splitEmails(os.Getenv("REMINDER_EMAILS")),
		ReminderFromEmail: os.Getenv("REMINDER_FROM_EMAIL"),
		ReminderCron:      os.Getenv("REMINDER_CRON"),
		AppURL:            strings.TrimRight(getEnv("APP_URL", "http://localhost:5173"), "/"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
	}
}

// Production reports whether cookies must be Secure.
func (c *Config) Production() bool { return strings.EqualFold(c.AppEnv, "production") }

// Validate rejects configurations that must not reach production.
func (c *Config) Validate() error {
	if c.Production() && c.JWTSecret == DefaultJWTSecret {
		return errors.New("config: JWT_SECRET must be set in production")
	}
	if c.JWTExpiresDays <= 0 {
		return errors.New("config: JWT_EXPIRES_DAYS must be positive")
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is empty")
	}
	return nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func getBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

// splitEmails parses a comma-separated recipient list, lowercased.
func splitEmails(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
