package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds all process-wide settings, read from the environment once at
// startup. It never changes after Load; interval changes require a restart.
type Config struct {
	DatabaseURL string
	Port        string

	BotEnabled            bool
	GenerateIntervalHours float64
	ScrapeIntervalHours   float64
	TrendRetentionDays    int

	LLMBaseURL string
	LLMToken   string
	LLMModel   string

	// Optional social network posting API. Publishing is disabled when the
	// token is empty.
	SocialAPIBaseURL string
	SocialAPIToken   string

	// Bcrypt hash of the reviewer password. The plaintext is not retained.
	ReviewerPasswordHash []byte

	SessionSecret string
}

// IronyLevels is the fixed vocabulary for candidate irony tags.
var IronyLevels = []string{"literal", "ironic", "post-ironic", "meta-ironic", "absurdist"}

// MemeSubreddits are the forum boards monitored by the trend collector.
var MemeSubreddits = []string{
	"memes",
	"dankmemes",
	"MemeEconomy",
	"me_irl",
	"surrealmemes",
	"antimeme",
}

// Load reads and validates the configuration. A missing required variable is
// an error at boot rather than a failure mid-run.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             getEnv("PORT", "8080"),
		LLMBaseURL:       getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMToken:         os.Getenv("LLM_TOKEN"),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4o-mini"),
		SocialAPIBaseURL: getEnv("SOCIAL_API_BASE_URL", "https://api.twitter.com/2"),
		SocialAPIToken:   os.Getenv("SOCIAL_API_TOKEN"),
		SessionSecret:    getEnv("SESSION_SECRET", "secret_key_change_me"),
	}

	var err error
	if cfg.BotEnabled, err = getEnvBool("BOT_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.GenerateIntervalHours, err = getEnvFloat("GENERATE_INTERVAL_HOURS", 4); err != nil {
		return nil, err
	}
	if cfg.ScrapeIntervalHours, err = getEnvFloat("TREND_SCRAPE_INTERVAL_HOURS", 1); err != nil {
		return nil, err
	}
	if cfg.TrendRetentionDays, err = getEnvInt("TREND_RETENTION_DAYS", 7); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GenerateIntervalHours <= 0 {
		return nil, fmt.Errorf("GENERATE_INTERVAL_HOURS must be positive, got %v", cfg.GenerateIntervalHours)
	}
	if cfg.ScrapeIntervalHours <= 0 {
		return nil, fmt.Errorf("TREND_SCRAPE_INTERVAL_HOURS must be positive, got %v", cfg.ScrapeIntervalHours)
	}
	if cfg.TrendRetentionDays <= 0 {
		return nil, fmt.Errorf("TREND_RETENTION_DAYS must be positive, got %d", cfg.TrendRetentionDays)
	}
	if cfg.BotEnabled && cfg.LLMToken == "" {
		return nil, fmt.Errorf("LLM_TOKEN is required when BOT_ENABLED=true")
	}

	reviewerPassword := os.Getenv("REVIEWER_PASSWORD")
	if reviewerPassword == "" {
		return nil, fmt.Errorf("REVIEWER_PASSWORD is required")
	}
	cfg.ReviewerPasswordHash, err = bcrypt.GenerateFromPassword([]byte(reviewerPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash reviewer password: %w", err)
	}

	return cfg, nil
}

// GenerateInterval returns the generation period. Fractional hours are allowed.
func (c *Config) GenerateInterval() time.Duration {
	return time.Duration(c.GenerateIntervalHours * float64(time.Hour))
}

// ScrapeInterval returns the trend scrape period.
func (c *Config) ScrapeInterval() time.Duration {
	return time.Duration(c.ScrapeIntervalHours * float64(time.Hour))
}

// TrendRetention returns the window after which trend records are pruned.
func (c *Config) TrendRetention() time.Duration {
	return time.Duration(c.TrendRetentionDays) * 24 * time.Hour
}

// PostingEnabled reports whether the social posting client is configured.
func (c *Config) PostingEnabled() bool {
	return c.SocialAPIToken != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return i, nil
}
