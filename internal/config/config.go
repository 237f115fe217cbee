// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a
// .env file) and validates them before the server starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	Environment     string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir            string // SQLite directory
	LocationDataPath   string // empty = embedded default table
	UniversityDataPath string // empty = embedded default table

	// Chat Configuration
	ChatTimeout    time.Duration
	NuanceTimeout  time.Duration
	MaxMessageSize int // maximum message length in bytes

	// Rate Limits
	ChatRateBurst  float64 // burst tokens per client IP
	ChatRateRefill float64 // tokens per second per client IP
	LLMRateBurst   float64
	LLMRateRefill  float64 // tokens per hour
	LLMRateDaily   int     // 0 = disabled

	// LLM Configuration
	LLMEnabled          bool
	NuanceOracleEnabled bool
	LLMProviders        []string // fallback order, e.g. ["gemini", "groq"]
	LLMMaxAttempts      int
	GeminiAPIKey        string
	GroqAPIKey          string
	CerebrasAPIKey      string
	GeminiReplyModels   []string // empty = genai defaults
	GroqReplyModels     []string
	CerebrasReplyModels []string
	GeminiOracleModel   string
	GroqOracleModel     string
	CerebrasOracleModel string

	// R2 Reference Data
	R2Enabled         bool
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2LocationKey     string
	R2UniversityKey   string
	R2SnapshotKey     string // account database backups

	// Sentry
	SentryEnabled    bool
	SentryDSN        string
	SentryRelease    string
	SentrySampleRate float64

	// Better Stack
	BetterStackEnabled  bool
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string
	MetricsPassword    string
}

// Load reads configuration from environment variables.
// It attempts to load .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		Environment:     getEnv(EnvEnvironment, "production"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		DataDir:            getEnv(EnvDataDir, getDefaultDataDir()),
		LocationDataPath:   getEnv(EnvLocationDataPath, ""),
		UniversityDataPath: getEnv(EnvUniversityDataPath, ""),

		ChatTimeout:    getDurationEnv(EnvChatTimeout, ChatProcessing),
		NuanceTimeout:  getDurationEnv(EnvNuanceTimeout, NuanceOracle),
		MaxMessageSize: getIntEnv(EnvMaxMessageSize, 4000),

		ChatRateBurst:  getFloatEnv(EnvChatRateBurst, 10.0),
		ChatRateRefill: getFloatEnv(EnvChatRateRefill, 0.5),
		LLMRateBurst:   getFloatEnv(EnvLLMRateBurst, 200.0),
		LLMRateRefill:  getFloatEnv(EnvLLMRateRefill, 100.0),
		LLMRateDaily:   getIntEnv(EnvLLMRateDaily, 2000),

		LLMEnabled:          getBoolEnv(EnvLLMEnabled, false),
		NuanceOracleEnabled: getBoolEnv(EnvNuanceOracleEnabled, true),
		LLMProviders:        getListEnv(EnvLLMProviders, []string{"gemini", "groq", "cerebras"}),
		LLMMaxAttempts:      getIntEnv(EnvLLMMaxAttempts, 2),
		GeminiAPIKey:        getEnv(EnvGeminiAPIKey, ""),
		GroqAPIKey:          getEnv(EnvGroqAPIKey, ""),
		CerebrasAPIKey:      getEnv(EnvCerebrasAPIKey, ""),
		GeminiReplyModels:   getListEnv(EnvGeminiReplyModels, nil),
		GroqReplyModels:     getListEnv(EnvGroqReplyModels, nil),
		CerebrasReplyModels: getListEnv(EnvCerebrasReplyModels, nil),
		GeminiOracleModel:   getEnv(EnvGeminiOracleModel, ""),
		GroqOracleModel:     getEnv(EnvGroqOracleModel, ""),
		CerebrasOracleModel: getEnv(EnvCerebrasOracleModel, ""),

		R2Enabled:         getBoolEnv(EnvR2Enabled, false),
		R2AccountID:       getEnv(EnvR2AccountID, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2LocationKey:     getEnv(EnvR2LocationKey, "reference/locations.json.zst"),
		R2UniversityKey:   getEnv(EnvR2UniversityKey, "reference/universities.json.zst"),
		R2SnapshotKey:     getEnv(EnvR2SnapshotKey, "backups/calmmate.db.zst"),

		SentryEnabled:    getBoolEnv(EnvSentryEnabled, false),
		SentryDSN:        getEnv(EnvSentryDSN, ""),
		SentryRelease:    getEnv(EnvSentryRelease, ""),
		SentrySampleRate: getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackEnabled:  getBoolEnv(EnvBetterStackEnabled, false),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),
	}

	for i, p := range cfg.LLMProviders {
		cfg.LLMProviders[i] = strings.ToLower(p)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if c.ChatTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvChatTimeout, c.ChatTimeout))
	}
	if c.NuanceTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvNuanceTimeout, c.NuanceTimeout))
	}
	if c.MaxMessageSize <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvMaxMessageSize, c.MaxMessageSize))
	}
	if c.ChatRateBurst <= 0 || c.ChatRateRefill <= 0 {
		errs = append(errs, errors.New("chat rate limit burst and refill must be positive"))
	}
	if c.LLMRateDaily < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvLLMRateDaily, c.LLMRateDaily))
	}

	if c.LLMEnabled {
		if c.LLMMaxAttempts < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", EnvLLMMaxAttempts, c.LLMMaxAttempts))
		}
		if !c.HasLLMProvider() {
			errs = append(errs, errors.New(EnvLLMEnabled+" is set but no provider API key is configured"))
		}
		for _, p := range c.LLMProviders {
			switch p {
			case "gemini", "groq", "cerebras":
			default:
				errs = append(errs, fmt.Errorf("%s: unknown provider %q", EnvLLMProviders, p))
			}
		}
	}

	if c.R2Enabled {
		if c.R2AccountID == "" || c.R2AccessKeyID == "" || c.R2SecretAccessKey == "" || c.R2BucketName == "" {
			errs = append(errs, errors.New(EnvR2Enabled+" requires account id, access key, secret and bucket"))
		}
	}

	if c.SentryEnabled && c.SentryDSN == "" {
		errs = append(errs, errors.New(EnvSentryEnabled+" requires "+EnvSentryDSN))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}

	if c.BetterStackEnabled && c.BetterStackToken == "" {
		errs = append(errs, errors.New(EnvBetterStackEnabled+" requires "+EnvBetterStackToken))
	}

	if c.MetricsAuthEnabled && c.MetricsPassword == "" {
		errs = append(errs, errors.New(EnvMetricsAuthEnabled+" requires "+EnvMetricsPassword))
	}

	return errors.Join(errs...)
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping blanks.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "calmmate.db")
}

// HasLLMProvider returns true if at least one LLM provider is configured.
func (c *Config) HasLLMProvider() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != "" || c.CerebrasAPIKey != ""
}

// BetterStackActive reports whether remote log shipping should be wired.
func (c *Config) BetterStackActive() bool {
	return c.BetterStackEnabled && c.BetterStackToken != ""
}
