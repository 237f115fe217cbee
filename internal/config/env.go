// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "CALMMATE_PORT"
	EnvLogLevel        = "CALMMATE_LOG_LEVEL"
	EnvShutdownTimeout = "CALMMATE_SHUTDOWN_TIMEOUT"
	EnvEnvironment     = "CALMMATE_ENVIRONMENT"

	// Data
	EnvDataDir            = "CALMMATE_DATA_DIR"
	EnvLocationDataPath   = "CALMMATE_LOCATION_DATA"
	EnvUniversityDataPath = "CALMMATE_UNIVERSITY_DATA"

	// Chat
	EnvChatTimeout    = "CALMMATE_CHAT_TIMEOUT"
	EnvNuanceTimeout  = "CALMMATE_NUANCE_TIMEOUT"
	EnvMaxMessageSize = "CALMMATE_MAX_MESSAGE_SIZE"

	// Rate Limits
	EnvChatRateBurst  = "CALMMATE_CHAT_RATE_BURST"
	EnvChatRateRefill = "CALMMATE_CHAT_RATE_REFILL"
	EnvLLMRateBurst   = "CALMMATE_LLM_RATE_BURST"
	EnvLLMRateRefill  = "CALMMATE_LLM_RATE_REFILL"
	EnvLLMRateDaily   = "CALMMATE_LLM_RATE_DAILY"

	// LLM Feature
	EnvLLMEnabled          = "CALMMATE_LLM_ENABLED"
	EnvLLMProviders        = "CALMMATE_LLM_PROVIDERS"
	EnvLLMMaxAttempts      = "CALMMATE_LLM_MAX_ATTEMPTS"
	EnvNuanceOracleEnabled = "CALMMATE_NUANCE_ORACLE_ENABLED"
	EnvGeminiAPIKey        = "CALMMATE_GEMINI_API_KEY"
	EnvGroqAPIKey          = "CALMMATE_GROQ_API_KEY"
	EnvCerebrasAPIKey      = "CALMMATE_CEREBRAS_API_KEY"
	EnvGeminiReplyModels   = "CALMMATE_GEMINI_REPLY_MODELS"
	EnvGroqReplyModels     = "CALMMATE_GROQ_REPLY_MODELS"
	EnvCerebrasReplyModels = "CALMMATE_CEREBRAS_REPLY_MODELS"
	EnvGeminiOracleModel   = "CALMMATE_GEMINI_ORACLE_MODEL"
	EnvGroqOracleModel     = "CALMMATE_GROQ_ORACLE_MODEL"
	EnvCerebrasOracleModel = "CALMMATE_CEREBRAS_ORACLE_MODEL"

	// R2 Reference Data Feature
	EnvR2Enabled         = "CALMMATE_R2_ENABLED"
	EnvR2AccountID       = "CALMMATE_R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "CALMMATE_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "CALMMATE_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "CALMMATE_R2_BUCKET_NAME"
	EnvR2LocationKey     = "CALMMATE_R2_LOCATION_KEY"
	EnvR2UniversityKey   = "CALMMATE_R2_UNIVERSITY_KEY"
	EnvR2SnapshotKey     = "CALMMATE_R2_SNAPSHOT_KEY"

	// Sentry Feature
	EnvSentryEnabled    = "CALMMATE_SENTRY_ENABLED"
	EnvSentryDSN        = "CALMMATE_SENTRY_DSN"
	EnvSentryRelease    = "CALMMATE_SENTRY_RELEASE"
	EnvSentrySampleRate = "CALMMATE_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled  = "CALMMATE_BETTERSTACK_ENABLED"
	EnvBetterStackToken    = "CALMMATE_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "CALMMATE_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "CALMMATE_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "CALMMATE_METRICS_USERNAME"
	EnvMetricsPassword    = "CALMMATE_METRICS_PASSWORD"
)
