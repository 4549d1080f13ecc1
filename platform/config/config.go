// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides settings for the Redis cache.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq scheduler.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetMonitoringSweepInterval() time.Duration
	GetDigestInterval() time.Duration
	GetRateAlertCooldown() time.Duration
	GetDigestTopN() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketExports() string
	IsMinIOEnabled() bool
}

// SMTPConfig provides settings for outgoing broker email.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	IsEmailEnabled() bool
}

// ScoringConfig provides the opportunity scorer options.
type ScoringConfig interface {
	GetAssumedRateSpread() float64
	GetRequireCurrentRate() bool
	GetDefaultTermYears() int
	GetScoringProfilePath() string
}

// MarketRateConfig provides market rate lookup settings.
type MarketRateConfig interface {
	GetDefaultLoanProduct() string
	GetMarketRateCacheTTL() time.Duration
}

// BriefingConfig provides settings for LLM call briefings.
type BriefingConfig interface {
	GetGeminiAPIKey() string
	GetBriefingModel() string
	IsBriefingEnabled() bool
}

// PhoneConfig provides the default region for phone normalization.
type PhoneConfig interface {
	GetDefaultPhoneRegion() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	JWTAccessSecret         string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	MonitoringSweepInterval time.Duration
	DigestInterval          time.Duration
	RateAlertCooldown       time.Duration
	DigestTopN              int
	MinIOEndpoint           string
	MinIOAccessKey          string
	MinIOSecretKey          string
	MinIOUseSSL             bool
	MinIOMaxFileSize        int64
	MinioBucketExports      string
	SMTPHost                string
	SMTPPort                int
	SMTPUsername            string
	SMTPPassword            string
	EmailFromName           string
	EmailFromAddress        string
	AssumedRateSpread       float64
	RequireCurrentRate      bool
	DefaultTermYears        int
	ScoringProfilePath      string
	DefaultLoanProduct      string
	MarketRateCacheTTL      time.Duration
	GeminiAPIKey            string
	BriefingModel           string
	DefaultPhoneRegion      string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// GetEnv returns the deployment environment name.
func (c *Config) GetEnv() string { return c.Env }

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string                  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int                   { return c.AsynqConcurrency }
func (c *Config) GetMonitoringSweepInterval() time.Duration { return c.MonitoringSweepInterval }
func (c *Config) GetDigestInterval() time.Duration          { return c.DigestInterval }
func (c *Config) GetRateAlertCooldown() time.Duration       { return c.RateAlertCooldown }
func (c *Config) GetDigestTopN() int                        { return c.DigestTopN }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64    { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketExports() string { return c.MinioBucketExports }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) IsEmailEnabled() bool        { return c.SMTPHost != "" }

// ScoringConfig implementation
func (c *Config) GetAssumedRateSpread() float64 { return c.AssumedRateSpread }
func (c *Config) GetRequireCurrentRate() bool   { return c.RequireCurrentRate }
func (c *Config) GetDefaultTermYears() int      { return c.DefaultTermYears }
func (c *Config) GetScoringProfilePath() string { return c.ScoringProfilePath }

// MarketRateConfig implementation
func (c *Config) GetDefaultLoanProduct() string        { return c.DefaultLoanProduct }
func (c *Config) GetMarketRateCacheTTL() time.Duration { return c.MarketRateCacheTTL }

// BriefingConfig implementation
func (c *Config) GetGeminiAPIKey() string  { return c.GeminiAPIKey }
func (c *Config) GetBriefingModel() string { return c.BriefingModel }
func (c *Config) IsBriefingEnabled() bool  { return c.GeminiAPIKey != "" }

// PhoneConfig implementation
func (c *Config) GetDefaultPhoneRegion() string { return c.DefaultPhoneRegion }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		JWTAccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:        mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		MonitoringSweepInterval: mustDuration(getEnv("MONITORING_SWEEP_INTERVAL", "1h")),
		DigestInterval:          mustDuration(getEnv("OPPORTUNITY_DIGEST_INTERVAL", "24h")),
		RateAlertCooldown:       mustDuration(getEnv("RATE_ALERT_COOLDOWN", "72h")),
		DigestTopN:              mustInt(getEnv("OPPORTUNITY_DIGEST_TOP_N", "10")),
		MinIOEndpoint:           getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:          getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:          getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:             strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:        mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinioBucketExports:      getEnv("MINIO_BUCKET_EXPORTS", "call-lists"),
		SMTPHost:                getEnv("SMTP_HOST", ""),
		SMTPPort:                mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:            getEnv("SMTP_USERNAME", ""),
		SMTPPassword:            getEnv("SMTP_PASSWORD", ""),
		EmailFromName:           getEnv("EMAIL_FROM_NAME", "Broker Portal"),
		EmailFromAddress:        getEnv("EMAIL_FROM_ADDRESS", ""),
		AssumedRateSpread:       mustFloat(getEnv("SCORING_ASSUMED_RATE_SPREAD", "1.0")),
		RequireCurrentRate:      strings.EqualFold(getEnv("SCORING_REQUIRE_CURRENT_RATE", "false"), "true"),
		DefaultTermYears:        mustInt(getEnv("SCORING_DEFAULT_TERM_YEARS", "30")),
		ScoringProfilePath:      getEnv("SCORING_PROFILE_PATH", ""),
		DefaultLoanProduct:      getEnv("DEFAULT_LOAN_PRODUCT", "30yr_fixed"),
		MarketRateCacheTTL:      mustDuration(getEnv("MARKET_RATE_CACHE_TTL", "15m")),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		BriefingModel:           getEnv("BRIEFING_MODEL", "gemini-2.5-flash"),
		DefaultPhoneRegion:      getEnv("DEFAULT_PHONE_REGION", "US"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.IsEmailEnabled() && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when SMTP_HOST is set")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.DefaultTermYears <= 0 {
		return nil, fmt.Errorf("SCORING_DEFAULT_TERM_YEARS must be positive")
	}
	if cfg.AssumedRateSpread < 0 {
		return nil, fmt.Errorf("SCORING_ASSUMED_RATE_SPREAD cannot be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
