package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// JWT
	JWTSecret string

	// Storage
	StoragePath string

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string

	// Billing
	Billing BillingConfig
}

// BillingConfig holds the rent billing engine settings
type BillingConfig struct {
	ScanCron              string
	ScanConcurrency       int
	InvoiceDueDays        int
	OverdueGraceDays      int
	LateFeePercent        decimal.Decimal
	ScheduleUpcomingLimit int
}

// DefaultBillingConfig returns the billing settings used when no environment overrides exist
func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		ScanCron:              "0 0 * * *",
		ScanConcurrency:       4,
		InvoiceDueDays:        7,
		OverdueGraceDays:      5,
		LateFeePercent:        decimal.Zero,
		ScheduleUpcomingLimit: 50,
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	def := DefaultBillingConfig()
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		Billing: BillingConfig{
			ScanCron:              getEnv("BILLING_SCAN_CRON", def.ScanCron),
			ScanConcurrency:       getEnvAsInt("BILLING_SCAN_CONCURRENCY", def.ScanConcurrency),
			InvoiceDueDays:        getEnvAsInt("INVOICE_DUE_DAYS", def.InvoiceDueDays),
			OverdueGraceDays:      getEnvAsInt("OVERDUE_GRACE_DAYS", def.OverdueGraceDays),
			LateFeePercent:        getEnvAsDecimal("LATE_FEE_PERCENT", def.LateFeePercent),
			ScheduleUpcomingLimit: getEnvAsInt("SCHEDULE_UPCOMING_LIMIT", def.ScheduleUpcomingLimit),
		},
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	if err := cfg.Billing.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the billing settings for values the engine cannot run with
func (b BillingConfig) Validate() error {
	if _, err := cron.ParseStandard(b.ScanCron); err != nil {
		return fmt.Errorf("BILLING_SCAN_CRON is invalid: %w", err)
	}
	if b.ScanConcurrency < 1 {
		return fmt.Errorf("BILLING_SCAN_CONCURRENCY must be at least 1")
	}
	if b.InvoiceDueDays < 0 || b.OverdueGraceDays < 0 {
		return fmt.Errorf("INVOICE_DUE_DAYS and OVERDUE_GRACE_DAYS must not be negative")
	}
	if b.LateFeePercent.IsNegative() {
		return fmt.Errorf("LATE_FEE_PERCENT must not be negative")
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDecimal reads an environment variable as a decimal number
func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := decimal.NewFromString(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
