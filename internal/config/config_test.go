package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_BillingDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rentals")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0 0 * * *", cfg.Billing.ScanCron)
	assert.Equal(t, 4, cfg.Billing.ScanConcurrency)
	assert.Equal(t, 7, cfg.Billing.InvoiceDueDays)
	assert.Equal(t, 5, cfg.Billing.OverdueGraceDays)
	assert.True(t, cfg.Billing.LateFeePercent.IsZero())
	assert.Equal(t, 50, cfg.Billing.ScheduleUpcomingLimit)
	assert.Equal(t, "dev-secret-change-in-production", cfg.JWTSecret)
}

func TestLoad_BillingOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rentals")
	t.Setenv("BILLING_SCAN_CRON", "30 2 * * *")
	t.Setenv("BILLING_SCAN_CONCURRENCY", "8")
	t.Setenv("LATE_FEE_PERCENT", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "30 2 * * *", cfg.Billing.ScanCron)
	assert.Equal(t, 8, cfg.Billing.ScanConcurrency)
	assert.True(t, cfg.Billing.LateFeePercent.Equal(decimal.RequireFromString("2.5")))
}

func TestLoad_RejectsInvalidCron(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rentals")
	t.Setenv("BILLING_SCAN_CRON", "every midnight")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestBillingConfig_Validate(t *testing.T) {
	cfg := DefaultBillingConfig()
	assert.NoError(t, cfg.Validate())

	cfg.ScanConcurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultBillingConfig()
	cfg.LateFeePercent = decimal.NewFromInt(-1)
	assert.Error(t, cfg.Validate())
}
