package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonths_ClampsToMonthEnd(t *testing.T) {
	anchor := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		months int
		want   string
	}{
		{0, "2025-01-31"},
		{1, "2025-02-28"},
		{2, "2025-03-31"},
		{3, "2025-04-30"},
		{13, "2026-02-28"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AddMonths(anchor, tt.months).Format("2006-01-02"), "months=%d", tt.months)
	}

	leap := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-29", AddMonths(leap, 1).Format("2006-01-02"))
}

func TestPeriod_Previous(t *testing.T) {
	p, err := ParsePeriod("2025-01")
	require.NoError(t, err)

	assert.Equal(t, "2024-12", p.Previous().String())
	assert.Equal(t, "2025-02", Period{Year: 2025, Month: time.March}.Previous().String())
}

func TestPeriod_Boundaries(t *testing.T) {
	p := Period{Year: 2024, Month: time.February}

	assert.Equal(t, "2024-02-01", p.FirstDay().Format("2006-01-02"))
	assert.Equal(t, "2024-02-29", p.LastDay().Format("2006-01-02"))
	assert.Equal(t, p, PeriodOf(time.Date(2024, time.February, 17, 13, 0, 0, 0, time.UTC)))
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, s := range []string{"", "2025", "2025-13", "25-01", "2025/01", "2025-01-01"} {
		_, err := ParsePeriod(s)
		assert.Error(t, err, s)
	}
}

func TestRoundMoney_HalfUp(t *testing.T) {
	assert.Equal(t, "10.13", RoundMoney(decimal.RequireFromString("10.125")).String())
	assert.Equal(t, "10.12", RoundMoney(decimal.RequireFromString("10.124")).String())
	assert.Equal(t, "70000", RoundMoney(decimal.NewFromInt(70000)).String())
}

func TestContract_EffectiveDiscount(t *testing.T) {
	unitPercent := decimal.NewFromInt(10)
	unit := &Unit{DiscountPercent: &unitPercent}

	c := &Contract{}
	percent, amount := c.EffectiveDiscount(unit)
	require.NotNil(t, percent)
	assert.True(t, percent.Equal(unitPercent))
	assert.Nil(t, amount)

	fixed := decimal.NewFromInt(50000)
	c.DiscountAmount = &fixed
	percent, amount = c.EffectiveDiscount(unit)
	assert.Nil(t, percent)
	require.NotNil(t, amount)
	assert.True(t, amount.Equal(fixed))
}

func TestRentSchedule_MayMarkOverdue(t *testing.T) {
	s := &RentSchedule{
		ScheduledDate: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		Status:        ScheduleStatusPending,
	}

	assert.False(t, s.MayMarkOverdue(time.Date(2025, time.March, 6, 23, 0, 0, 0, time.UTC), 5))
	assert.True(t, s.MayMarkOverdue(time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC), 5))
	assert.Equal(t, 6, s.OverdueDays(time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)))
}
