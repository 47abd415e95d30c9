package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sjperalta/fintera-rentals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConsumption(t *testing.T) {
	period := models.Period{Year: 2025, Month: 2}

	tests := []struct {
		name     string
		previous []string
		current  []string
		wantOK   bool
		wantQty  string
	}{
		{name: "positive usage", previous: []string{"100"}, current: []string{"120"}, wantOK: true, wantQty: "20"},
		{name: "sums meters", previous: []string{"40", "60"}, current: []string{"50", "75"}, wantOK: true, wantQty: "25"},
		{name: "missing previous", current: []string{"120"}},
		{name: "missing current", previous: []string{"100"}},
		{name: "no usage", previous: []string{"100"}, current: []string{"100"}},
		{name: "meter reset", previous: []string{"100"}, current: []string{"5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readings := newFakeMeterReadingRepository()
			if tt.previous != nil {
				readings.add(1, models.MeterTypeElectricity, "2025-01", tt.previous...)
			}
			if tt.current != nil {
				readings.add(1, models.MeterTypeElectricity, "2025-02", tt.current...)
			}

			usage, ok, err := NewMeterConsumptionResolver(readings).ResolveConsumption(context.Background(), 1, models.MeterTypeElectricity, period)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, usage.Quantity.Equal(dec(tt.wantQty)), "quantity %s", usage.Quantity)
				assert.Equal(t, day(2025, 1, 1), usage.FromDate)
				assert.Equal(t, day(2025, 2, 1), usage.ToDate)
			}
		})
	}
}

func TestResolveConsumption_EmptyReadingIsAbsent(t *testing.T) {
	readings := newFakeMeterReadingRepository()
	readings.add(1, models.MeterTypeWater, "2025-01", "10")
	readings.add(1, models.MeterTypeWater, "2025-02")

	_, ok, err := NewMeterConsumptionResolver(readings).ResolveConsumption(context.Background(), 1, models.MeterTypeWater, models.Period{Year: 2025, Month: 2})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveConsumption_JanuaryUsesDecember(t *testing.T) {
	readings := newFakeMeterReadingRepository()
	readings.add(1, models.MeterTypeWater, "2024-12", "30")
	readings.add(1, models.MeterTypeWater, "2025-01", "42")

	usage, ok, err := NewMeterConsumptionResolver(readings).ResolveConsumption(context.Background(), 1, models.MeterTypeWater, models.Period{Year: 2025, Month: 1})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, usage.Quantity.Equal(dec("12")))
	assert.Contains(t, readings.lookups, "2024-12")
	assert.Equal(t, day(2024, 12, 1), usage.FromDate)
}

func TestResolveConsumption_StoreError(t *testing.T) {
	readings := newFakeMeterReadingRepository()
	readings.err = errors.New("db down")

	_, ok, err := NewMeterConsumptionResolver(readings).ResolveConsumption(context.Background(), 1, models.MeterTypeWater, models.Period{Year: 2025, Month: 1})
	assert.Error(t, err)
	assert.False(t, ok)
}
