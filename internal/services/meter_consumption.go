package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-rentals/internal/models"
	"github.com/sjperalta/fintera-rentals/internal/repository"
	"gorm.io/gorm"
)

// MeterConsumption is the metered usage of a unit between two consecutive periods
type MeterConsumption struct {
	Quantity     decimal.Decimal
	CurrentIndex decimal.Decimal
	FromDate     time.Time
	ToDate       time.Time
}

// MeterConsumptionResolver computes utility consumption from period meter readings
type MeterConsumptionResolver struct {
	readingRepo repository.MeterReadingRepository
}

func NewMeterConsumptionResolver(readingRepo repository.MeterReadingRepository) *MeterConsumptionResolver {
	return &MeterConsumptionResolver{readingRepo: readingRepo}
}

// ResolveConsumption returns the usage for period against the previous period.
// ok is false when either reading is missing or empty, or when usage is not positive.
func (r *MeterConsumptionResolver) ResolveConsumption(ctx context.Context, unitID uint, meterType models.MeterType, period models.Period) (MeterConsumption, bool, error) {
	previous := period.Previous()

	current, err := r.find(ctx, unitID, meterType, period)
	if err != nil || current == nil {
		return MeterConsumption{}, false, err
	}
	prior, err := r.find(ctx, unitID, meterType, previous)
	if err != nil || prior == nil {
		return MeterConsumption{}, false, err
	}

	currentIndex := current.TotalNewIndex()
	quantity := currentIndex.Sub(prior.TotalNewIndex())
	if !quantity.IsPositive() {
		return MeterConsumption{}, false, nil
	}

	return MeterConsumption{
		Quantity:     quantity,
		CurrentIndex: currentIndex,
		FromDate:     previous.FirstDay(),
		ToDate:       period.FirstDay(),
	}, true, nil
}

// find returns nil without error when the reading is absent or has no lines
func (r *MeterConsumptionResolver) find(ctx context.Context, unitID uint, meterType models.MeterType, period models.Period) (*models.MeterReading, error) {
	reading, err := r.readingRepo.FindByUnitTypePeriod(ctx, unitID, meterType, period.String())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s reading for unit %d period %s: %w", meterType, unitID, period, err)
	}
	if len(reading.Lines) == 0 {
		return nil, nil
	}
	return reading, nil
}
