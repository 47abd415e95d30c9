package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-rentals/internal/models"
	"gorm.io/gorm"
)

// ContractRepository defines the interface for contract data access
type ContractRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Contract, error)
	FindByIDWithUnit(ctx context.Context, id uint) (*models.Contract, error)
	FindActive(ctx context.Context) ([]models.Contract, error)
	FindExpirable(ctx context.Context, today time.Time) ([]models.Contract, error)
	Create(ctx context.Context, contract *models.Contract) error
	Update(ctx context.Context, contract *models.Contract) error
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByIDWithUnit(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Joins("Unit").
		First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// FindActive returns every contract currently in the active state
func (r *contractRepository) FindActive(ctx context.Context) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ContractStatusActive).
		Order("id ASC").
		Find(&contracts).Error
	return contracts, err
}

// FindExpirable returns running contracts whose expiry date is before today
func (r *contractRepository) FindExpirable(ctx context.Context, today time.Time) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.ContractStatus{models.ContractStatusActive, models.ContractStatusExpiringSoon}).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", models.DateOf(today)).
		Order("expiry_date ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *contractRepository) Update(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Omit("Unit", "Schedules").Save(contract).Error
}

// UnitRepository defines the interface for unit data access
type UnitRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Unit, error)
	Create(ctx context.Context, unit *models.Unit) error
}

type unitRepository struct {
	db *gorm.DB
}

// NewUnitRepository creates a new unit repository
func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) FindByID(ctx context.Context, id uint) (*models.Unit, error) {
	var unit models.Unit
	err := r.db.WithContext(ctx).First(&unit, id).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *unitRepository) Create(ctx context.Context, unit *models.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

// MeterReadingRepository defines the interface for meter reading data access
type MeterReadingRepository interface {
	FindByUnitTypePeriod(ctx context.Context, unitID uint, meterType models.MeterType, period string) (*models.MeterReading, error)
	Create(ctx context.Context, reading *models.MeterReading) error
}

type meterReadingRepository struct {
	db *gorm.DB
}

// NewMeterReadingRepository creates a new meter reading repository
func NewMeterReadingRepository(db *gorm.DB) MeterReadingRepository {
	return &meterReadingRepository{db: db}
}

// FindByUnitTypePeriod returns gorm.ErrRecordNotFound when no reading was recorded
func (r *meterReadingRepository) FindByUnitTypePeriod(ctx context.Context, unitID uint, meterType models.MeterType, period string) (*models.MeterReading, error) {
	var reading models.MeterReading
	err := r.db.WithContext(ctx).
		Where("unit_id = ? AND meter_type = ? AND period = ?", unitID, meterType, period).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *meterReadingRepository) Create(ctx context.Context, reading *models.MeterReading) error {
	return r.db.WithContext(ctx).Create(reading).Error
}
