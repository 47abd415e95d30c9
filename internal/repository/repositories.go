package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Contract     ContractRepository
	Unit         UnitRepository
	MeterReading MeterReadingRepository
	Schedule     RentScheduleRepository
	Invoice      InvoiceRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Contract:     NewContractRepository(db),
		Unit:         NewUnitRepository(db),
		MeterReading: NewMeterReadingRepository(db),
		Schedule:     NewRentScheduleRepository(db),
		Invoice:      NewInvoiceRepository(db),
	}
}
