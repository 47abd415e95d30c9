package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeterType identifies a metered utility
type MeterType string

// Meter type constants
const (
	MeterTypeElectricity MeterType = "electricity"
	MeterTypeWater       MeterType = "water"
)

// MeterReading is the recorded utility index of a unit for one period
type MeterReading struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	UnitID    uint               `gorm:"not null;uniqueIndex:idx_meter_readings_unit_type_period" json:"unit_id"`
	MeterType MeterType          `gorm:"type:varchar(20);not null;uniqueIndex:idx_meter_readings_unit_type_period" json:"meter_type"`
	Period    string             `gorm:"size:7;not null;uniqueIndex:idx_meter_readings_unit_type_period" json:"period"`
	ReadAt    *time.Time         `json:"read_at"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Lines     []MeterReadingLine `gorm:"foreignKey:MeterReadingID" json:"lines"`
}

// TableName specifies the table name for MeterReading
func (MeterReading) TableName() string {
	return "meter_readings"
}

// MeterReadingLine is the index of a single meter within a reading
type MeterReadingLine struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	MeterReadingID uint            `gorm:"not null;index" json:"meter_reading_id"`
	MeterCode      string          `gorm:"size:64" json:"meter_code"`
	PreviousIndex  decimal.Decimal `gorm:"type:decimal(15,3);not null;default:0" json:"previous_index"`
	NewIndex       decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"new_index"`
}

// TableName specifies the table name for MeterReadingLine
func (MeterReadingLine) TableName() string {
	return "meter_reading_lines"
}

// TotalNewIndex sums the new index across all meters of the reading
func (r *MeterReading) TotalNewIndex() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Lines {
		total = total.Add(l.NewIndex)
	}
	return total
}
