package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit represents a rentable apartment unit and its service rates
type Unit struct {
	ID                     uint             `gorm:"primaryKey" json:"id"`
	Code                   string           `gorm:"uniqueIndex;not null" json:"code"`
	Name                   string           `gorm:"not null" json:"name"`
	Address                *string          `json:"address"`
	ElectricityPricePerKwh *decimal.Decimal `gorm:"type:decimal(15,2)" json:"electricity_price_per_kwh"`
	WaterPricePerM3        *decimal.Decimal `gorm:"type:decimal(15,2)" json:"water_price_per_m3"`
	InternetFee            *decimal.Decimal `gorm:"type:decimal(15,2)" json:"internet_fee"`
	CommonServiceFee       *decimal.Decimal `gorm:"type:decimal(15,2)" json:"common_service_fee"`
	VATPercent             *decimal.Decimal `gorm:"column:vat_percent;type:decimal(5,2)" json:"vat_percent"`
	DiscountPercent        *decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percent"`
	DiscountAmount         *decimal.Decimal `gorm:"type:decimal(15,2)" json:"discount_amount"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// TableName specifies the table name for Unit
func (Unit) TableName() string {
	return "units"
}

// HasRate reports whether an optional rate is configured with a positive value
func HasRate(rate *decimal.Decimal) bool {
	return rate != nil && rate.IsPositive()
}

// VAT returns the configured VAT percentage, zero when unset
func (u *Unit) VAT() decimal.Decimal {
	if u.VATPercent == nil {
		return decimal.Zero
	}
	return *u.VATPercent
}
