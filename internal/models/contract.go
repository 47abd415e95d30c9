package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus is the lifecycle state of a lease contract
type ContractStatus string

// Contract status constants
const (
	ContractStatusActive       ContractStatus = "active"
	ContractStatusExpiringSoon ContractStatus = "expiring_soon"
	ContractStatusExpired      ContractStatus = "expired"
	ContractStatusTerminated   ContractStatus = "terminated"
)

// Valid reports whether s is one of the known contract statuses
func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusActive, ContractStatusExpiringSoon, ContractStatusExpired, ContractStatusTerminated:
		return true
	}
	return false
}

// PaymentCycle is how often rent falls due
type PaymentCycle string

// Payment cycle constants
const (
	PaymentCycleMonthly   PaymentCycle = "monthly"
	PaymentCycleQuarterly PaymentCycle = "quarterly"
)

// Months returns the number of calendar months in one cycle, or false for an unknown cycle
func (c PaymentCycle) Months() (int, bool) {
	switch c {
	case PaymentCycleMonthly:
		return 1, true
	case PaymentCycleQuarterly:
		return 3, true
	}
	return 0, false
}

// Contract represents a signed lease for a unit
type Contract struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	UnitID           uint             `gorm:"not null;index" json:"unit_id"`
	TenantID         uint             `gorm:"not null;index" json:"tenant_id"`
	Status           ContractStatus   `gorm:"type:varchar(20);default:active;index" json:"status"`
	RentAmount       decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"rent_amount"`
	PaymentCycle     *PaymentCycle    `gorm:"type:varchar(20)" json:"payment_cycle"`
	BillingStartDate *time.Time       `gorm:"type:date" json:"billing_start_date"`
	ExpiryDate       *time.Time       `gorm:"type:date;index" json:"expiry_date"`
	DiscountPercent  *decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percent"`
	DiscountAmount   *decimal.Decimal `gorm:"type:decimal(15,2)" json:"discount_amount"`
	OccupantCount    int              `gorm:"default:1" json:"occupant_count"`
	TerminatedAt     *time.Time       `json:"terminated_at"`
	Note             *string          `gorm:"type:text" json:"note"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	// Associations
	Unit      Unit           `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	Schedules []RentSchedule `gorm:"foreignKey:ContractID" json:"schedules,omitempty"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// IsActive returns true if the contract is currently billable
func (c *Contract) IsActive() bool {
	return c.Status == ContractStatusActive
}

// MayGenerateSchedules returns true if rent schedules can be materialized for the contract
func (c *Contract) MayGenerateSchedules() bool {
	return c.IsActive() && c.BillingStartDate != nil && c.PaymentCycle != nil
}

// MayExpire returns true if the contract reached its expiry date as of the given day
func (c *Contract) MayExpire(today time.Time) bool {
	if c.Status != ContractStatusActive && c.Status != ContractStatusExpiringSoon {
		return false
	}
	if c.ExpiryDate == nil {
		return false
	}
	return DateOf(*c.ExpiryDate).Before(DateOf(today))
}

// MayTerminate returns true if the contract can be terminated early
func (c *Contract) MayTerminate() bool {
	return c.Status == ContractStatusActive || c.Status == ContractStatusExpiringSoon
}

// Occupants returns the number of occupants billed for shared services.
// Contracts without a recorded count are billed for one occupant.
func (c *Contract) Occupants() int {
	if c.OccupantCount <= 0 {
		return 1
	}
	return c.OccupantCount
}

// EffectiveDiscount returns the contract discount, falling back to the unit's
func (c *Contract) EffectiveDiscount(unit *Unit) (percent, amount *decimal.Decimal) {
	percent, amount = c.DiscountPercent, c.DiscountAmount
	if percent == nil && amount == nil && unit != nil {
		percent, amount = unit.DiscountPercent, unit.DiscountAmount
	}
	return percent, amount
}

// ContractResponse is the JSON response format for contracts
type ContractResponse struct {
	ID               uint            `json:"id"`
	UnitID           uint            `json:"unit_id"`
	UnitCode         string          `json:"unit_code,omitempty"`
	TenantID         uint            `json:"tenant_id"`
	Status           ContractStatus  `json:"status"`
	RentAmount       decimal.Decimal `json:"rent_amount"`
	PaymentCycle     *PaymentCycle   `json:"payment_cycle"`
	BillingStartDate *time.Time      `json:"billing_start_date"`
	ExpiryDate       *time.Time      `json:"expiry_date"`
	OccupantCount    int             `json:"occupant_count"`
	TerminatedAt     *time.Time      `json:"terminated_at,omitempty"`
}

// ToResponse converts Contract to ContractResponse
func (c *Contract) ToResponse() ContractResponse {
	resp := ContractResponse{
		ID:               c.ID,
		UnitID:           c.UnitID,
		TenantID:         c.TenantID,
		Status:           c.Status,
		RentAmount:       c.RentAmount,
		PaymentCycle:     c.PaymentCycle,
		BillingStartDate: c.BillingStartDate,
		ExpiryDate:       c.ExpiryDate,
		OccupantCount:    c.Occupants(),
		TerminatedAt:     c.TerminatedAt,
	}
	if c.Unit.ID != 0 {
		resp.UnitCode = c.Unit.Code
	}
	return resp
}
