package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleStatus is the payment state of a rent schedule
type ScheduleStatus string

// Schedule status constants
const (
	ScheduleStatusPending   ScheduleStatus = "pending"
	ScheduleStatusPaid      ScheduleStatus = "paid"
	ScheduleStatusOverdue   ScheduleStatus = "overdue"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// Valid reports whether s is one of the known schedule statuses
func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusPending, ScheduleStatusPaid, ScheduleStatusOverdue, ScheduleStatusCancelled:
		return true
	}
	return false
}

// RentSchedule is one expected rent payment for a contract
type RentSchedule struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ContractID     uint            `gorm:"not null;uniqueIndex:idx_rent_schedules_contract_date" json:"contract_id"`
	UnitID         uint            `gorm:"not null;index" json:"unit_id"`
	TenantID       uint            `gorm:"not null;index" json:"tenant_id"`
	ScheduledDate  time.Time       `gorm:"type:date;not null;uniqueIndex:idx_rent_schedules_contract_date;index" json:"scheduled_date"`
	AmountDue      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount_due"`
	Status         ScheduleStatus  `gorm:"type:varchar(20);default:pending;not null;index" json:"status"`
	InvoiceID      *uint           `gorm:"index" json:"invoice_id"`
	PaymentID      *uint           `gorm:"index" json:"payment_id"`
	ReminderSentAt *time.Time      `json:"reminder_sent_at"`
	LateFee        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"late_fee"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for RentSchedule
func (RentSchedule) TableName() string {
	return "rent_schedules"
}

// Period returns the billing period the schedule falls in
func (s *RentSchedule) Period() Period {
	return PeriodOf(s.ScheduledDate)
}

// IsLinked returns true once an invoice has been issued for the schedule
func (s *RentSchedule) IsLinked() bool {
	return s.InvoiceID != nil
}

// IsDue returns true if the schedule is pending and its date has arrived
func (s *RentSchedule) IsDue(today time.Time) bool {
	return s.Status == ScheduleStatusPending && !DateOf(s.ScheduledDate).After(DateOf(today))
}

// MayMarkPaid returns true if a payment can be recorded against the schedule
func (s *RentSchedule) MayMarkPaid() bool {
	return s.Status == ScheduleStatusPending || s.Status == ScheduleStatusOverdue
}

// MayMarkOverdue returns true if the schedule is unpaid past the grace period
func (s *RentSchedule) MayMarkOverdue(today time.Time, graceDays int) bool {
	if s.Status != ScheduleStatusPending || s.PaymentID != nil {
		return false
	}
	return DateOf(s.ScheduledDate).AddDate(0, 0, graceDays).Before(DateOf(today))
}

// MayCancel returns true if the schedule has not been billed or paid yet
func (s *RentSchedule) MayCancel() bool {
	return s.Status == ScheduleStatusPending && !s.IsLinked()
}

// OverdueDays returns the number of days past the scheduled date
func (s *RentSchedule) OverdueDays(today time.Time) int {
	if s.Status == ScheduleStatusPaid || s.Status == ScheduleStatusCancelled {
		return 0
	}
	days := int(DateOf(today).Sub(DateOf(s.ScheduledDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// RentScheduleResponse is the JSON response format for rent schedules
type RentScheduleResponse struct {
	ID            uint            `json:"id"`
	ContractID    uint            `json:"contract_id"`
	UnitID        uint            `json:"unit_id"`
	TenantID      uint            `json:"tenant_id"`
	ScheduledDate string          `json:"scheduled_date"`
	Period        string          `json:"period"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	LateFee       decimal.Decimal `json:"late_fee"`
	Status        ScheduleStatus  `json:"status"`
	InvoiceID     *uint           `json:"invoice_id"`
	PaymentID     *uint           `json:"payment_id"`
	OverdueDays   int             `json:"overdue_days"`
}

// ToResponse converts RentSchedule to RentScheduleResponse
func (s *RentSchedule) ToResponse(today time.Time) RentScheduleResponse {
	return RentScheduleResponse{
		ID:            s.ID,
		ContractID:    s.ContractID,
		UnitID:        s.UnitID,
		TenantID:      s.TenantID,
		ScheduledDate: s.ScheduledDate.Format("2006-01-02"),
		Period:        s.Period().String(),
		AmountDue:     s.AmountDue,
		LateFee:       s.LateFee,
		Status:        s.Status,
		InvoiceID:     s.InvoiceID,
		PaymentID:     s.PaymentID,
		OverdueDays:   s.OverdueDays(today),
	}
}
