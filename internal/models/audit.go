package models

import (
	"time"
)

// Audit actions recorded by the billing engine
const (
	AuditActionInvoiceIssued      = "INVOICE_ISSUED"
	AuditActionSchedulesGenerated = "SCHEDULES_GENERATED"
	AuditActionPaymentRecorded    = "PAYMENT_RECORDED"
	AuditActionContractTerminated = "CONTRACT_TERMINATED"
	AuditActionContractExpired    = "CONTRACT_EXPIRED"
)

// AuditLog represents a billing audit entry. ActorID is nil for scheduled runs.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   *uint     `gorm:"index" json:"actor_id"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	Entity    string    `gorm:"size:50;not null;index:idx_audit_logs_entity" json:"entity"` // Invoice, Contract, RentSchedule
	EntityID  uint      `gorm:"index:idx_audit_logs_entity" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
