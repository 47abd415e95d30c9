package handlers

import (
	"github.com/sjperalta/fintera-rentals/internal/services"
	"gorm.io/gorm"
)

// Handlers holds all handler instances
type Handlers struct {
	Health   *HealthHandler
	Contract *ContractHandler
	Schedule *ScheduleHandler
	Invoice  *InvoiceHandler
	Job      *JobHandler
	Audit    *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, db *gorm.DB) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(db),
		Contract: NewContractHandler(svcs.Contract, svcs.Schedule),
		Schedule: NewScheduleHandler(svcs.Schedule, svcs.Document),
		Invoice:  NewInvoiceHandler(svcs.Scanner, svcs.Calculator, svcs.Document),
		Job:      NewJobHandler(svcs.Job),
		Audit:    NewAuditHandler(svcs.Audit),
	}
}
