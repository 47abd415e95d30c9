package services

import (
	"github.com/sjperalta/fintera-rentals/internal/clock"
	"github.com/sjperalta/fintera-rentals/internal/config"
	"github.com/sjperalta/fintera-rentals/internal/jobs"
	"github.com/sjperalta/fintera-rentals/internal/repository"
	"github.com/sjperalta/fintera-rentals/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Audit      *AuditService
	Schedule   *ScheduleService
	Contract   *ContractService
	Meter      *MeterConsumptionResolver
	Calculator *InvoiceCalculator
	Scanner    *DueScheduleScanner
	Document   *DocumentService
	Job        *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config, db *gorm.DB, clk clock.Clock) *Services {
	auditSvc := NewAuditService(db)
	resolver := NewMeterConsumptionResolver(repos.MeterReading)

	calculator := NewInvoiceCalculator(repos.Contract, repos.Unit, repos.Invoice, repos.Schedule, resolver, auditSvc, cfg.Billing)
	scanner := NewDueScheduleScanner(repos.Schedule, repos.Contract, calculator, clk, cfg.Billing.ScanConcurrency)

	scheduleSvc := NewScheduleService(repos.Schedule, repos.Contract, auditSvc, clk, cfg.Billing)
	contractSvc := NewContractService(repos.Contract, repos.Schedule, auditSvc, clk)
	documentSvc := NewDocumentService(repos.Invoice, repos.Schedule, repos.Contract, storage)

	return &Services{
		Audit:      auditSvc,
		Schedule:   scheduleSvc,
		Contract:   contractSvc,
		Meter:      resolver,
		Calculator: calculator,
		Scanner:    scanner,
		Document:   documentSvc,
		Job:        NewJobService(worker, scheduleSvc, contractSvc, scanner, documentSvc),
	}
}
