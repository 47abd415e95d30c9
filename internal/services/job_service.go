package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sjperalta/fintera-rentals/internal/jobs"
	"github.com/sjperalta/fintera-rentals/pkg/logger"
)

type JobService struct {
	worker      *jobs.Worker
	scheduleSvc *ScheduleService
	contractSvc *ContractService
	scanner     *DueScheduleScanner
	documentSvc *DocumentService
}

func NewJobService(
	worker *jobs.Worker,
	scheduleSvc *ScheduleService,
	contractSvc *ContractService,
	scanner *DueScheduleScanner,
	documentSvc *DocumentService,
) *JobService {
	return &JobService{
		worker:      worker,
		scheduleSvc: scheduleSvc,
		contractSvc: contractSvc,
		scanner:     scanner,
		documentSvc: documentSvc,
	}
}

// RunDailyBilling is the scheduled billing job: schedule generation, the due
// scan, the overdue sweep and contract expiry, in that order. A failing step is
// logged and the remaining steps still run.
func (s *JobService) RunDailyBilling(ctx context.Context) error {
	var errs []error

	if _, err := s.scheduleSvc.GenerateForActiveContracts(ctx); err != nil {
		errs = append(errs, fmt.Errorf("schedule generation: %w", err))
	}

	result, err := s.scanner.Run(ctx)
	switch {
	case errors.Is(err, ErrScanInProgress):
		logger.Warn("[Scheduler] Due scan already running, skipping this activation")
	case err != nil:
		errs = append(errs, fmt.Errorf("due scan: %w", err))
	default:
		s.archiveInvoices(result.InvoiceIDs)
	}

	if _, err := s.scheduleSvc.MarkOverdue(ctx); err != nil {
		errs = append(errs, fmt.Errorf("overdue sweep: %w", err))
	}

	if _, err := s.contractSvc.ExpireContracts(ctx); err != nil {
		errs = append(errs, fmt.Errorf("contract expiry: %w", err))
	}

	return errors.Join(errs...)
}

// RunScan runs the due scan now and archives the invoices it produced
func (s *JobService) RunScan(ctx context.Context) (*ScanResult, error) {
	result, err := s.scanner.Run(ctx)
	if err != nil {
		return nil, err
	}
	s.archiveInvoices(result.InvoiceIDs)
	return result, nil
}

// ArchiveInvoice queues the PDF archive of one invoice on the worker pool
func (s *JobService) ArchiveInvoice(invoiceID uint) {
	s.archiveInvoices([]uint{invoiceID})
}

func (s *JobService) archiveInvoices(ids []uint) {
	if s.documentSvc == nil {
		return
	}
	for _, id := range ids {
		accepted := s.worker.Enqueue(func(ctx context.Context) error {
			path, err := s.documentSvc.ArchiveInvoicePDF(ctx, id)
			if err != nil {
				return fmt.Errorf("archive invoice %d: %w", id, err)
			}
			logger.Info(fmt.Sprintf("[Billing] Invoice %d archived at %s", id, path))
			return nil
		})
		if !accepted {
			logger.Warn(fmt.Sprintf("[Billing] Invoice %d not archived, worker stopped", id))
		}
	}
}

func (s *JobService) GetStatus() map[string]interface{} {
	stats := s.worker.GetStats()
	return map[string]interface{}{
		"active_jobs":    stats.ActiveJobs,
		"completed_jobs": stats.CompletedJobs,
		"failed_jobs":    stats.FailedJobs,
		"queue_length":   stats.QueueLength,
		"workers":        stats.Workers,
		"last_run_at":    stats.LastRunAt,
		"scan_state":     s.scanner.State(),
		"last_scan":      s.scanner.LastResult(),
	}
}
