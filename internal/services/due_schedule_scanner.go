package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/sjperalta/fintera-rentals/internal/clock"
	"github.com/sjperalta/fintera-rentals/internal/models"
	"github.com/sjperalta/fintera-rentals/internal/repository"
	"github.com/sjperalta/fintera-rentals/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// ScanState is the phase of the due schedule scanner
type ScanState string

const (
	ScanStateIdle       ScanState = "idle"
	ScanStateCollecting ScanState = "collecting"
	ScanStateProcessing ScanState = "processing"
)

// ScanFailure describes one schedule that could not be billed
type ScanFailure struct {
	ScheduleID uint   `json:"schedule_id"`
	ContractID uint   `json:"contract_id"`
	Period     string `json:"period"`
	Error      string `json:"error"`
}

// ScanResult summarizes one due scan
type ScanResult struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Collected  int           `json:"collected"`
	Invoiced   int           `json:"invoiced"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	NotStarted int           `json:"not_started"`
	InvoiceIDs []uint        `json:"invoice_ids,omitempty"`
	Failures   []ScanFailure `json:"failures,omitempty"`
}

// DueScheduleScanner bills every pending schedule whose date has arrived
type DueScheduleScanner struct {
	scheduleRepo repository.RentScheduleRepository
	contractRepo repository.ContractRepository
	calculator   *InvoiceCalculator
	clock        clock.Clock
	concurrency  int

	runMu   sync.Mutex
	stateMu sync.RWMutex
	state   ScanState
	last    *ScanResult
}

func NewDueScheduleScanner(
	scheduleRepo repository.RentScheduleRepository,
	contractRepo repository.ContractRepository,
	calculator *InvoiceCalculator,
	clk clock.Clock,
	concurrency int,
) *DueScheduleScanner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DueScheduleScanner{
		scheduleRepo: scheduleRepo,
		contractRepo: contractRepo,
		calculator:   calculator,
		clock:        clk,
		concurrency:  concurrency,
		state:        ScanStateIdle,
	}
}

// Run performs one scan. Only one scan runs at a time; an overlapping call gets
// ErrScanInProgress. Once ctx is cancelled no further schedules are started, but
// calculations already running are allowed to finish.
func (s *DueScheduleScanner) Run(ctx context.Context) (*ScanResult, error) {
	if !s.runMu.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.runMu.Unlock()
	defer s.setState(ScanStateIdle)

	result := &ScanResult{RunID: uuid.NewString(), StartedAt: s.clock.Now()}

	s.setState(ScanStateCollecting)
	due, err := s.scheduleRepo.FindDue(ctx, models.DateOf(result.StartedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to collect due schedules: %w", err)
	}
	result.Collected = len(due)

	s.setState(ScanStateProcessing)
	inflight := context.WithoutCancel(ctx)

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i := range due {
		if ctx.Err() != nil {
			mu.Lock()
			result.NotStarted += len(due) - i
			mu.Unlock()
			break
		}

		schedule := due[i]
		g.Go(func() error {
			// the slot may free up only after shutdown began
			if ctx.Err() != nil {
				mu.Lock()
				result.NotStarted++
				mu.Unlock()
				return nil
			}

			invoice, err := s.ProcessSchedule(inflight, &schedule)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
				result.Failures = append(result.Failures, ScanFailure{
					ScheduleID: schedule.ID,
					ContractID: schedule.ContractID,
					Period:     schedule.Period().String(),
					Error:      err.Error(),
				})
				s.reportFailure(result.RunID, &schedule, err)
			case invoice == nil:
				result.Skipped++
			default:
				result.Invoiced++
				result.InvoiceIDs = append(result.InvoiceIDs, invoice.ID)
			}
			return nil
		})
	}
	_ = g.Wait()

	if result.NotStarted > 0 {
		logger.Warn(fmt.Sprintf("[Billing] Scan %s interrupted, %d schedules not started", result.RunID, result.NotStarted))
	}

	result.FinishedAt = s.clock.Now()
	logger.Info(fmt.Sprintf("[Billing] Scan %s finished: collected=%d invoiced=%d skipped=%d failed=%d",
		result.RunID, result.Collected, result.Invoiced, result.Skipped, result.Failed))

	s.stateMu.Lock()
	s.last = result
	s.stateMu.Unlock()
	return result, nil
}

// ProcessSchedule bills a single due schedule. It returns a nil invoice without
// error when the schedule needs no billing: already linked, not pending, or its
// contract is no longer active.
func (s *DueScheduleScanner) ProcessSchedule(ctx context.Context, schedule *models.RentSchedule) (*models.Invoice, error) {
	switch schedule.Status {
	case models.ScheduleStatusPending:
	case models.ScheduleStatusPaid, models.ScheduleStatusOverdue, models.ScheduleStatusCancelled:
		return nil, nil
	default:
		logger.Warn(fmt.Sprintf("[Billing] Schedule %d has unknown status %q, skipped", schedule.ID, schedule.Status))
		return nil, nil
	}

	if schedule.IsLinked() {
		return nil, nil
	}

	contract, err := s.contractRepo.FindByID(ctx, schedule.ContractID)
	if err != nil {
		return nil, lookupError(err, "contract %d of schedule %d", schedule.ContractID, schedule.ID)
	}

	switch contract.Status {
	case models.ContractStatusActive:
	case models.ContractStatusExpiringSoon, models.ContractStatusExpired, models.ContractStatusTerminated:
		logger.Info(fmt.Sprintf("[Billing] Schedule %d skipped, contract %d is %s", schedule.ID, contract.ID, contract.Status))
		return nil, nil
	default:
		logger.Warn(fmt.Sprintf("[Billing] Schedule %d skipped, contract %d has unknown status %q", schedule.ID, contract.ID, contract.Status))
		return nil, nil
	}

	return s.calculator.CalculateAndCreateInvoice(ctx, contract.ID, schedule.Period().String(), nil)
}

// TriggerManual bills one contract period on operator request. Errors are returned to the caller.
func (s *DueScheduleScanner) TriggerManual(ctx context.Context, contractID uint, period string, actorID *uint) (*models.Invoice, error) {
	return s.calculator.CalculateAndCreateInvoice(ctx, contractID, period, actorID)
}

// State returns the current scan phase
func (s *DueScheduleScanner) State() ScanState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// LastResult returns the result of the most recent completed scan, or nil
func (s *DueScheduleScanner) LastResult() *ScanResult {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.last == nil {
		return nil
	}
	copied := *s.last
	copied.InvoiceIDs = append([]uint(nil), s.last.InvoiceIDs...)
	copied.Failures = append([]ScanFailure(nil), s.last.Failures...)
	return &copied
}

func (s *DueScheduleScanner) setState(state ScanState) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = state
}

func (s *DueScheduleScanner) reportFailure(runID string, schedule *models.RentSchedule, err error) {
	logger.Error("[Billing] Failed to bill schedule",
		"run_id", runID,
		"schedule_id", schedule.ID,
		"contract_id", schedule.ContractID,
		"period", schedule.Period().String(),
		"error", err)

	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "billing_scan")
		scope.SetTag("run_id", runID)
		scope.SetContext("schedule", sentry.Context{
			"schedule_id": schedule.ID,
			"contract_id": schedule.ContractID,
			"period":      schedule.Period().String(),
		})
		hub.CaptureException(err)
	})
}
