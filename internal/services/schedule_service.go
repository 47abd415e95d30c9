package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sjperalta/fintera-rentals/internal/clock"
	"github.com/sjperalta/fintera-rentals/internal/config"
	"github.com/sjperalta/fintera-rentals/internal/models"
	"github.com/sjperalta/fintera-rentals/internal/repository"
	"github.com/sjperalta/fintera-rentals/internal/statemachine"
	"github.com/sjperalta/fintera-rentals/pkg/logger"
	"gorm.io/gorm"
)

// ScheduleService materializes and maintains the rent schedules of contracts
type ScheduleService struct {
	scheduleRepo repository.RentScheduleRepository
	contractRepo repository.ContractRepository
	auditSvc     *AuditService
	clock        clock.Clock
	cfg          config.BillingConfig
}

func NewScheduleService(
	scheduleRepo repository.RentScheduleRepository,
	contractRepo repository.ContractRepository,
	auditSvc *AuditService,
	clk clock.Clock,
	cfg config.BillingConfig,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		contractRepo: contractRepo,
		auditSvc:     auditSvc,
		clock:        clk,
		cfg:          cfg,
	}
}

// GenerationResult summarizes a batch generation run
type GenerationResult struct {
	Contracts int             `json:"contracts"`
	Created   int             `json:"created"`
	Failed    int             `json:"failed"`
	Errors    map[uint]string `json:"errors,omitempty"`
}

// GenerateSchedules creates the missing rent schedules of an active contract and
// returns the ones created by this call. Contracts that are not active or lack a
// billing start date or payment cycle produce no schedules.
//
// Due dates step from the billing start date one payment cycle at a time until the
// expiry date (inclusive) or, without one, until one year after the start (exclusive).
func (s *ScheduleService) GenerateSchedules(ctx context.Context, contract *models.Contract) ([]models.RentSchedule, error) {
	if !contract.MayGenerateSchedules() {
		return nil, nil
	}

	start := models.DateOf(*contract.BillingStartDate)
	end, inclusive := start.AddDate(1, 0, 0), false
	if contract.ExpiryDate != nil {
		end, inclusive = models.DateOf(*contract.ExpiryDate), true
	}
	months, known := contract.PaymentCycle.Months()

	var created []models.RentSchedule
	for i := 0; ; i++ {
		if i > 0 && !known {
			logger.Warn(fmt.Sprintf("[Schedules] Contract %d has unsupported payment cycle %q, generation stopped after %s",
				contract.ID, *contract.PaymentCycle, start.Format("2006-01-02")))
			break
		}

		due := models.AddMonths(start, i*months)
		if due.After(end) || (!inclusive && due.Equal(end)) {
			break
		}

		exists, err := s.scheduleRepo.ExistsForDate(ctx, contract.ID, due)
		if err != nil {
			return created, fmt.Errorf("failed to check schedule for contract %d on %s: %w", contract.ID, due.Format("2006-01-02"), err)
		}
		if exists {
			continue
		}

		schedule := models.RentSchedule{
			ContractID:    contract.ID,
			UnitID:        contract.UnitID,
			TenantID:      contract.TenantID,
			ScheduledDate: due,
			AmountDue:     models.RoundMoney(contract.RentAmount),
			Status:        models.ScheduleStatusPending,
		}
		if err := s.scheduleRepo.Create(ctx, &schedule); err != nil {
			// a concurrent generator created the same date
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return created, fmt.Errorf("failed to create schedule for contract %d on %s: %w", contract.ID, due.Format("2006-01-02"), err)
		}
		created = append(created, schedule)
	}

	return created, nil
}

// GenerateForContract resolves the contract and generates its schedules
func (s *ScheduleService) GenerateForContract(ctx context.Context, contractID uint, actorID *uint) ([]models.RentSchedule, error) {
	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, lookupError(err, "contract %d", contractID)
	}

	created, err := s.GenerateSchedules(ctx, contract)
	if err != nil {
		return created, err
	}
	if len(created) > 0 {
		s.auditSvc.Record(ctx, actorID, models.AuditActionSchedulesGenerated, "Contract", contract.ID,
			fmt.Sprintf("created=%d", len(created)))
	}
	return created, nil
}

// GenerateForActiveContracts generates schedules for every active contract.
// A failing contract is logged and counted; the batch continues.
func (s *ScheduleService) GenerateForActiveContracts(ctx context.Context) (*GenerationResult, error) {
	contracts, err := s.contractRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active contracts: %w", err)
	}

	result := &GenerationResult{Contracts: len(contracts), Errors: map[uint]string{}}
	for i := range contracts {
		if ctx.Err() != nil {
			break
		}
		created, err := s.GenerateSchedules(ctx, &contracts[i])
		result.Created += len(created)
		if err != nil {
			logger.Error(fmt.Sprintf("[Schedules] Generation failed for contract %d: %v", contracts[i].ID, err))
			result.Failed++
			result.Errors[contracts[i].ID] = err.Error()
		}
	}

	logger.Info(fmt.Sprintf("[Schedules] Generated %d schedules for %d active contracts (%d failed)",
		result.Created, result.Contracts, result.Failed))
	return result, nil
}

// FindByContract returns all schedules of a contract ordered by date
func (s *ScheduleService) FindByContract(ctx context.Context, contractID uint) ([]models.RentSchedule, error) {
	if _, err := s.contractRepo.FindByID(ctx, contractID); err != nil {
		return nil, lookupError(err, "contract %d", contractID)
	}
	return s.scheduleRepo.FindByContract(ctx, contractID)
}

// FindByID returns a single schedule
func (s *ScheduleService) FindByID(ctx context.Context, id uint) (*models.RentSchedule, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "schedule %d", id)
	}
	return schedule, nil
}

// Upcoming returns the next pending schedules from today on. limit is capped at
// the configured upcoming limit.
func (s *ScheduleService) Upcoming(ctx context.Context, limit int) ([]models.RentSchedule, error) {
	if limit <= 0 || limit > s.cfg.ScheduleUpcomingLimit {
		limit = s.cfg.ScheduleUpcomingLimit
	}
	return s.scheduleRepo.FindUpcoming(ctx, s.Today(), limit)
}

// Due returns every pending schedule dated today or earlier
func (s *ScheduleService) Due(ctx context.Context) ([]models.RentSchedule, error) {
	return s.scheduleRepo.FindDue(ctx, s.Today())
}

// MarkOverdue moves pending schedules past the grace period to overdue and
// returns how many changed. Per-schedule failures are logged and skipped.
func (s *ScheduleService) MarkOverdue(ctx context.Context) (int, error) {
	today := s.Today()
	cutoff := today.AddDate(0, 0, -s.cfg.OverdueGraceDays)

	candidates, err := s.scheduleRepo.FindOverdueCandidates(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to load overdue candidates: %w", err)
	}

	marked := 0
	for i := range candidates {
		schedule := &candidates[i]
		if err := statemachine.NewScheduleFSM(schedule).MarkOverdue(ctx, today, s.cfg.OverdueGraceDays, s.cfg.LateFeePercent); err != nil {
			logger.Warn(fmt.Sprintf("[Schedules] Schedule %d not marked overdue: %v", schedule.ID, err))
			continue
		}
		if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
			logger.Error(fmt.Sprintf("[Schedules] Failed to save overdue schedule %d: %v", schedule.ID, err))
			continue
		}
		marked++
	}

	if marked > 0 {
		logger.Info(fmt.Sprintf("[Schedules] Marked %d schedules overdue", marked))
	}
	return marked, nil
}

// RecordPayment attaches an external payment to a schedule and marks it paid
func (s *ScheduleService) RecordPayment(ctx context.Context, scheduleID, paymentID uint, actorID *uint) (*models.RentSchedule, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, lookupError(err, "schedule %d", scheduleID)
	}

	if err := statemachine.NewScheduleFSM(schedule).MarkPaid(ctx, paymentID); err != nil {
		if errors.Is(err, statemachine.ErrTransitionNotAllowed) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		return nil, err
	}

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to save payment for schedule %d: %w", scheduleID, err)
	}

	s.auditSvc.Record(ctx, actorID, models.AuditActionPaymentRecorded, "RentSchedule", schedule.ID,
		fmt.Sprintf("payment=%d", paymentID))
	return schedule, nil
}

// Today returns the current date at midnight UTC
func (s *ScheduleService) Today() time.Time {
	return models.DateOf(s.clock.Now())
}
