package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sjperalta/fintera-rentals/internal/clock"
	"github.com/sjperalta/fintera-rentals/internal/models"
	"github.com/sjperalta/fintera-rentals/internal/repository"
	"github.com/sjperalta/fintera-rentals/internal/statemachine"
	"github.com/sjperalta/fintera-rentals/pkg/logger"
)

type ContractService struct {
	repo         repository.ContractRepository
	scheduleRepo repository.RentScheduleRepository
	auditSvc     *AuditService
	clock        clock.Clock
}

func NewContractService(
	repo repository.ContractRepository,
	scheduleRepo repository.RentScheduleRepository,
	auditSvc *AuditService,
	clk clock.Clock,
) *ContractService {
	return &ContractService{
		repo:         repo,
		scheduleRepo: scheduleRepo,
		auditSvc:     auditSvc,
		clock:        clk,
	}
}

// FindByID gets a contract by ID with its unit
func (s *ContractService) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	contract, err := s.repo.FindByIDWithUnit(ctx, id)
	if err != nil {
		return nil, lookupError(err, "contract %d", id)
	}
	return contract, nil
}

// ExpireContracts moves running contracts past their expiry date to expired
// and returns how many changed. Per-contract failures are logged and skipped.
func (s *ContractService) ExpireContracts(ctx context.Context) (int, error) {
	today := models.DateOf(s.clock.Now())
	contracts, err := s.repo.FindExpirable(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to load expirable contracts: %w", err)
	}

	expired := 0
	for i := range contracts {
		contract := &contracts[i]
		if err := statemachine.NewContractFSM(contract).Expire(ctx, today); err != nil {
			logger.Warn(fmt.Sprintf("[Contracts] Contract %d not expired: %v", contract.ID, err))
			continue
		}
		if err := s.repo.Update(ctx, contract); err != nil {
			logger.Error(fmt.Sprintf("[Contracts] Failed to save expired contract %d: %v", contract.ID, err))
			continue
		}
		s.auditSvc.Record(ctx, nil, models.AuditActionContractExpired, "Contract", contract.ID, "")
		expired++
	}

	if expired > 0 {
		logger.Info(fmt.Sprintf("[Contracts] Expired %d contracts", expired))
	}
	return expired, nil
}

// Terminate ends a contract early and cancels its pending, unbilled schedules
// dated after the termination day. It returns the number of cancelled schedules.
func (s *ContractService) Terminate(ctx context.Context, contractID uint, actorID *uint) (*models.Contract, int, error) {
	contract, err := s.repo.FindByID(ctx, contractID)
	if err != nil {
		return nil, 0, lookupError(err, "contract %d", contractID)
	}

	now := s.clock.Now()
	if err := statemachine.NewContractFSM(contract).Terminate(ctx, now); err != nil {
		if errors.Is(err, statemachine.ErrTransitionNotAllowed) {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		return nil, 0, err
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, 0, fmt.Errorf("failed to save terminated contract %d: %w", contractID, err)
	}

	schedules, err := s.scheduleRepo.FindCancellableByContract(ctx, contractID, models.DateOf(now).AddDate(0, 0, 1))
	if err != nil {
		return contract, 0, fmt.Errorf("failed to load schedules of contract %d: %w", contractID, err)
	}

	cancelled := 0
	for i := range schedules {
		schedule := &schedules[i]
		if err := statemachine.NewScheduleFSM(schedule).Cancel(ctx); err != nil {
			logger.Warn(fmt.Sprintf("[Contracts] Schedule %d not cancelled: %v", schedule.ID, err))
			continue
		}
		if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
			return contract, cancelled, fmt.Errorf("failed to cancel schedule %d: %w", schedule.ID, err)
		}
		cancelled++
	}

	s.auditSvc.Record(ctx, actorID, models.AuditActionContractTerminated, "Contract", contract.ID,
		fmt.Sprintf("cancelled_schedules=%d", cancelled))
	return contract, cancelled, nil
}
