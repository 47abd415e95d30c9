package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-rentals/internal/models"
)

// Schedule events
const (
	EventMarkPaid    = "mark_paid"
	EventMarkOverdue = "mark_overdue"
	EventCancel      = "cancel"
)

// ScheduleFSM wraps a rent schedule with its state machine
type ScheduleFSM struct {
	schedule *models.RentSchedule
	fsm      *fsm.FSM
}

// NewScheduleFSM creates a new rent schedule state machine
func NewScheduleFSM(schedule *models.RentSchedule) *ScheduleFSM {
	sfsm := &ScheduleFSM{
		schedule: schedule,
	}

	pending := string(models.ScheduleStatusPending)
	overdue := string(models.ScheduleStatusOverdue)

	sfsm.fsm = fsm.NewFSM(
		string(schedule.Status),
		fsm.Events{
			// pending/overdue → paid
			{Name: EventMarkPaid, Src: []string{pending, overdue}, Dst: string(models.ScheduleStatusPaid)},

			// pending → overdue (grace period elapsed)
			{Name: EventMarkOverdue, Src: []string{pending}, Dst: overdue},

			// pending → cancelled (contract terminated)
			{Name: EventCancel, Src: []string{pending}, Dst: string(models.ScheduleStatusCancelled)},
		},
		fsm.Callbacks{},
	)

	return sfsm
}

// MarkPaid records the payment id and transitions the schedule to paid
func (s *ScheduleFSM) MarkPaid(ctx context.Context, paymentID uint) error {
	if !s.schedule.MayMarkPaid() {
		return fmt.Errorf("%w: schedule %d cannot be paid in state %s", ErrTransitionNotAllowed, s.schedule.ID, s.schedule.Status)
	}

	if err := s.fsm.Event(ctx, EventMarkPaid); err != nil {
		return fmt.Errorf("failed to mark schedule paid: %w", err)
	}

	s.schedule.Status = models.ScheduleStatus(s.fsm.Current())
	s.schedule.PaymentID = &paymentID
	return nil
}

// MarkOverdue transitions the schedule to overdue and applies the late fee once
func (s *ScheduleFSM) MarkOverdue(ctx context.Context, today time.Time, graceDays int, lateFeePercent decimal.Decimal) error {
	if !s.schedule.MayMarkOverdue(today, graceDays) {
		return fmt.Errorf("%w: schedule %d is not overdue", ErrTransitionNotAllowed, s.schedule.ID)
	}

	if err := s.fsm.Event(ctx, EventMarkOverdue); err != nil {
		return fmt.Errorf("failed to mark schedule overdue: %w", err)
	}

	s.schedule.Status = models.ScheduleStatus(s.fsm.Current())
	if lateFeePercent.IsPositive() && s.schedule.LateFee.IsZero() {
		s.schedule.LateFee = models.RoundMoney(s.schedule.AmountDue.Mul(lateFeePercent).Div(decimal.NewFromInt(100)))
	}
	return nil
}

// Cancel transitions an unbilled pending schedule to cancelled
func (s *ScheduleFSM) Cancel(ctx context.Context) error {
	if !s.schedule.MayCancel() {
		return fmt.Errorf("%w: schedule %d cannot be cancelled in state %s", ErrTransitionNotAllowed, s.schedule.ID, s.schedule.Status)
	}

	if err := s.fsm.Event(ctx, EventCancel); err != nil {
		return fmt.Errorf("failed to cancel schedule: %w", err)
	}

	s.schedule.Status = models.ScheduleStatus(s.fsm.Current())
	return nil
}

// Current returns the current state
func (s *ScheduleFSM) Current() string {
	return s.fsm.Current()
}

// Can checks if a transition is possible
func (s *ScheduleFSM) Can(event string) bool {
	return s.fsm.Can(event)
}
