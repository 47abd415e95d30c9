package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-rentals/internal/models"
	"gorm.io/gorm"
)

// RentScheduleRepository defines the interface for rent schedule data access
type RentScheduleRepository interface {
	FindByID(ctx context.Context, id uint) (*models.RentSchedule, error)
	FindByContract(ctx context.Context, contractID uint) ([]models.RentSchedule, error)
	Create(ctx context.Context, schedule *models.RentSchedule) error
	Update(ctx context.Context, schedule *models.RentSchedule) error
	ExistsForDate(ctx context.Context, contractID uint, date time.Time) (bool, error)
	FindDue(ctx context.Context, asOf time.Time) ([]models.RentSchedule, error)
	FindUpcoming(ctx context.Context, from time.Time, limit int) ([]models.RentSchedule, error)
	FindUnlinkedByContractAndPeriod(ctx context.Context, contractID uint, period models.Period) (*models.RentSchedule, error)
	LinkInvoice(ctx context.Context, scheduleID, invoiceID uint) (bool, error)
	FindOverdueCandidates(ctx context.Context, cutoff time.Time) ([]models.RentSchedule, error)
	FindCancellableByContract(ctx context.Context, contractID uint, from time.Time) ([]models.RentSchedule, error)
}

type rentScheduleRepository struct {
	db *gorm.DB
}

// NewRentScheduleRepository creates a new rent schedule repository
func NewRentScheduleRepository(db *gorm.DB) RentScheduleRepository {
	return &rentScheduleRepository{db: db}
}

func (r *rentScheduleRepository) FindByID(ctx context.Context, id uint) (*models.RentSchedule, error) {
	var schedule models.RentSchedule
	err := r.db.WithContext(ctx).First(&schedule, id).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *rentScheduleRepository) FindByContract(ctx context.Context, contractID uint) ([]models.RentSchedule, error) {
	var schedules []models.RentSchedule
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("scheduled_date ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *rentScheduleRepository) Create(ctx context.Context, schedule *models.RentSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

// Update writes the lifecycle columns of a schedule. invoice_id belongs to
// LinkInvoice and is never written here, so a stale copy cannot clear a link.
func (r *rentScheduleRepository) Update(ctx context.Context, schedule *models.RentSchedule) error {
	result := r.db.WithContext(ctx).
		Model(&models.RentSchedule{}).
		Where("id = ?", schedule.ID).
		Select("status", "payment_id", "late_fee", "reminder_sent_at", "updated_at").
		Updates(&models.RentSchedule{
			Status:         schedule.Status,
			PaymentID:      schedule.PaymentID,
			LateFee:        schedule.LateFee,
			ReminderSentAt: schedule.ReminderSentAt,
			UpdatedAt:      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *rentScheduleRepository) ExistsForDate(ctx context.Context, contractID uint, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RentSchedule{}).
		Where("contract_id = ? AND scheduled_date = ?", contractID, models.DateOf(date)).
		Count(&count).Error
	return count > 0, err
}

// FindDue returns every pending schedule dated on or before asOf. The result is not capped.
func (r *rentScheduleRepository) FindDue(ctx context.Context, asOf time.Time) ([]models.RentSchedule, error) {
	var schedules []models.RentSchedule
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_date <= ?", models.ScheduleStatusPending, models.DateOf(asOf)).
		Order("scheduled_date ASC, id ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *rentScheduleRepository) FindUpcoming(ctx context.Context, from time.Time, limit int) ([]models.RentSchedule, error) {
	var schedules []models.RentSchedule
	db := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_date >= ?", models.ScheduleStatusPending, models.DateOf(from)).
		Order("scheduled_date ASC, id ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&schedules).Error
	return schedules, err
}

// FindUnlinkedByContractAndPeriod returns the earliest schedule of the period that has no invoice yet
func (r *rentScheduleRepository) FindUnlinkedByContractAndPeriod(ctx context.Context, contractID uint, period models.Period) (*models.RentSchedule, error) {
	var schedule models.RentSchedule
	from := period.FirstDay()
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND invoice_id IS NULL", contractID).
		Where("status <> ?", models.ScheduleStatusCancelled).
		Where("scheduled_date >= ? AND scheduled_date < ?", from, from.AddDate(0, 1, 0)).
		Order("scheduled_date ASC").
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// LinkInvoice sets the invoice id of a schedule that has none. It reports false
// when the schedule was already linked or does not exist.
func (r *rentScheduleRepository) LinkInvoice(ctx context.Context, scheduleID, invoiceID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RentSchedule{}).
		Where("id = ? AND invoice_id IS NULL", scheduleID).
		Updates(map[string]interface{}{
			"invoice_id": invoiceID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FindOverdueCandidates returns unpaid pending schedules dated before cutoff
func (r *rentScheduleRepository) FindOverdueCandidates(ctx context.Context, cutoff time.Time) ([]models.RentSchedule, error) {
	var schedules []models.RentSchedule
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_id IS NULL AND scheduled_date < ?", models.ScheduleStatusPending, models.DateOf(cutoff)).
		Order("scheduled_date ASC").
		Find(&schedules).Error
	return schedules, err
}

// FindCancellableByContract returns pending, unbilled schedules of a contract dated on or after from
func (r *rentScheduleRepository) FindCancellableByContract(ctx context.Context, contractID uint, from time.Time) ([]models.RentSchedule, error) {
	var schedules []models.RentSchedule
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND status = ? AND invoice_id IS NULL", contractID, models.ScheduleStatusPending).
		Where("scheduled_date >= ?", models.DateOf(from)).
		Order("scheduled_date ASC").
		Find(&schedules).Error
	return schedules, err
}
