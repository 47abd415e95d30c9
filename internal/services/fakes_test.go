package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-rentals/internal/config"
	"github.com/sjperalta/fintera-rentals/internal/models"
	"github.com/sjperalta/fintera-rentals/internal/repository"
	"gorm.io/gorm"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func uintPtr(v uint) *uint {
	return &v
}

func testBillingConfig() config.BillingConfig {
	return config.DefaultBillingConfig()
}

// fakeContractRepository keeps contracts in memory
type fakeContractRepository struct {
	repository.ContractRepository
	mu        sync.Mutex
	contracts map[uint]models.Contract
	units     map[uint]models.Unit
	findErr   error
	updated   int
}

func newFakeContractRepository(contracts ...models.Contract) *fakeContractRepository {
	r := &fakeContractRepository{contracts: map[uint]models.Contract{}, units: map[uint]models.Unit{}}
	for _, c := range contracts {
		r.contracts[c.ID] = c
	}
	return r
}

func (r *fakeContractRepository) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *fakeContractRepository) FindByIDWithUnit(ctx context.Context, id uint) (*models.Contract, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Unit = r.units[c.UnitID]
	return c, nil
}

func (r *fakeContractRepository) FindActive(ctx context.Context) ([]models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Contract
	for _, c := range r.contracts {
		if c.Status == models.ContractStatusActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeContractRepository) FindExpirable(ctx context.Context, today time.Time) ([]models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Contract
	for _, c := range r.contracts {
		if c.MayExpire(today) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeContractRepository) Update(ctx context.Context, contract *models.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[contract.ID] = *contract
	r.updated++
	return nil
}

func (r *fakeContractRepository) get(id uint) models.Contract {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contracts[id]
}

// fakeUnitRepository keeps units in memory
type fakeUnitRepository struct {
	repository.UnitRepository
	units map[uint]models.Unit
}

func newFakeUnitRepository(units ...models.Unit) *fakeUnitRepository {
	r := &fakeUnitRepository{units: map[uint]models.Unit{}}
	for _, u := range units {
		r.units[u.ID] = u
	}
	return r
}

func (r *fakeUnitRepository) FindByID(ctx context.Context, id uint) (*models.Unit, error) {
	u, ok := r.units[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

// fakeMeterReadingRepository keeps readings keyed by unit, type and period
type fakeMeterReadingRepository struct {
	repository.MeterReadingRepository
	readings map[string]models.MeterReading
	err      error
	lookups  []string
	mu       sync.Mutex
}

func newFakeMeterReadingRepository() *fakeMeterReadingRepository {
	return &fakeMeterReadingRepository{readings: map[string]models.MeterReading{}}
}

func readingKey(unitID uint, meterType models.MeterType, period string) string {
	return fmt.Sprintf("%d/%s/%s", unitID, meterType, period)
}

func (r *fakeMeterReadingRepository) add(unitID uint, meterType models.MeterType, period string, indexes ...string) {
	reading := models.MeterReading{UnitID: unitID, MeterType: meterType, Period: period}
	for _, idx := range indexes {
		reading.Lines = append(reading.Lines, models.MeterReadingLine{NewIndex: dec(idx)})
	}
	r.readings[readingKey(unitID, meterType, period)] = reading
}

func (r *fakeMeterReadingRepository) FindByUnitTypePeriod(ctx context.Context, unitID uint, meterType models.MeterType, period string) (*models.MeterReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, period)
	if r.err != nil {
		return nil, r.err
	}
	reading, ok := r.readings[readingKey(unitID, meterType, period)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &reading, nil
}

// fakeScheduleRepository keeps schedules in memory and enforces the (contract, date) uniqueness
type fakeScheduleRepository struct {
	repository.RentScheduleRepository
	mu        sync.Mutex
	schedules []models.RentSchedule
	nextID    uint
	existsErr map[uint]error
	onFindDue func()
}

func newFakeScheduleRepository(schedules ...models.RentSchedule) *fakeScheduleRepository {
	r := &fakeScheduleRepository{existsErr: map[uint]error{}}
	for _, s := range schedules {
		if s.ID > r.nextID {
			r.nextID = s.ID
		}
		r.schedules = append(r.schedules, s)
	}
	return r
}

func (r *fakeScheduleRepository) Create(ctx context.Context, schedule *models.RentSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schedules {
		if s.ContractID == schedule.ContractID && s.ScheduledDate.Equal(schedule.ScheduledDate) {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	schedule.ID = r.nextID
	r.schedules = append(r.schedules, *schedule)
	return nil
}

func (r *fakeScheduleRepository) Update(ctx context.Context, schedule *models.RentSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.schedules {
		if r.schedules[i].ID == schedule.ID {
			invoiceID := r.schedules[i].InvoiceID
			r.schedules[i] = *schedule
			r.schedules[i].InvoiceID = invoiceID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeScheduleRepository) FindByID(ctx context.Context, id uint) (*models.RentSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schedules {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeScheduleRepository) FindByContract(ctx context.Context, contractID uint) ([]models.RentSchedule, error) {
	return r.filter(func(s models.RentSchedule) bool { return s.ContractID == contractID }), nil
}

func (r *fakeScheduleRepository) ExistsForDate(ctx context.Context, contractID uint, date time.Time) (bool, error) {
	r.mu.Lock()
	err := r.existsErr[contractID]
	r.mu.Unlock()
	if err != nil {
		return false, err
	}
	return len(r.filter(func(s models.RentSchedule) bool {
		return s.ContractID == contractID && s.ScheduledDate.Equal(date)
	})) > 0, nil
}

func (r *fakeScheduleRepository) FindDue(ctx context.Context, asOf time.Time) ([]models.RentSchedule, error) {
	if r.onFindDue != nil {
		r.onFindDue()
	}
	return r.filter(func(s models.RentSchedule) bool {
		return s.Status == models.ScheduleStatusPending && !s.ScheduledDate.After(asOf)
	}), nil
}

func (r *fakeScheduleRepository) FindUpcoming(ctx context.Context, from time.Time, limit int) ([]models.RentSchedule, error) {
	out := r.filter(func(s models.RentSchedule) bool {
		return s.Status == models.ScheduleStatusPending && !s.ScheduledDate.Before(from)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeScheduleRepository) FindUnlinkedByContractAndPeriod(ctx context.Context, contractID uint, period models.Period) (*models.RentSchedule, error) {
	out := r.filter(func(s models.RentSchedule) bool {
		return s.ContractID == contractID && s.InvoiceID == nil &&
			s.Status != models.ScheduleStatusCancelled && s.Period() == period
	})
	if len(out) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &out[0], nil
}

func (r *fakeScheduleRepository) LinkInvoice(ctx context.Context, scheduleID, invoiceID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.schedules {
		if r.schedules[i].ID == scheduleID {
			if r.schedules[i].InvoiceID != nil {
				return false, nil
			}
			r.schedules[i].InvoiceID = &invoiceID
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeScheduleRepository) FindOverdueCandidates(ctx context.Context, cutoff time.Time) ([]models.RentSchedule, error) {
	return r.filter(func(s models.RentSchedule) bool {
		return s.Status == models.ScheduleStatusPending && s.PaymentID == nil && s.ScheduledDate.Before(cutoff)
	}), nil
}

func (r *fakeScheduleRepository) FindCancellableByContract(ctx context.Context, contractID uint, from time.Time) ([]models.RentSchedule, error) {
	return r.filter(func(s models.RentSchedule) bool {
		return s.ContractID == contractID && s.Status == models.ScheduleStatusPending &&
			s.InvoiceID == nil && !s.ScheduledDate.Before(from)
	}), nil
}

func (r *fakeScheduleRepository) filter(keep func(models.RentSchedule) bool) []models.RentSchedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RentSchedule
	for _, s := range r.schedules {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out
}

func (r *fakeScheduleRepository) all() []models.RentSchedule {
	return r.filter(func(models.RentSchedule) bool { return true })
}

// fakeInvoiceRepository is an in-memory ledger unique on (contract, period)
type fakeInvoiceRepository struct {
	repository.InvoiceRepository
	mu        sync.Mutex
	invoices  []models.Invoice
	created   int
	createErr error
	onCreate  func(ctx context.Context)
}

func (r *fakeInvoiceRepository) CreateIfAbsent(ctx context.Context, invoice *models.Invoice) (*models.Invoice, bool, error) {
	if r.onCreate != nil {
		r.onCreate(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, false, r.createErr
	}
	for _, inv := range r.invoices {
		if inv.ContractID == invoice.ContractID && inv.Period == invoice.Period {
			return &inv, false, nil
		}
	}
	invoice.ID = uint(len(r.invoices) + 1)
	r.invoices = append(r.invoices, *invoice)
	r.created++
	return invoice, true, nil
}

func (r *fakeInvoiceRepository) FindByContractAndPeriod(ctx context.Context, contractID uint, period string) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.ContractID == contractID && inv.Period == period {
			return &inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInvoiceRepository) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.ID == id {
			return &inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInvoiceRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invoices)
}

// billingFixture wires the billing services over in-memory repositories
type billingFixture struct {
	contracts  *fakeContractRepository
	units      *fakeUnitRepository
	readings   *fakeMeterReadingRepository
	schedules  *fakeScheduleRepository
	invoices   *fakeInvoiceRepository
	calculator *InvoiceCalculator
}

func newBillingFixture(contracts []models.Contract, units []models.Unit, schedules ...models.RentSchedule) *billingFixture {
	f := &billingFixture{
		contracts: newFakeContractRepository(contracts...),
		units:     newFakeUnitRepository(units...),
		readings:  newFakeMeterReadingRepository(),
		schedules: newFakeScheduleRepository(schedules...),
		invoices:  &fakeInvoiceRepository{},
	}
	f.calculator = NewInvoiceCalculator(f.contracts, f.units, f.invoices, f.schedules,
		NewMeterConsumptionResolver(f.readings), nil, testBillingConfig())
	return f
}

func activeContract(id, unitID uint, rent string) models.Contract {
	cycle := models.PaymentCycleMonthly
	start := day(2025, 1, 1)
	return models.Contract{
		ID:               id,
		UnitID:           unitID,
		TenantID:         100 + id,
		Status:           models.ContractStatusActive,
		RentAmount:       dec(rent),
		PaymentCycle:     &cycle,
		BillingStartDate: &start,
	}
}

func pendingSchedule(id, contractID uint, on time.Time, amount string) models.RentSchedule {
	return models.RentSchedule{
		ID:            id,
		ContractID:    contractID,
		ScheduledDate: on,
		AmountDue:     dec(amount),
		Status:        models.ScheduleStatusPending,
	}
}
