package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-rentals/internal/config"
	"github.com/sjperalta/fintera-rentals/internal/models"
	"github.com/sjperalta/fintera-rentals/internal/repository"
	"github.com/sjperalta/fintera-rentals/pkg/logger"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// InvoiceCalculator builds the invoice for a contract period and records it in the ledger
type InvoiceCalculator struct {
	contractRepo repository.ContractRepository
	unitRepo     repository.UnitRepository
	invoiceRepo  repository.InvoiceRepository
	scheduleRepo repository.RentScheduleRepository
	resolver     *MeterConsumptionResolver
	auditSvc     *AuditService
	dueDays      int
	locks        *keyedMutex
}

func NewInvoiceCalculator(
	contractRepo repository.ContractRepository,
	unitRepo repository.UnitRepository,
	invoiceRepo repository.InvoiceRepository,
	scheduleRepo repository.RentScheduleRepository,
	resolver *MeterConsumptionResolver,
	auditSvc *AuditService,
	cfg config.BillingConfig,
) *InvoiceCalculator {
	return &InvoiceCalculator{
		contractRepo: contractRepo,
		unitRepo:     unitRepo,
		invoiceRepo:  invoiceRepo,
		scheduleRepo: scheduleRepo,
		resolver:     resolver,
		auditSvc:     auditSvc,
		dueDays:      cfg.InvoiceDueDays,
		locks:        newKeyedMutex(),
	}
}

// CalculateAndCreateInvoice returns the invoice of contractID for period ("YYYY-MM"),
// creating it on first call. Later calls return the stored invoice unchanged.
// Either way the matching unlinked rent schedule is linked to the invoice.
func (c *InvoiceCalculator) CalculateAndCreateInvoice(ctx context.Context, contractID uint, period string, actorID *uint) (*models.Invoice, error) {
	p, err := models.ParsePeriod(period)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
	}

	unlock := c.locks.Lock(fmt.Sprintf("%d:%s", contractID, p))
	defer unlock()

	existing, err := c.invoiceRepo.FindByContractAndPeriod(ctx, contractID, p.String())
	if err == nil {
		c.linkSchedule(ctx, contractID, p, existing.ID)
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check invoice for contract %d period %s: %w", contractID, p, err)
	}

	contract, err := c.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, lookupError(err, "contract %d", contractID)
	}

	unit, err := c.unitRepo.FindByID(ctx, contract.UnitID)
	if err != nil {
		return nil, lookupError(err, "unit %d of contract %d", contract.UnitID, contractID)
	}

	invoice, err := c.buildInvoice(ctx, contract, unit, p)
	if err != nil {
		return nil, err
	}
	invoice.CreatedByID = actorID

	stored, created, err := c.invoiceRepo.CreateIfAbsent(ctx, invoice)
	if err != nil {
		logger.Error("[Billing] Failed to create invoice",
			"contract_id", contractID,
			"period", p.String(),
			"total", invoice.TotalAmount.String(),
			"lines", len(invoice.Lines),
			"error", err)
		return nil, fmt.Errorf("failed to create invoice for contract %d period %s: %w", contractID, p, err)
	}

	c.linkSchedule(ctx, contractID, p, stored.ID)

	if created {
		logger.Info(fmt.Sprintf("[Billing] Invoice %s created for contract %d: %s", stored.Number, contractID, stored.TotalAmount.StringFixed(models.MoneyPlaces)))
		c.auditSvc.Record(ctx, actorID, models.AuditActionInvoiceIssued, "Invoice", stored.ID,
			fmt.Sprintf("contract=%d period=%s total=%s", contractID, p, stored.TotalAmount.StringFixed(models.MoneyPlaces)))
	}
	return stored, nil
}

func (c *InvoiceCalculator) buildInvoice(ctx context.Context, contract *models.Contract, unit *models.Unit, p models.Period) (*models.Invoice, error) {
	issue := p.FirstDay()
	vat := unit.VAT()
	from, to := p.FirstDay(), p.LastDay()

	var lines []models.InvoiceLine
	add := func(line models.InvoiceLine) {
		line.Position = len(lines) + 1
		line.VATPercent = vat
		line.Amount = models.RoundMoney(line.UnitPrice.Mul(line.Quantity))
		lines = append(lines, line)
	}

	add(models.InvoiceLine{
		ServiceCode: models.ServiceRent,
		ServiceName: "Alquiler",
		UnitPrice:   contract.RentAmount,
		Quantity:    decimal.NewFromInt(1),
		FromDate:    &from,
		ToDate:      &to,
	})

	meters := []struct {
		meterType models.MeterType
		code      string
		name      string
		price     *decimal.Decimal
	}{
		{models.MeterTypeElectricity, models.ServiceElectricity, "Electricidad", unit.ElectricityPricePerKwh},
		{models.MeterTypeWater, models.ServiceWater, "Agua", unit.WaterPricePerM3},
	}
	for _, m := range meters {
		if !models.HasRate(m.price) {
			continue
		}
		usage, ok, err := c.resolver.ResolveConsumption(ctx, unit.ID, m.meterType, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		index := usage.CurrentIndex
		add(models.InvoiceLine{
			ServiceCode: m.code,
			ServiceName: m.name,
			UnitPrice:   *m.price,
			Quantity:    usage.Quantity,
			MeterIndex:  &index,
			FromDate:    &usage.FromDate,
			ToDate:      &usage.ToDate,
		})
	}

	if models.HasRate(unit.InternetFee) {
		add(models.InvoiceLine{
			ServiceCode: models.ServiceInternet,
			ServiceName: "Internet",
			UnitPrice:   *unit.InternetFee,
			Quantity:    decimal.NewFromInt(1),
			FromDate:    &from,
			ToDate:      &to,
		})
	}

	if models.HasRate(unit.CommonServiceFee) {
		add(models.InvoiceLine{
			ServiceCode: models.ServiceCommonService,
			ServiceName: "Servicios comunes",
			UnitPrice:   *unit.CommonServiceFee,
			Quantity:    decimal.NewFromInt(int64(contract.Occupants())),
			FromDate:    &from,
			ToDate:      &to,
		})
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount)
	}

	discount, label := discountFor(contract, unit, subtotal)
	if discount.IsPositive() {
		lines = append(lines, models.InvoiceLine{
			Position:    len(lines) + 1,
			ServiceCode: models.ServiceDiscount,
			ServiceName: label,
			UnitPrice:   discount.Neg(),
			Quantity:    decimal.NewFromInt(1),
			Amount:      discount.Neg(),
		})
	}

	return &models.Invoice{
		Number:         invoiceNumber(contract.ID, p),
		ContractID:     contract.ID,
		UnitID:         unit.ID,
		Period:         p.String(),
		IssueDate:      issue,
		DueDate:        issue.AddDate(0, 0, c.dueDays),
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TotalAmount:    subtotal.Sub(discount),
		Lines:          lines,
	}, nil
}

// discountFor applies the percent discount when set, else the fixed amount.
// The result never exceeds subtotal.
func discountFor(contract *models.Contract, unit *models.Unit, subtotal decimal.Decimal) (decimal.Decimal, string) {
	percent, amount := contract.EffectiveDiscount(unit)

	var discount decimal.Decimal
	var label string
	switch {
	case percent != nil && percent.IsPositive():
		discount = models.RoundMoney(subtotal.Mul(*percent).Div(hundred))
		label = fmt.Sprintf("Descuento (%s%%)", percent.String())
	case amount != nil && amount.IsPositive():
		discount = models.RoundMoney(*amount)
		label = "Descuento"
	default:
		return decimal.Zero, ""
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount, label
}

func invoiceNumber(contractID uint, p models.Period) string {
	return fmt.Sprintf("INV-%04d%02d-%06d", p.Year, int(p.Month), contractID)
}

// linkSchedule writes the invoice id back to the period's unlinked schedule.
// Failures are logged only; the invoice stands on its own.
func (c *InvoiceCalculator) linkSchedule(ctx context.Context, contractID uint, p models.Period, invoiceID uint) {
	schedule, err := c.scheduleRepo.FindUnlinkedByContractAndPeriod(ctx, contractID, p)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Debug(fmt.Sprintf("[Billing] No unlinked schedule for contract %d period %s", contractID, p))
		return
	}
	if err != nil {
		logger.Error(fmt.Sprintf("[Billing] Failed to find schedule for contract %d period %s: %v", contractID, p, err))
		return
	}

	linked, err := c.scheduleRepo.LinkInvoice(ctx, schedule.ID, invoiceID)
	if err != nil {
		logger.Error(fmt.Sprintf("[Billing] Failed to link schedule %d to invoice %d: %v", schedule.ID, invoiceID, err))
		return
	}
	if !linked {
		logger.Warn(fmt.Sprintf("[Billing] Schedule %d was linked concurrently, invoice %d not attached", schedule.ID, invoiceID))
	}
}

// FindByID returns a stored invoice with its lines
func (c *InvoiceCalculator) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	invoice, err := c.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "invoice %d", id)
	}
	return invoice, nil
}

// FindByContract lists the invoices issued for a contract
func (c *InvoiceCalculator) FindByContract(ctx context.Context, contractID uint) ([]models.Invoice, error) {
	return c.invoiceRepo.FindByContract(ctx, contractID)
}
