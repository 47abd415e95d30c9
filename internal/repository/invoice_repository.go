package repository

import (
	"context"
	"errors"

	"github.com/sjperalta/fintera-rentals/internal/models"

	"gorm.io/gorm"
)

// InvoiceRepository is the billing ledger. Invoices are created once per
// (contract, period) and never updated or deleted here.
type InvoiceRepository interface {
	CreateIfAbsent(ctx context.Context, invoice *models.Invoice) (*models.Invoice, bool, error)
	FindByContractAndPeriod(ctx context.Context, contractID uint, period string) (*models.Invoice, error)
	FindByID(ctx context.Context, id uint) (*models.Invoice, error)
	FindByContract(ctx context.Context, contractID uint) ([]models.Invoice, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// CreateIfAbsent inserts the invoice with its lines unless one already exists for
// its contract and period, in which case the stored invoice is returned with created=false.
func (r *invoiceRepository) CreateIfAbsent(ctx context.Context, invoice *models.Invoice) (*models.Invoice, bool, error) {
	var existing *models.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found models.Invoice
		err := tx.Where("contract_id = ? AND period = ?", invoice.ContractID, invoice.Period).
			Preload("Lines", orderLines).
			First(&found).Error
		if err == nil {
			existing = &found
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(invoice).Error
	})

	// Another writer committed the same (contract, period) first
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		found, findErr := r.FindByContractAndPeriod(ctx, invoice.ContractID, invoice.Period)
		if findErr != nil {
			return nil, false, findErr
		}
		return found, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	return invoice, true, nil
}

func (r *invoiceRepository) FindByContractAndPeriod(ctx context.Context, contractID uint, period string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND period = ?", contractID, period).
		Preload("Lines", orderLines).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByContract(ctx context.Context, contractID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("period ASC").
		Find(&invoices).Error
	return invoices, err
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
