package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the billed statement for one contract and period
type Invoice struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Number         string          `gorm:"uniqueIndex;not null" json:"number"`
	ContractID     uint            `gorm:"not null;uniqueIndex:idx_invoices_contract_period" json:"contract_id"`
	UnitID         uint            `gorm:"not null;index" json:"unit_id"`
	Period         string          `gorm:"size:7;not null;uniqueIndex:idx_invoices_contract_period" json:"period"`
	IssueDate      time.Time       `gorm:"type:date;not null" json:"issue_date"`
	DueDate        time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	Note           *string         `gorm:"type:text" json:"note"`
	CreatedByID    *uint           `gorm:"index" json:"created_by_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Associations
	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines,omitempty"`
}

// TableName specifies the table name for Invoice
func (Invoice) TableName() string {
	return "invoices"
}

// Service codes used on invoice lines
const (
	ServiceRent          = "rent"
	ServiceElectricity   = "electricity"
	ServiceWater         = "water"
	ServiceInternet      = "internet"
	ServiceCommonService = "common_service"
	ServiceDiscount      = "discount"
)

// InvoiceLine is one itemized charge on an invoice. Discount lines carry a negative amount.
type InvoiceLine struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	InvoiceID   uint             `gorm:"not null;index" json:"invoice_id"`
	Position    int              `gorm:"not null" json:"position"`
	ServiceCode string           `gorm:"size:32;not null" json:"service_code"`
	ServiceName string           `gorm:"not null" json:"service_name"`
	UnitPrice   decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	Quantity    decimal.Decimal  `gorm:"type:decimal(15,3);not null" json:"quantity"`
	MeterIndex  *decimal.Decimal `gorm:"type:decimal(15,3)" json:"meter_index,omitempty"`
	// VATPercent is the rate the line is subject to. It is informational:
	// Amount, Subtotal and TotalAmount are net of VAT.
	VATPercent  decimal.Decimal  `gorm:"column:vat_percent;type:decimal(5,2);not null;default:0" json:"vat_percent"`
	FromDate    *time.Time       `gorm:"type:date" json:"from_date,omitempty"`
	ToDate      *time.Time       `gorm:"type:date" json:"to_date,omitempty"`
	Amount      decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"amount"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TableName specifies the table name for InvoiceLine
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// Line returns the first line with the given service code
func (i *Invoice) Line(serviceCode string) (*InvoiceLine, bool) {
	for idx := range i.Lines {
		if i.Lines[idx].ServiceCode == serviceCode {
			return &i.Lines[idx], true
		}
	}
	return nil, false
}

// LinesTotal sums the amounts of all lines
func (i *Invoice) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range i.Lines {
		total = total.Add(l.Amount)
	}
	return total
}
