package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/sjperalta/fintera-rentals/internal/models"
	"github.com/sjperalta/fintera-rentals/internal/repository"
	"github.com/sjperalta/fintera-rentals/internal/storage"
	"github.com/xuri/excelize/v2"
)

// DocumentService renders invoices and schedules as downloadable documents
type DocumentService struct {
	invoiceRepo  repository.InvoiceRepository
	scheduleRepo repository.RentScheduleRepository
	contractRepo repository.ContractRepository
	storage      *storage.LocalStorage
}

func NewDocumentService(
	invoiceRepo repository.InvoiceRepository,
	scheduleRepo repository.RentScheduleRepository,
	contractRepo repository.ContractRepository,
	storage *storage.LocalStorage,
) *DocumentService {
	return &DocumentService{
		invoiceRepo:  invoiceRepo,
		scheduleRepo: scheduleRepo,
		contractRepo: contractRepo,
		storage:      storage,
	}
}

// InvoicePDF renders an invoice and returns the PDF bytes and a file name
func (s *DocumentService) InvoicePDF(ctx context.Context, invoiceID uint) ([]byte, string, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, "", lookupError(err, "invoice %d", invoiceID)
	}

	data, err := renderInvoicePDF(invoice)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render invoice %s: %w", invoice.Number, err)
	}
	return data, invoice.Number + ".pdf", nil
}

// ArchiveInvoicePDF renders an invoice and stores it under invoices/<period>,
// returning the stored relative path.
func (s *DocumentService) ArchiveInvoicePDF(ctx context.Context, invoiceID uint) (string, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return "", lookupError(err, "invoice %d", invoiceID)
	}

	data, err := renderInvoicePDF(invoice)
	if err != nil {
		return "", fmt.Errorf("failed to render invoice %s: %w", invoice.Number, err)
	}
	return s.storage.SaveBytes(data, invoice.Number+".pdf", filepath.Join("invoices", invoice.Period))
}

func renderInvoicePDF(invoice *models.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Factura "+invoice.Number))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, tr("Período:"))
	pdf.Cell(60, 6, invoice.Period)
	pdf.Ln(6)
	pdf.Cell(40, 6, tr("Contrato:"))
	pdf.Cell(60, 6, fmt.Sprintf("%d", invoice.ContractID))
	pdf.Ln(6)
	pdf.Cell(40, 6, tr("Emisión:"))
	pdf.Cell(60, 6, invoice.IssueDate.Format("2006-01-02"))
	pdf.Ln(6)
	pdf.Cell(40, 6, "Vencimiento:")
	pdf.Cell(60, 6, invoice.DueDate.Format("2006-01-02"))
	pdf.Ln(10)

	widths := []float64{70, 30, 30, 20, 40}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(224, 224, 224)
	for i, h := range []string{"Servicio", "Precio", "Cantidad", "IVA %", "Monto"} {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, line := range invoice.Lines {
		pdf.CellFormat(widths[0], 6, tr(line.ServiceName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, line.UnitPrice.StringFixed(models.MoneyPlaces), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, line.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, line.VATPercent.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, line.Amount.StringFixed(models.MoneyPlaces), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	totals := []struct {
		label string
		value string
	}{
		{"Subtotal", invoice.Subtotal.StringFixed(models.MoneyPlaces)},
		{"Descuento", invoice.DiscountAmount.StringFixed(models.MoneyPlaces)},
		{"Total", invoice.TotalAmount.StringFixed(models.MoneyPlaces)},
	}
	for _, t := range totals {
		pdf.CellFormat(150, 7, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, t.value, "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SchedulesXLSX exports the rent schedules of a contract as a spreadsheet
func (s *DocumentService) SchedulesXLSX(ctx context.Context, contractID uint) ([]byte, string, error) {
	if _, err := s.contractRepo.FindByID(ctx, contractID); err != nil {
		return nil, "", lookupError(err, "contract %d", contractID)
	}
	schedules, err := s.scheduleRepo.FindByContract(ctx, contractID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load schedules of contract %d: %w", contractID, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Cuotas"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"ID", "Fecha", "Período", "Monto", "Recargo", "Estado", "Factura", "Pago"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, sch := range schedules {
		row := i + 2
		values := []interface{}{
			sch.ID,
			sch.ScheduledDate.Format("2006-01-02"),
			sch.Period().String(),
			sch.AmountDue.InexactFloat64(),
			sch.LateFee.InexactFloat64(),
			string(sch.Status),
			optionalID(sch.InvoiceID),
			optionalID(sch.PaymentID),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("cuotas_contrato_%d.xlsx", contractID), nil
}

func optionalID(id *uint) interface{} {
	if id == nil {
		return ""
	}
	return *id
}
