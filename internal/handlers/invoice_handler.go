package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-rentals/internal/middleware"
	"github.com/sjperalta/fintera-rentals/internal/services"
)

type InvoiceHandler struct {
	scanner         *services.DueScheduleScanner
	calculator      *services.InvoiceCalculator
	documentService *services.DocumentService
}

func NewInvoiceHandler(scanner *services.DueScheduleScanner, calculator *services.InvoiceCalculator, documentService *services.DocumentService) *InvoiceHandler {
	return &InvoiceHandler{scanner: scanner, calculator: calculator, documentService: documentService}
}

// CreateInvoiceRequest accepts {"period": "YYYY-MM"} or {"invoice": {"period": "YYYY-MM"}}
type CreateInvoiceRequest struct {
	Period string `json:"period"`
}

// @Summary Create Invoice
// @Description Calculate and store the invoice of a contract for a billing period. Repeated calls return the stored invoice.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Param request body CreateInvoiceRequest true "Billing period (YYYY-MM)"
// @Success 200 {object} models.Invoice
// @Failure 400,404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	contractID, ok := paramID(c, "contract_id")
	if !ok {
		return
	}
	var req CreateInvoiceRequest
	if err := BindNestedOrFlat(c, "invoice", &req); err != nil || strings.TrimSpace(req.Period) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El período es requerido (YYYY-MM)"})
		return
	}

	invoice, err := h.scanner.TriggerManual(c.Request.Context(), contractID, strings.TrimSpace(req.Period), middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// @Summary List Contract Invoices
// @Description Get the invoices issued for a contract
// @Tags Invoices
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts/{contract_id}/invoices [get]
func (h *InvoiceHandler) Index(c *gin.Context) {
	contractID, ok := paramID(c, "contract_id")
	if !ok {
		return
	}
	invoices, err := h.calculator.FindByContract(c.Request.Context(), contractID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// @Summary Get Invoice
// @Description Get an invoice with its lines
// @Tags Invoices
// @Produce json
// @Param invoice_id path int true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{invoice_id} [get]
func (h *InvoiceHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "invoice_id")
	if !ok {
		return
	}
	invoice, err := h.calculator.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// @Summary Download Invoice PDF
// @Description Render an invoice as PDF
// @Tags Invoices
// @Produce application/pdf
// @Param invoice_id path int true "Invoice ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{invoice_id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	id, ok := paramID(c, "invoice_id")
	if !ok {
		return
	}
	data, filename, err := h.documentService.InvoicePDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
