package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-rentals/internal/middleware"
	"github.com/sjperalta/fintera-rentals/internal/models"
	"github.com/sjperalta/fintera-rentals/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ScheduleHandler struct {
	scheduleService *services.ScheduleService
	documentService *services.DocumentService
}

func NewScheduleHandler(scheduleService *services.ScheduleService, documentService *services.DocumentService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, documentService: documentService}
}

func (h *ScheduleHandler) respond(schedules []models.RentSchedule) []models.RentScheduleResponse {
	today := h.scheduleService.Today()
	out := make([]models.RentScheduleResponse, 0, len(schedules))
	for i := range schedules {
		out = append(out, schedules[i].ToResponse(today))
	}
	return out
}

// @Summary List Contract Schedules
// @Description Get the rent schedules of a contract ordered by date
// @Tags Schedules
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/schedules [get]
func (h *ScheduleHandler) Index(c *gin.Context) {
	id, ok := paramID(c, "contract_id")
	if !ok {
		return
	}
	schedules, err := h.scheduleService.FindByContract(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": h.respond(schedules)})
}

// @Summary Generate Contract Schedules
// @Description Materialize the missing rent schedules of an active contract. Existing dates are left untouched.
// @Tags Schedules
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/schedules/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	id, ok := paramID(c, "contract_id")
	if !ok {
		return
	}
	created, err := h.scheduleService.GenerateForContract(c.Request.Context(), id, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"created":   len(created),
		"schedules": h.respond(created),
	})
}

// @Summary Export Contract Schedules
// @Description Download the rent schedules of a contract as an XLSX file
// @Tags Schedules
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param contract_id path int true "Contract ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/schedules/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	id, ok := paramID(c, "contract_id")
	if !ok {
		return
	}
	data, filename, err := h.documentService.SchedulesXLSX(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// @Summary Upcoming Schedules
// @Description Get the next pending schedules from today on
// @Tags Schedules
// @Produce json
// @Param limit query int false "Maximum results" default(50)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /schedules/upcoming [get]
func (h *ScheduleHandler) Upcoming(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	schedules, err := h.scheduleService.Upcoming(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": h.respond(schedules)})
}

// @Summary Due Schedules
// @Description Get every pending schedule dated today or earlier
// @Tags Schedules
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /schedules/due [get]
func (h *ScheduleHandler) Due(c *gin.Context) {
	schedules, err := h.scheduleService.Due(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": h.respond(schedules)})
}

type RecordPaymentRequest struct {
	PaymentID uint `json:"payment_id" binding:"required"`
}

// @Summary Record Payment
// @Description Attach an external payment to a schedule and mark it paid
// @Tags Schedules
// @Accept json
// @Produce json
// @Param schedule_id path int true "Schedule ID"
// @Param request body RecordPaymentRequest true "Payment"
// @Success 200 {object} models.RentScheduleResponse
// @Failure 400,404,422 {object} map[string]string
// @Security BearerAuth
// @Router /schedules/{schedule_id}/record_payment [post]
func (h *ScheduleHandler) RecordPayment(c *gin.Context) {
	id, ok := paramID(c, "schedule_id")
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil || req.PaymentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_id es requerido"})
		return
	}

	schedule, err := h.scheduleService.RecordPayment(c.Request.Context(), id, req.PaymentID, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"schedule": schedule.ToResponse(h.scheduleService.Today()),
		"message":  "Pago registrado",
	})
}
