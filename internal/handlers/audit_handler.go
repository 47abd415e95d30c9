package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-rentals/internal/services"
)

const maxAuditLimit = 200

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get the audit trail of one entity, newest first (Admin)
// @Tags Audits
// @Produce json
// @Param entity query string true "Entity name (Contract, Invoice, RentSchedule)"
// @Param entity_id query int true "Entity ID"
// @Param limit query int false "Maximum results" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	entity := c.Query("entity")
	entityID, err := strconv.ParseUint(c.Query("entity_id"), 10, 32)
	if entity == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity y entity_id son requeridos"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	logs, err := h.auditService.List(c.Request.Context(), entity, uint(entityID), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audits": logs})
}
