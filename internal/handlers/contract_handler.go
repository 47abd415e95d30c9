package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-rentals/internal/middleware"
	"github.com/sjperalta/fintera-rentals/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
	scheduleService *services.ScheduleService
}

func NewContractHandler(contractService *services.ContractService, scheduleService *services.ScheduleService) *ContractHandler {
	return &ContractHandler{contractService: contractService, scheduleService: scheduleService}
}

// @Summary Get Contract
// @Description Get a contract by ID with its unit
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "contract_id")
	if !ok {
		return
	}
	contract, err := h.contractService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Terminate Contract
// @Description Terminate a running contract early and cancel its unbilled future schedules (Admin)
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404,422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/terminate [post]
func (h *ContractHandler) Terminate(c *gin.Context) {
	id, ok := paramID(c, "contract_id")
	if !ok {
		return
	}
	contract, cancelled, err := h.contractService.Terminate(c.Request.Context(), id, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contract":            contract.ToResponse(),
		"cancelled_schedules": cancelled,
		"message":             "Contrato terminado",
	})
}
