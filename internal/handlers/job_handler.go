package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-rentals/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Worker statistics plus the state and last result of the due schedule scan
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	status := h.jobService.GetStatus()
	c.JSON(http.StatusOK, status)
}

// Scan runs the due schedule scan now
// @Summary Run billing scan
// @Description Bill every pending schedule whose date has arrived. Answers 409 while another scan is running.
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.ScanResult
// @Failure 409 {object} map[string]string
// @Router /billing/scan [post]
func (h *JobHandler) Scan(c *gin.Context) {
	result, err := h.jobService.RunScan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
