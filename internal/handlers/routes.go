package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-rentals/internal/middleware"
)

// RegisterRoutes mounts the billing API on v1. auth guards everything except the health check.
func (h *Handlers) RegisterRoutes(v1 *gin.RouterGroup, auth gin.HandlerFunc) {
	// Health check (public)
	v1.GET("/health", h.Health.Index)

	protected := v1.Group("")
	protected.Use(auth)
	{
		// Admin-only routes
		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/contracts/:contract_id/terminate", h.Contract.Terminate)
			admin.POST("/billing/scan", h.Job.Scan)
			admin.GET("/jobs/status", h.Job.Status)
			admin.GET("/audits", h.Audit.Index)
		}

		// Billing operators (admin or property manager)
		operators := protected.Group("")
		operators.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleManager))
		{
			operators.GET("/contracts/:contract_id", h.Contract.Show)
			operators.GET("/contracts/:contract_id/invoices", h.Invoice.Index)
			operators.POST("/contracts/:contract_id/invoices", h.Invoice.Create)
			operators.GET("/contracts/:contract_id/schedules", h.Schedule.Index)
			operators.POST("/contracts/:contract_id/schedules/generate", h.Schedule.Generate)
			operators.GET("/contracts/:contract_id/schedules/export", h.Schedule.Export)

			operators.GET("/schedules/upcoming", h.Schedule.Upcoming)
			operators.GET("/schedules/due", h.Schedule.Due)
			operators.POST("/schedules/:schedule_id/record_payment", h.Schedule.RecordPayment)

			operators.GET("/invoices/:invoice_id", h.Invoice.Show)
			operators.GET("/invoices/:invoice_id/pdf", h.Invoice.PDF)
		}
	}
}
