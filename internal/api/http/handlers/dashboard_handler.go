package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/telesdesk/helpdesk-service/internal/dashboard"
)

// DashboardHandler serves the aggregated metrics snapshot.
type DashboardHandler struct {
	service *dashboard.Service
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Snapshot GET /dashboard.
func (h *DashboardHandler) Snapshot(c *fiber.Ctx) error {
	snapshot, err := h.service.Snapshot(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshot})
}
