package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflex/internal/api/dto"
	"github.com/spec-kit/ticketflex/internal/auth"
	"github.com/spec-kit/ticketflex/internal/service"
	apperrors "github.com/spec-kit/ticketflex/pkg/util/errorutil"
)

// DashboardHandler serves the dashboard summary.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Show GET /dashboard.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	overview, err := h.service.Overview(c.UserContext(), *session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(overview)})
}
