package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/optica_backend/internal/service/dashboard"
)

type DashboardHandler struct {
	svc dashboard.Service
}

func NewDashboardHandler(svc dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GET /dashboard
func (h *DashboardHandler) Get(c fiber.Ctx) error {
	d, err := h.svc.Get(c.Context())
	if err != nil {
		return respond(c, "dashboard.get", err)
	}
	return c.JSON(d)
}
