package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/optica_backend/internal/api/http/handler"
)

func (r *Router) registerDashboardRoutes(api fiber.Router, dh *handler.DashboardHandler) {
	api.Get("/dashboard", dh.Get)
}
