package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/optica_backend/internal/api/http/handler"
)

// Consignments are products, so writes here also invalidate the dashboard.
func (r *Router) registerConsignmentRoutes(api fiber.Router, ch *handler.ConsignmentHandler, invalidate fiber.Handler) {
	consignments := api.Group("/consignments", invalidate)

	consignments.Get("/", ch.List)
	consignments.Post("/", ch.Create)
}
