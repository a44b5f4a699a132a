package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/optica_backend/internal/api/http/handler"
)

func (r *Router) registerAppointmentRoutes(api fiber.Router, ah *handler.AppointmentHandler, invalidate fiber.Handler) {
	appts := api.Group("/appointments", invalidate)

	appts.Get("/", ah.List)
	appts.Post("/", ah.Create)

	a := appts.Group("/:id")
	a.Get("/", ah.Get)
	a.Put("/", ah.Update)
	a.Delete("/", ah.Delete)
}
