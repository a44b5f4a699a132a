package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/optica_backend/internal/api/http/handler"
)

func (r *Router) registerPatientRoutes(
	api fiber.Router,
	ph *handler.PatientHandler,
	eh *handler.ExportHandler,
	invalidate fiber.Handler,
) {
	patients := api.Group("/patients", invalidate)

	// Patient CRUD
	patients.Get("/", ph.List)
	patients.Post("/", ph.Create)
	patients.Get("/export", eh.Patients)

	p := patients.Group("/:id")
	p.Get("/", ph.Get)
	p.Put("/", ph.Update)
	p.Delete("/", ph.Delete)

	// Purchase history
	p.Get("/history", ph.ListHistory)
	p.Post("/history", ph.AddHistory)
	p.Delete("/history/:hid", ph.DeleteHistory)
}
