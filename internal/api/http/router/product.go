package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/optica_backend/internal/api/http/handler"
)

func (r *Router) registerProductRoutes(
	api fiber.Router,
	ph *handler.ProductHandler,
	eh *handler.ExportHandler,
	invalidate fiber.Handler,
) {
	products := api.Group("/products", invalidate)

	products.Get("/", ph.List)
	products.Post("/", ph.Create)
	products.Get("/export", eh.Products)

	p := products.Group("/:id")
	p.Get("/", ph.Get)
	p.Put("/", ph.Update)
	p.Delete("/", ph.Delete)
}
