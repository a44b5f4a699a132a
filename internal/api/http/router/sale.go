package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/optica_backend/internal/api/http/handler"
)

func (r *Router) registerSaleRoutes(api fiber.Router, sh *handler.SaleHandler, invalidate fiber.Handler) {
	sales := api.Group("/sales", invalidate)

	sales.Get("/", sh.List)
	sales.Post("/", sh.Create)

	s := sales.Group("/:id")
	s.Get("/", sh.Get)
	s.Put("/", sh.Update)
	s.Delete("/", sh.Delete)

	// Items
	s.Post("/items", sh.AddItem)
	s.Put("/items/:iid", sh.UpdateItem)
	s.Delete("/items/:iid", sh.DeleteItem)
}
