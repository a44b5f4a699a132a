package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/optica_backend/internal/api/http/handler"
)

func (r *Router) registerPurchaseRoutes(
	api fiber.Router,
	ph *handler.PurchaseHandler,
	eh *handler.ExportHandler,
	invalidate fiber.Handler,
) {
	purchases := api.Group("/purchases", invalidate)

	purchases.Get("/", ph.List)
	purchases.Post("/", ph.Create)
	purchases.Get("/export", eh.Purchases)

	p := purchases.Group("/:id")
	p.Get("/", ph.Get)
	p.Put("/", ph.Update)
	p.Delete("/", ph.Delete)

	// Items
	p.Post("/items", ph.AddItem)
	p.Put("/items/:iid", ph.UpdateItem)
	p.Delete("/items/:iid", ph.DeleteItem)
}
