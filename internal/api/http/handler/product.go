package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/product"
)

type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func productListRequest(c fiber.Ctx) product.ListRequest {
	return product.ListRequest{
		Search:   c.Query("search"),
		Code:     c.Query("code"),
		Category: c.Query("category"),
		Supplier: c.Query("supplier"),
		Type:     c.Query("type"),
		Status:   c.Query("status"),
	}
}

// GET /products
func (h *ProductHandler) List(c fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return respond(c, "products.list", err)
	}
	req := productListRequest(c)
	req.Page = page

	result, err := h.svc.List(c.Context(), req)
	if err != nil {
		return respond(c, "products.list", err)
	}

	views := make([]productView, len(result.Products))
	for i, p := range result.Products {
		views[i] = newProductView(p)
	}
	return list(c, fiber.Map{
		"products":   views,
		"pagination": result.Page,
		"filters": fiber.Map{
			"suppliers":  result.Suppliers,
			"categories": repo.EnumStrings(repo.ProductCategories),
			"types":      repo.EnumStrings(repo.ProductTypes),
			"statuses":   repo.EnumStrings(repo.ProductStatuses),
		},
	})
}

type productBody struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Supplier *string          `json:"supplier"`
	Stock    *int             `json:"stock"`
	Price    *decimal.Decimal `json:"price"`
	Type     *string          `json:"type"`
	Status   *string          `json:"status"`
}

// POST /products
func (h *ProductHandler) Create(c fiber.Ctx) error {
	var body productBody
	if err := bindJSON(c, &body); err != nil {
		return respondCreate(c, "products.create", err)
	}

	p, err := h.svc.Create(c.Context(), product.CreateRequest{
		Name:     deref(body.Name),
		Category: deref(body.Category),
		Supplier: deref(body.Supplier),
		Stock:    body.Stock,
		Price:    body.Price,
		Type:     deref(body.Type),
		Status:   deref(body.Status),
	})
	if err != nil {
		return respondCreate(c, "products.create", err)
	}
	return created(c, "Producto creado exitosamente", "product", newProductView(*p))
}

// GET /products/:id
func (h *ProductHandler) Get(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "products.get", err)
	}
	p, err := h.svc.GetByID(c.Context(), id)
	if err != nil {
		return respond(c, "products.get", err)
	}
	return ok(c, fiber.Map{"product": newProductView(*p)})
}

// PUT /products/:id
func (h *ProductHandler) Update(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "products.update", err)
	}
	var body productBody
	if err := bindJSON(c, &body); err != nil {
		return respond(c, "products.update", err)
	}

	p, err := h.svc.Update(c.Context(), id, product.UpdateRequest{
		Name:     body.Name,
		Category: body.Category,
		Supplier: body.Supplier,
		Stock:    body.Stock,
		Price:    body.Price,
		Type:     body.Type,
		Status:   body.Status,
	})
	if err != nil {
		return respond(c, "products.update", err)
	}
	return ok(c, fiber.Map{"message": "Producto actualizado exitosamente", "product": newProductView(*p)})
}

// DELETE /products/:id
func (h *ProductHandler) Delete(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "products.delete", err)
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return respond(c, "products.delete", err)
	}
	return ok(c, fiber.Map{"message": "Producto eliminado exitosamente"})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
