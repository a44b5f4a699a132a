package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/service/consignment"
)

type ConsignmentHandler struct {
	svc consignment.Service
}

func NewConsignmentHandler(svc consignment.Service) *ConsignmentHandler {
	return &ConsignmentHandler{svc: svc}
}

// GET /consignments
func (h *ConsignmentHandler) List(c fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return respond(c, "consignments.list", err)
	}

	result, err := h.svc.List(c.Context(), consignment.ListRequest{
		Search:   c.Query("search"),
		Supplier: c.Query("supplier"),
		Page:     page,
	})
	if err != nil {
		return respond(c, "consignments.list", err)
	}

	views := make([]consignmentView, len(result.Consignments))
	for i, cs := range result.Consignments {
		views[i] = newConsignmentView(cs)
	}
	return list(c, fiber.Map{
		"consignments": views,
		"pagination":   result.Page,
		"filters": fiber.Map{
			"suppliers": result.Suppliers,
		},
	})
}

// POST /consignments
func (h *ConsignmentHandler) Create(c fiber.Ctx) error {
	var body struct {
		Name     string           `json:"name"`
		Product  string           `json:"product"`
		Category string           `json:"category"`
		Supplier string           `json:"supplier"`
		Stock    *int             `json:"stock"`
		Quantity *int             `json:"quantity"`
		Price    *decimal.Decimal `json:"price"`
	}
	if err := bindJSON(c, &body); err != nil {
		return respondCreate(c, "consignments.create", err)
	}
	// the list view calls these product and quantity; accept both spellings
	if body.Name == "" {
		body.Name = body.Product
	}
	if body.Stock == nil {
		body.Stock = body.Quantity
	}

	cs, err := h.svc.Create(c.Context(), consignment.CreateRequest{
		Name:     body.Name,
		Category: body.Category,
		Supplier: body.Supplier,
		Stock:    body.Stock,
		Price:    body.Price,
	})
	if err != nil {
		return respondCreate(c, "consignments.create", err)
	}
	return created(c, "Consignación registrada exitosamente", "consignment", newConsignmentView(*cs))
}
