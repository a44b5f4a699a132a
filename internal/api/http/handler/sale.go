package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/sale"
)

type SaleHandler struct {
	svc sale.Service
	loc *time.Location
}

// NewSaleHandler builds the handler. loc renders the sale date.
func NewSaleHandler(svc sale.Service, loc *time.Location) *SaleHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleHandler{svc: svc, loc: loc}
}

type saleItemBody struct {
	ProductID *string          `json:"product_id"`
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

func (b saleItemBody) request(field string) (sale.ItemRequest, error) {
	id, err := optionalID(field, deref(b.ProductID))
	if err != nil {
		return sale.ItemRequest{}, err
	}
	req := sale.ItemRequest{ProductID: id, UnitPrice: b.UnitPrice}
	if b.Quantity != nil {
		req.Quantity = *b.Quantity
	}
	return req, nil
}

// ---------------------------------------------------------------------------
// Sale CRUD
// ---------------------------------------------------------------------------

// GET /sales
func (h *SaleHandler) List(c fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return respond(c, "sales.list", err)
	}
	patientID, err := optionalID("patient_id", c.Query("patient_id"))
	if err != nil {
		return respond(c, "sales.list", err)
	}

	result, err := h.svc.List(c.Context(), sale.ListRequest{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		PatientID: patientID,
		Page:      page,
	})
	if err != nil {
		return respond(c, "sales.list", err)
	}

	views := make([]saleView, len(result.Sales))
	for i, s := range result.Sales {
		views[i] = newSaleView(s, h.loc)
	}
	return list(c, fiber.Map{
		"sales":      views,
		"pagination": result.Page,
		"filters": fiber.Map{
			"statuses": repo.EnumStrings(repo.SaleStatuses),
		},
	})
}

// POST /sales
func (h *SaleHandler) Create(c fiber.Ctx) error {
	var body struct {
		PatientID string         `json:"patient_id"`
		Status    string         `json:"status"`
		Notes     string         `json:"notes"`
		Items     []saleItemBody `json:"items"`
	}
	if err := bindJSON(c, &body); err != nil {
		return respondCreate(c, "sales.create", err)
	}

	patientID, err := optionalID("patient_id", body.PatientID)
	if err != nil {
		return respondCreate(c, "sales.create", err)
	}
	req := sale.CreateRequest{PatientID: patientID, Status: body.Status, Notes: body.Notes}
	for _, item := range body.Items {
		ir, err := item.request("items.product_id")
		if err != nil {
			return respondCreate(c, "sales.create", err)
		}
		req.Items = append(req.Items, ir)
	}

	s, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return respondCreate(c, "sales.create", err)
	}
	return created(c, "Venta registrada exitosamente", "sale", newSaleView(*s, h.loc))
}

// GET /sales/:id
func (h *SaleHandler) Get(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "sales.get", err)
	}
	s, err := h.svc.GetByID(c.Context(), id)
	if err != nil {
		return respond(c, "sales.get", err)
	}
	return ok(c, fiber.Map{"sale": newSaleView(*s, h.loc)})
}

// PUT /sales/:id
func (h *SaleHandler) Update(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "sales.update", err)
	}
	var body struct {
		PatientID *string `json:"patient_id"`
		Status    *string `json:"status"`
		Notes     *string `json:"notes"`
	}
	if err := bindJSON(c, &body); err != nil {
		return respond(c, "sales.update", err)
	}

	req := sale.UpdateRequest{Status: body.Status, Notes: body.Notes}
	if req.PatientID, err = optionalIDPtr("patient_id", body.PatientID); err != nil {
		return respond(c, "sales.update", err)
	}

	s, err := h.svc.Update(c.Context(), id, req)
	if err != nil {
		return respond(c, "sales.update", err)
	}
	return ok(c, fiber.Map{"message": "Venta actualizada exitosamente", "sale": newSaleView(*s, h.loc)})
}

// DELETE /sales/:id
func (h *SaleHandler) Delete(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "sales.delete", err)
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return respond(c, "sales.delete", err)
	}
	return ok(c, fiber.Map{"message": "Venta eliminada exitosamente"})
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// POST /sales/:id/items
func (h *SaleHandler) AddItem(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "sales.items.create", err)
	}
	var body saleItemBody
	if err := bindJSON(c, &body); err != nil {
		return respond(c, "sales.items.create", err)
	}
	req, err := body.request("product_id")
	if err != nil {
		return respond(c, "sales.items.create", err)
	}

	s, err := h.svc.AddItem(c.Context(), id, req)
	if err != nil {
		return respond(c, "sales.items.create", err)
	}
	return ok(c, fiber.Map{"message": "Ítem agregado exitosamente", "sale": newSaleView(*s, h.loc)})
}

// PUT /sales/:id/items/:iid
func (h *SaleHandler) UpdateItem(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "sales.items.update", err)
	}
	itemID, err := idParam(c, "iid")
	if err != nil {
		return respond(c, "sales.items.update", err)
	}
	var body saleItemBody
	if err := bindJSON(c, &body); err != nil {
		return respond(c, "sales.items.update", err)
	}

	req := sale.UpdateItemRequest{Quantity: body.Quantity, UnitPrice: body.UnitPrice}
	if req.ProductID, err = optionalIDPtr("product_id", body.ProductID); err != nil {
		return respond(c, "sales.items.update", err)
	}

	s, err := h.svc.UpdateItem(c.Context(), id, itemID, req)
	if err != nil {
		return respond(c, "sales.items.update", err)
	}
	return ok(c, fiber.Map{"message": "Ítem actualizado exitosamente", "sale": newSaleView(*s, h.loc)})
}

// DELETE /sales/:id/items/:iid
func (h *SaleHandler) DeleteItem(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "sales.items.delete", err)
	}
	itemID, err := idParam(c, "iid")
	if err != nil {
		return respond(c, "sales.items.delete", err)
	}

	s, err := h.svc.DeleteItem(c.Context(), id, itemID)
	if err != nil {
		return respond(c, "sales.items.delete", err)
	}
	return ok(c, fiber.Map{"message": "Ítem eliminado exitosamente", "sale": newSaleView(*s, h.loc)})
}
