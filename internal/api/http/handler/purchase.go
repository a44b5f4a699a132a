package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/purchase"
)

type PurchaseHandler struct {
	svc purchase.Service
	loc *time.Location
}

func NewPurchaseHandler(svc purchase.Service, loc *time.Location) *PurchaseHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PurchaseHandler{svc: svc, loc: loc}
}

type purchaseItemBody struct {
	ProductID *string          `json:"product_id"`
	Quantity  *int             `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
}

func (b purchaseItemBody) request(field string) (purchase.ItemRequest, error) {
	id, err := optionalID(field, deref(b.ProductID))
	if err != nil {
		return purchase.ItemRequest{}, err
	}
	req := purchase.ItemRequest{ProductID: id, UnitCost: b.UnitCost}
	if b.Quantity != nil {
		req.Quantity = *b.Quantity
	}
	return req, nil
}

func purchaseListRequest(c fiber.Ctx) purchase.ListRequest {
	return purchase.ListRequest{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Supplier: c.Query("supplier"),
	}
}

// ---------------------------------------------------------------------------
// Purchase CRUD
// ---------------------------------------------------------------------------

// GET /purchases
func (h *PurchaseHandler) List(c fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return respond(c, "purchases.list", err)
	}
	req := purchaseListRequest(c)
	req.Page = page

	result, err := h.svc.List(c.Context(), req)
	if err != nil {
		return respond(c, "purchases.list", err)
	}

	views := make([]purchaseView, len(result.Purchases))
	for i, p := range result.Purchases {
		views[i] = newPurchaseView(p, h.loc)
	}
	return list(c, fiber.Map{
		"purchases":  views,
		"pagination": result.Page,
		"filters": fiber.Map{
			"statuses": repo.EnumStrings(repo.PurchaseStatuses),
		},
	})
}

// POST /purchases
func (h *PurchaseHandler) Create(c fiber.Ctx) error {
	var body struct {
		Supplier string             `json:"supplier"`
		Status   string             `json:"status"`
		Notes    string             `json:"notes"`
		Items    []purchaseItemBody `json:"items"`
	}
	if err := bindJSON(c, &body); err != nil {
		return respondCreate(c, "purchases.create", err)
	}

	req := purchase.CreateRequest{Supplier: body.Supplier, Status: body.Status, Notes: body.Notes}
	for _, item := range body.Items {
		ir, err := item.request("items.product_id")
		if err != nil {
			return respondCreate(c, "purchases.create", err)
		}
		req.Items = append(req.Items, ir)
	}

	p, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return respondCreate(c, "purchases.create", err)
	}
	return created(c, "Compra registrada exitosamente", "purchase", newPurchaseView(*p, h.loc))
}

// GET /purchases/:id
func (h *PurchaseHandler) Get(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "purchases.get", err)
	}
	p, err := h.svc.GetByID(c.Context(), id)
	if err != nil {
		return respond(c, "purchases.get", err)
	}
	return ok(c, fiber.Map{"purchase": newPurchaseView(*p, h.loc)})
}

// PUT /purchases/:id
func (h *PurchaseHandler) Update(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "purchases.update", err)
	}
	var body struct {
		Supplier *string `json:"supplier"`
		Status   *string `json:"status"`
		Notes    *string `json:"notes"`
	}
	if err := bindJSON(c, &body); err != nil {
		return respond(c, "purchases.update", err)
	}

	p, err := h.svc.Update(c.Context(), id, purchase.UpdateRequest{
		Supplier: body.Supplier,
		Status:   body.Status,
		Notes:    body.Notes,
	})
	if err != nil {
		return respond(c, "purchases.update", err)
	}
	return ok(c, fiber.Map{"message": "Compra actualizada exitosamente", "purchase": newPurchaseView(*p, h.loc)})
}

// DELETE /purchases/:id
func (h *PurchaseHandler) Delete(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "purchases.delete", err)
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return respond(c, "purchases.delete", err)
	}
	return ok(c, fiber.Map{"message": "Compra eliminada exitosamente"})
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// POST /purchases/:id/items
func (h *PurchaseHandler) AddItem(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "purchases.items.create", err)
	}
	var body purchaseItemBody
	if err := bindJSON(c, &body); err != nil {
		return respond(c, "purchases.items.create", err)
	}
	req, err := body.request("product_id")
	if err != nil {
		return respond(c, "purchases.items.create", err)
	}

	p, err := h.svc.AddItem(c.Context(), id, req)
	if err != nil {
		return respond(c, "purchases.items.create", err)
	}
	return ok(c, fiber.Map{"message": "Ítem agregado exitosamente", "purchase": newPurchaseView(*p, h.loc)})
}

// PUT /purchases/:id/items/:iid
func (h *PurchaseHandler) UpdateItem(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "purchases.items.update", err)
	}
	itemID, err := idParam(c, "iid")
	if err != nil {
		return respond(c, "purchases.items.update", err)
	}
	var body purchaseItemBody
	if err := bindJSON(c, &body); err != nil {
		return respond(c, "purchases.items.update", err)
	}

	req := purchase.UpdateItemRequest{Quantity: body.Quantity, UnitCost: body.UnitCost}
	if req.ProductID, err = optionalIDPtr("product_id", body.ProductID); err != nil {
		return respond(c, "purchases.items.update", err)
	}

	p, err := h.svc.UpdateItem(c.Context(), id, itemID, req)
	if err != nil {
		return respond(c, "purchases.items.update", err)
	}
	return ok(c, fiber.Map{"message": "Ítem actualizado exitosamente", "purchase": newPurchaseView(*p, h.loc)})
}

// DELETE /purchases/:id/items/:iid
func (h *PurchaseHandler) DeleteItem(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "purchases.items.delete", err)
	}
	itemID, err := idParam(c, "iid")
	if err != nil {
		return respond(c, "purchases.items.delete", err)
	}

	p, err := h.svc.DeleteItem(c.Context(), id, itemID)
	if err != nil {
		return respond(c, "purchases.items.delete", err)
	}
	return ok(c, fiber.Map{"message": "Ítem eliminado exitosamente", "purchase": newPurchaseView(*p, h.loc)})
}
