package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/optica_backend/internal/service/export"
)

type ExportHandler struct {
	svc export.Service
}

func NewExportHandler(svc export.Service) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Exports honor the same filters as the matching list, without pagination.

// GET /products/export
func (h *ExportHandler) Products(c fiber.Ctx) error {
	return h.send(c, "products.export", func(c fiber.Ctx) (*export.Table, error) {
		return h.svc.Products(c.Context(), productListRequest(c))
	})
}

// GET /patients/export
func (h *ExportHandler) Patients(c fiber.Ctx) error {
	return h.send(c, "patients.export", func(c fiber.Ctx) (*export.Table, error) {
		return h.svc.Patients(c.Context(), patientListRequest(c))
	})
}

// GET /purchases/export
func (h *ExportHandler) Purchases(c fiber.Ctx) error {
	return h.send(c, "purchases.export", func(c fiber.Ctx) (*export.Table, error) {
		return h.svc.Purchases(c.Context(), purchaseListRequest(c))
	})
}

func (h *ExportHandler) send(c fiber.Ctx, op string, build func(fiber.Ctx) (*export.Table, error)) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return respond(c, op, badInput(err.Error()))
	}
	table, err := build(c)
	if err != nil {
		return respond(c, op, err)
	}
	body, err := table.Render(format)
	if err != nil {
		return respond(c, op, fmt.Errorf("render %s: %w", format, err))
	}

	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", table.Filename(format)))
	return c.Send(body)
}
