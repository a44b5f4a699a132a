package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/patient"
	"github.com/Alijeyrad/optica_backend/internal/service/validate"
)

type PatientHandler struct {
	svc patient.Service
	loc *time.Location
}

// NewPatientHandler builds the handler. loc resolves history dates given without a zone.
func NewPatientHandler(svc patient.Service, loc *time.Location) *PatientHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PatientHandler{svc: svc, loc: loc}
}

// ---------------------------------------------------------------------------
// Patient CRUD
// ---------------------------------------------------------------------------

func patientListRequest(c fiber.Ctx) patient.ListRequest {
	return patient.ListRequest{
		Search: c.Query("search"),
		Status: c.Query("status"),
	}
}

// GET /patients
func (h *PatientHandler) List(c fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return respond(c, "patients.list", err)
	}
	req := patientListRequest(c)
	req.Page = page

	result, err := h.svc.List(c.Context(), req)
	if err != nil {
		return respond(c, "patients.list", err)
	}

	views := make([]patientSummaryView, len(result.Patients))
	for i, s := range result.Patients {
		views[i] = newPatientSummaryView(s)
	}
	return list(c, fiber.Map{
		"patients":   views,
		"pagination": result.Page,
		"filters": fiber.Map{
			"statuses": repo.EnumStrings(repo.PatientStatuses),
		},
	})
}

type patientBody struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Status  *string `json:"status"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// POST /patients
func (h *PatientHandler) Create(c fiber.Ctx) error {
	var body patientBody
	if err := bindJSON(c, &body); err != nil {
		return respondCreate(c, "patients.create", err)
	}

	p, err := h.svc.Create(c.Context(), patient.CreateRequest{
		Name:    deref(body.Name),
		Email:   deref(body.Email),
		Phone:   deref(body.Phone),
		Status:  deref(body.Status),
		Address: deref(body.Address),
		Notes:   deref(body.Notes),
	})
	if err != nil {
		return respondCreate(c, "patients.create", err)
	}
	return created(c, "Paciente registrado exitosamente", "patient", newPatientView(*p))
}

// GET /patients/:id
func (h *PatientHandler) Get(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "patients.get", err)
	}
	s, err := h.svc.GetByID(c.Context(), id)
	if err != nil {
		return respond(c, "patients.get", err)
	}
	return ok(c, fiber.Map{"patient": newPatientSummaryView(*s)})
}

// PUT /patients/:id
func (h *PatientHandler) Update(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "patients.update", err)
	}
	var body patientBody
	if err := bindJSON(c, &body); err != nil {
		return respond(c, "patients.update", err)
	}

	p, err := h.svc.Update(c.Context(), id, patient.UpdateRequest{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Status:  body.Status,
		Address: body.Address,
		Notes:   body.Notes,
	})
	if err != nil {
		return respond(c, "patients.update", err)
	}
	return ok(c, fiber.Map{"message": "Paciente actualizado exitosamente", "patient": newPatientView(*p)})
}

// DELETE /patients/:id
func (h *PatientHandler) Delete(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "patients.delete", err)
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return respond(c, "patients.delete", err)
	}
	return ok(c, fiber.Map{"message": "Paciente eliminado exitosamente"})
}

// ---------------------------------------------------------------------------
// Purchase history
// ---------------------------------------------------------------------------

// GET /patients/:id/history
func (h *PatientHandler) ListHistory(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "patients.history.list", err)
	}
	entries, err := h.svc.ListHistory(c.Context(), id)
	if err != nil {
		return respond(c, "patients.history.list", err)
	}
	return ok(c, fiber.Map{"history": newHistoryViews(entries)})
}

// POST /patients/:id/history
func (h *PatientHandler) AddHistory(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondCreate(c, "patients.history.create", err)
	}
	var body struct {
		ProductID string           `json:"product_id"`
		Quantity  int              `json:"quantity"`
		Price     *decimal.Decimal `json:"price"`
		Date      string           `json:"date"`
		Notes     string           `json:"notes"`
	}
	if err := bindJSON(c, &body); err != nil {
		return respondCreate(c, "patients.history.create", err)
	}

	req := patient.AddHistoryRequest{
		Quantity: body.Quantity,
		Price:    body.Price,
		Notes:    body.Notes,
	}
	if req.ProductID, err = optionalID("product_id", body.ProductID); err != nil {
		return respondCreate(c, "patients.history.create", err)
	}
	if req.Date, err = h.parseDate(body.Date); err != nil {
		return respondCreate(c, "patients.history.create", err)
	}

	entry, err := h.svc.AddHistory(c.Context(), id, req)
	if err != nil {
		return respondCreate(c, "patients.history.create", err)
	}
	return created(c, "Compra registrada en el historial", "entry", newHistoryViews([]repo.PurchaseHistory{*entry})[0])
}

// DELETE /patients/:id/history/:hid
func (h *PatientHandler) DeleteHistory(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "patients.history.delete", err)
	}
	hid, err := idParam(c, "hid")
	if err != nil {
		return respond(c, "patients.history.delete", err)
	}
	if err := h.svc.DeleteHistory(c.Context(), id, hid); err != nil {
		return respond(c, "patients.history.delete", err)
	}
	return ok(c, fiber.Map{"message": "Registro eliminado exitosamente"})
}

// parseDate accepts RFC 3339 or a bare date in the business timezone.
func (h *PatientHandler) parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(validate.DateLayout, v, h.loc)
	if err != nil {
		return nil, badInput("date: formato inválido, use YYYY-MM-DD")
	}
	return &t, nil
}
