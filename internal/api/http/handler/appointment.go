package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/appointment"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// GET /appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return respond(c, "appointments.list", err)
	}
	patientID, err := optionalID("patient_id", c.Query("patient_id"))
	if err != nil {
		return respond(c, "appointments.list", err)
	}

	result, err := h.svc.List(c.Context(), appointment.ListRequest{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		Type:      c.Query("type"),
		PatientID: patientID,
		Date:      c.Query("date"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
		Page:      page,
	})
	if err != nil {
		return respond(c, "appointments.list", err)
	}

	views := make([]appointmentView, len(result.Appointments))
	for i, a := range result.Appointments {
		views[i] = newAppointmentView(a)
	}
	return list(c, fiber.Map{
		"appointments": views,
		"pagination":   result.Page,
		"filters": fiber.Map{
			"statuses": repo.EnumStrings(repo.AppointmentStatuses),
			"types":    repo.EnumStrings(repo.AppointmentTypes),
		},
	})
}

type appointmentBody struct {
	PatientID *string `json:"patient_id"`
	Date      *string `json:"date"`
	Time      *string `json:"time"`
	Type      *string `json:"type"`
	Doctor    *string `json:"doctor"`
	Status    *string `json:"status"`
	Notes     *string `json:"notes"`
}

// POST /appointments
func (h *AppointmentHandler) Create(c fiber.Ctx) error {
	var body appointmentBody
	if err := bindJSON(c, &body); err != nil {
		return respondCreate(c, "appointments.create", err)
	}
	patientID, err := optionalID("patient_id", deref(body.PatientID))
	if err != nil {
		return respondCreate(c, "appointments.create", err)
	}

	a, err := h.svc.Create(c.Context(), appointment.CreateRequest{
		PatientID: patientID,
		Date:      deref(body.Date),
		Time:      deref(body.Time),
		Type:      deref(body.Type),
		Doctor:    deref(body.Doctor),
		Status:    deref(body.Status),
		Notes:     deref(body.Notes),
	})
	if err != nil {
		return respondCreate(c, "appointments.create", err)
	}
	return created(c, "Cita agendada exitosamente", "appointment", newAppointmentView(*a))
}

// GET /appointments/:id
func (h *AppointmentHandler) Get(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "appointments.get", err)
	}
	a, err := h.svc.GetByID(c.Context(), id)
	if err != nil {
		return respond(c, "appointments.get", err)
	}
	return ok(c, fiber.Map{"appointment": newAppointmentView(*a)})
}

// PUT /appointments/:id
func (h *AppointmentHandler) Update(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "appointments.update", err)
	}
	var body appointmentBody
	if err := bindJSON(c, &body); err != nil {
		return respond(c, "appointments.update", err)
	}

	req := appointment.UpdateRequest{
		Date:   body.Date,
		Time:   body.Time,
		Type:   body.Type,
		Doctor: body.Doctor,
		Status: body.Status,
		Notes:  body.Notes,
	}
	if req.PatientID, err = optionalIDPtr("patient_id", body.PatientID); err != nil {
		return respond(c, "appointments.update", err)
	}

	a, err := h.svc.Update(c.Context(), id, req)
	if err != nil {
		return respond(c, "appointments.update", err)
	}
	return ok(c, fiber.Map{"message": "Cita actualizada exitosamente", "appointment": newAppointmentView(*a)})
}

// DELETE /appointments/:id
func (h *AppointmentHandler) Delete(c fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respond(c, "appointments.delete", err)
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return respond(c, "appointments.delete", err)
	}
	return ok(c, fiber.Map{"message": "Cita eliminada exitosamente"})
}
