package appointment_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/repo/repotest"
	"github.com/Alijeyrad/optica_backend/internal/service/appointment"
	"github.com/Alijeyrad/optica_backend/internal/service/validate"
	"github.com/Alijeyrad/optica_backend/pkg/constants"
)

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := appointment.New(client)
	p := repotest.Patient(t, client)

	a, err := svc.Create(ctx, appointment.CreateRequest{
		PatientID: p.ID,
		Date:      "2026-03-10",
		Time:      "09:30:00",
		Type:      "examen_visual",
	})
	require.NoError(t, err)
	assert.Equal(t, repo.AppointmentStatusPending, a.Status)
	assert.Equal(t, constants.DefaultDoctor, a.Doctor)
	assert.Equal(t, "09:30", a.Time)
	assert.Equal(t, p.Name, a.PatientName)

	got, err := svc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Date, got.Date)
	assert.Equal(t, p.Name, got.PatientName)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := appointment.New(client)
	p := repotest.Patient(t, client)

	valid := func(mutate func(*appointment.CreateRequest)) appointment.CreateRequest {
		req := appointment.CreateRequest{PatientID: p.ID, Date: "2026-03-10", Time: "10:00", Type: "control"}
		mutate(&req)
		return req
	}

	tests := []struct {
		name  string
		req   appointment.CreateRequest
		field string
	}{
		{"bad date", valid(func(r *appointment.CreateRequest) { r.Date = "10/03/2026" }), "date"},
		{"impossible date", valid(func(r *appointment.CreateRequest) { r.Date = "2026-02-30" }), "date"},
		{"bad time", valid(func(r *appointment.CreateRequest) { r.Time = "25:00" }), "time"},
		{"missing type", valid(func(r *appointment.CreateRequest) { r.Type = "" }), "type"},
		{"bad status", valid(func(r *appointment.CreateRequest) { r.Status = "atrasada" }), "status"},
		{"missing patient", valid(func(r *appointment.CreateRequest) { r.PatientID = uuid.Nil }), "patient_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			var verr *validate.Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, err := svc.Create(ctx, valid(func(r *appointment.CreateRequest) { r.PatientID = uuid.New() }))
	assert.ErrorIs(t, err, appointment.ErrPatientNotFound)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := appointment.New(client)
	ana := repotest.Patient(t, client)
	beto := repotest.Patient(t, client)

	seed := []appointment.CreateRequest{
		{PatientID: ana.ID, Date: "2026-03-12", Time: "11:00", Type: "control"},
		{PatientID: ana.ID, Date: "2026-03-10", Time: "15:00", Type: "examen_visual", Status: "confirmada"},
		{PatientID: beto.ID, Date: "2026-03-10", Time: "09:00", Type: "entrega", Notes: "armazón listo"},
		{PatientID: beto.ID, Date: "2026-03-20", Time: "08:00", Type: "consulta", Doctor: "Dra. Rojas"},
	}
	for _, req := range seed {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	times := func(res *appointment.ListResult) []string {
		out := make([]string, len(res.Appointments))
		for i, a := range res.Appointments {
			out[i] = a.Date + " " + a.Time
		}
		return out
	}

	tests := []struct {
		name string
		req  appointment.ListRequest
		want []string
	}{
		{"calendar order", appointment.ListRequest{}, []string{"2026-03-10 09:00", "2026-03-10 15:00", "2026-03-12 11:00", "2026-03-20 08:00"}},
		{"by patient", appointment.ListRequest{PatientID: ana.ID}, []string{"2026-03-10 15:00", "2026-03-12 11:00"}},
		{"by status", appointment.ListRequest{Status: "confirmada"}, []string{"2026-03-10 15:00"}},
		{"by type", appointment.ListRequest{Type: "entrega"}, []string{"2026-03-10 09:00"}},
		{"exact date", appointment.ListRequest{Date: "2026-03-10"}, []string{"2026-03-10 09:00", "2026-03-10 15:00"}},
		{"range", appointment.ListRequest{DateFrom: "2026-03-11", DateTo: "2026-03-20"}, []string{"2026-03-12 11:00", "2026-03-20 08:00"}},
		{"search doctor", appointment.ListRequest{Search: "rojas"}, []string{"2026-03-20 08:00"}},
		{"search notes", appointment.ListRequest{Search: "ARMAZ"}, []string{"2026-03-10 09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.List(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, times(res))
		})
	}

	_, err := svc.List(ctx, appointment.ListRequest{DateFrom: "mañana"})
	assert.True(t, validate.IsValidation(err))
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := appointment.New(client)
	ana := repotest.Patient(t, client)
	beto := repotest.Patient(t, client)

	a, err := svc.Create(ctx, appointment.CreateRequest{PatientID: ana.ID, Date: "2026-03-10", Time: "10:00", Type: "control"})
	require.NoError(t, err)

	status := "cancelada"
	updated, err := svc.Update(ctx, a.ID, appointment.UpdateRequest{PatientID: &beto.ID, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, repo.AppointmentStatusCancelled, updated.Status)
	assert.Equal(t, beto.Name, updated.PatientName)

	missing := uuid.New()
	_, err = svc.Update(ctx, a.ID, appointment.UpdateRequest{PatientID: &missing})
	assert.ErrorIs(t, err, appointment.ErrPatientNotFound)

	_, err = svc.Update(ctx, uuid.New(), appointment.UpdateRequest{Status: &status})
	assert.ErrorIs(t, err, appointment.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), appointment.ErrNotFound)
}
