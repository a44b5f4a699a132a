package patient_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/repo/repotest"
	"github.com/Alijeyrad/optica_backend/internal/service/patient"
	"github.com/Alijeyrad/optica_backend/internal/service/validate"
)

func newService(t *testing.T) (patient.Service, *repo.Client) {
	t.Helper()
	client := repotest.NewClient(t)
	return patient.New(client, patient.Config{PhoneRegion: "CL"}), client
}

func TestCreateNormalizes(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.Create(context.Background(), patient.CreateRequest{
		Name:  "  María González ",
		Email: "Maria.Gonzalez@Example.com",
		Phone: "9 8765 4321",
	})
	require.NoError(t, err)
	assert.Equal(t, "María González", p.Name)
	assert.Equal(t, "maria.gonzalez@example.com", p.Email)
	assert.Equal(t, "+56987654321", p.Phone)
	assert.Equal(t, repo.PatientStatusActive, p.Status)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t)

	tests := []struct {
		name  string
		req   patient.CreateRequest
		field string
	}{
		{"missing name", patient.CreateRequest{Email: "a@b.cl", Phone: "+56987654321"}, "name"},
		{"bad email", patient.CreateRequest{Name: "Ana", Email: "no-es-email", Phone: "+56987654321"}, "email"},
		{"display name email", patient.CreateRequest{Name: "Ana", Email: "Ana <a@b.cl>", Phone: "+56987654321"}, "email"},
		{"bad phone", patient.CreateRequest{Name: "Ana", Email: "a@b.cl", Phone: "12"}, "phone"},
		{"bad status", patient.CreateRequest{Name: "Ana", Email: "a@b.cl", Phone: "+56987654321", Status: "dormido"}, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			var verr *validate.Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	first, err := svc.Create(ctx, patient.CreateRequest{Name: "Ana", Email: "ana@example.com", Phone: "+56987654321"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, patient.CreateRequest{Name: "Otra Ana", Email: "ANA@example.com", Phone: "+56911111111"})
	require.ErrorIs(t, err, patient.ErrEmailTaken)

	got, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	res, err := svc.List(ctx, patient.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page.TotalItems)

	second, err := svc.Create(ctx, patient.CreateRequest{Name: "Beto", Email: "beto@example.com", Phone: "+56922222222"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, second.ID, patient.UpdateRequest{Email: &first.Email})
	assert.ErrorIs(t, err, patient.ErrEmailTaken)

	// keeping one's own email is not a conflict
	_, err = svc.Update(ctx, first.ID, patient.UpdateRequest{Email: &first.Email})
	assert.NoError(t, err)
}

func TestListEmbedsRecentHistory(t *testing.T) {
	ctx := context.Background()
	svc, client := newService(t)

	ana, err := svc.Create(ctx, patient.CreateRequest{Name: "Ana", Email: "ana@example.com", Phone: "+56987654321"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, patient.CreateRequest{Name: "Beto", Email: "beto@example.com", Phone: "+56922222222"})
	require.NoError(t, err)
	product := repotest.Product(t, client)

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		date := base.AddDate(0, 0, i)
		_, err := svc.AddHistory(ctx, ana.ID, patient.AddHistoryRequest{ProductID: product.ID, Quantity: 1, Date: &date})
		require.NoError(t, err)
	}

	res, err := svc.List(ctx, patient.ListRequest{})
	require.NoError(t, err)
	require.Len(t, res.Patients, 2)

	first := res.Patients[0]
	assert.Equal(t, "Ana", first.Name)
	assert.Equal(t, 7, first.TotalPurchases)
	require.Len(t, first.RecentHistory, patient.RecentHistoryLimit)
	assert.True(t, first.RecentHistory[0].Date.Equal(base.AddDate(0, 0, 6)))
	assert.True(t, first.RecentHistory[0].Price.Equal(product.Price))
	assert.Equal(t, product.Name, first.RecentHistory[0].ProductName)

	assert.Equal(t, 0, res.Patients[1].TotalPurchases)
	assert.Empty(t, res.Patients[1].RecentHistory)
}

func TestHistoryLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, client := newService(t)

	p, err := svc.Create(ctx, patient.CreateRequest{Name: "Ana", Email: "ana@example.com", Phone: "+56987654321"})
	require.NoError(t, err)
	product := repotest.Product(t, client)

	price := decimal.RequireFromString("75.50")
	h, err := svc.AddHistory(ctx, p.ID, patient.AddHistoryRequest{ProductID: product.ID, Quantity: 2, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "75.50", h.Price.StringFixed(2))

	_, err = svc.AddHistory(ctx, p.ID, patient.AddHistoryRequest{ProductID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, patient.ErrProductNotFound)

	_, err = svc.AddHistory(ctx, p.ID, patient.AddHistoryRequest{ProductID: product.ID, Quantity: 0})
	assert.True(t, validate.IsValidation(err))

	_, err = svc.AddHistory(ctx, uuid.New(), patient.AddHistoryRequest{ProductID: product.ID, Quantity: 1})
	assert.ErrorIs(t, err, patient.ErrNotFound)

	entries, err := svc.ListHistory(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, svc.DeleteHistory(ctx, p.ID, h.ID))
	assert.ErrorIs(t, svc.DeleteHistory(ctx, p.ID, h.ID), patient.ErrHistoryNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	p, err := svc.Create(ctx, patient.CreateRequest{Name: "Ana", Email: "ana@example.com", Phone: "+56987654321"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, patient.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), patient.ErrNotFound)
}
