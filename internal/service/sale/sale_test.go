package sale_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/repo/repotest"
	"github.com/Alijeyrad/optica_backend/internal/service/product"
	"github.com/Alijeyrad/optica_backend/internal/service/sale"
	"github.com/Alijeyrad/optica_backend/internal/service/validate"
)

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateWithItems(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := sale.New(client)
	p := repotest.Patient(t, client)
	frame := repotest.Product(t, client)
	lens := repotest.Product(t, client, func(pr *repo.Product) {
		pr.Name = "Lente monofocal"
		pr.Category = repo.CategoryLenses
		pr.Price = decimal.RequireFromString("50.00")
	})

	s, err := svc.Create(ctx, sale.CreateRequest{
		PatientID: p.ID,
		Items: []sale.ItemRequest{
			{ProductID: frame.ID, Quantity: 2, UnitPrice: money("100.00")},
			{ProductID: lens.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.OrderNumber, "ORD-"))
	assert.Len(t, s.OrderNumber, len("ORD-")+8)
	assert.Equal(t, repo.SaleStatusNew, s.Status)
	assert.Equal(t, p.Name, s.PatientName)
	assert.Equal(t, "250.00", s.TotalAmount.StringFixed(2))
	require.Len(t, s.Items, 2)
	assert.Equal(t, "200.00", s.Items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "Lente monofocal", s.Items[1].ProductName)
	assert.Equal(t, "50.00", s.Items[1].UnitPrice.StringFixed(2))

	got, err := svc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.OrderNumber, got.OrderNumber)
	assert.True(t, got.TotalAmount.Equal(s.TotalAmount))
}

func TestCreateIsAtomic(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := sale.New(client)
	p := repotest.Patient(t, client)
	frame := repotest.Product(t, client)

	_, err := svc.Create(ctx, sale.CreateRequest{
		PatientID: p.ID,
		Items: []sale.ItemRequest{
			{ProductID: frame.ID, Quantity: 1},
			{ProductID: uuid.New(), Quantity: 1},
		},
	})
	require.ErrorIs(t, err, sale.ErrProductNotFound)

	_, err = svc.Create(ctx, sale.CreateRequest{
		PatientID: p.ID,
		Items:     []sale.ItemRequest{{ProductID: frame.ID, Quantity: 0}},
	})
	require.True(t, validate.IsValidation(err))

	res, err := svc.List(ctx, sale.ListRequest{})
	require.NoError(t, err)
	assert.Zero(t, res.Page.TotalItems)

	_, err = svc.Create(ctx, sale.CreateRequest{PatientID: uuid.New()})
	assert.ErrorIs(t, err, sale.ErrPatientNotFound)
}

func TestItemWritesRecomputeTotal(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := sale.New(client)
	p := repotest.Patient(t, client)
	frame := repotest.Product(t, client)

	s, err := svc.Create(ctx, sale.CreateRequest{PatientID: p.ID})
	require.NoError(t, err)
	assert.True(t, s.TotalAmount.IsZero())
	assert.Empty(t, s.Items)

	s, err = svc.AddItem(ctx, s.ID, sale.ItemRequest{ProductID: frame.ID, Quantity: 2, UnitPrice: money("100.00")})
	require.NoError(t, err)
	assert.Equal(t, "200.00", s.TotalAmount.StringFixed(2))

	s, err = svc.AddItem(ctx, s.ID, sale.ItemRequest{ProductID: frame.ID, Quantity: 1, UnitPrice: money("50.00")})
	require.NoError(t, err)
	assert.Equal(t, "250.00", s.TotalAmount.StringFixed(2))

	qty := 3
	s, err = svc.UpdateItem(ctx, s.ID, s.Items[1].ID, sale.UpdateItemRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "150.00", s.Items[1].TotalPrice.StringFixed(2))
	assert.Equal(t, "350.00", s.TotalAmount.StringFixed(2))

	s, err = svc.DeleteItem(ctx, s.ID, s.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "150.00", s.TotalAmount.StringFixed(2))

	_, err = svc.DeleteItem(ctx, s.ID, uuid.New())
	assert.ErrorIs(t, err, sale.ErrItemNotFound)
	_, err = svc.AddItem(ctx, uuid.New(), sale.ItemRequest{ProductID: frame.ID, Quantity: 1})
	assert.ErrorIs(t, err, sale.ErrNotFound)

	// deleting the product drops its items and the total follows
	require.NoError(t, product.New(client).Delete(ctx, frame.ID))
	got, err := svc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.True(t, got.TotalAmount.IsZero())
}

func TestUpdateKeepsOrderNumber(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := sale.New(client)
	p := repotest.Patient(t, client)
	other := repotest.Patient(t, client)

	s, err := svc.Create(ctx, sale.CreateRequest{PatientID: p.ID, Notes: "retira el viernes"})
	require.NoError(t, err)

	status := "entregado"
	updated, err := svc.Update(ctx, s.ID, sale.UpdateRequest{PatientID: &other.ID, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, s.OrderNumber, updated.OrderNumber)
	assert.Equal(t, repo.SaleStatusDelivered, updated.Status)
	assert.Equal(t, other.Name, updated.PatientName)
	assert.Equal(t, "retira el viernes", updated.Notes)

	bad := "perdido"
	_, err = svc.Update(ctx, s.ID, sale.UpdateRequest{Status: &bad})
	assert.True(t, validate.IsValidation(err))

	_, err = svc.Update(ctx, uuid.New(), sale.UpdateRequest{Status: &status})
	assert.ErrorIs(t, err, sale.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := sale.New(client)
	ana := repotest.Patient(t, client, func(p *repo.Patient) { p.Name = "Ana Pérez" })
	beto := repotest.Patient(t, client)
	frame := repotest.Product(t, client)

	_, err := svc.Create(ctx, sale.CreateRequest{PatientID: ana.ID, Items: []sale.ItemRequest{{ProductID: frame.ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, sale.CreateRequest{PatientID: beto.ID, Status: "en_proceso"})
	require.NoError(t, err)

	res, err := svc.List(ctx, sale.ListRequest{Search: "pérez"})
	require.NoError(t, err)
	require.Len(t, res.Sales, 1)
	assert.Len(t, res.Sales[0].Items, 1)

	res, err = svc.List(ctx, sale.ListRequest{Status: "en_proceso"})
	require.NoError(t, err)
	require.Len(t, res.Sales, 1)
	assert.Equal(t, beto.ID, res.Sales[0].PatientID)
	assert.NotNil(t, res.Sales[0].Items)

	res, err = svc.List(ctx, sale.ListRequest{PatientID: ana.ID})
	require.NoError(t, err)
	assert.Len(t, res.Sales, 1)

	_, err = svc.List(ctx, sale.ListRequest{Status: "x"})
	assert.True(t, validate.IsValidation(err))
}

func TestItemWritesRejectTotalsBeyondColumn(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := sale.New(client)
	p := repotest.Patient(t, client)
	frame := repotest.Product(t, client)

	s, err := svc.Create(ctx, sale.CreateRequest{PatientID: p.ID})
	require.NoError(t, err)

	tests := []struct {
		name  string
		items []sale.ItemRequest
	}{
		{"line total", []sale.ItemRequest{{ProductID: frame.ID, Quantity: 2_000_000, UnitPrice: money("99.99")}}},
		{"order total", []sale.ItemRequest{
			{ProductID: frame.ID, Quantity: 1, UnitPrice: money("60000000.00")},
			{ProductID: frame.ID, Quantity: 1, UnitPrice: money("60000000.00")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, sale.CreateRequest{PatientID: p.ID, Items: tt.items})
			assert.True(t, validate.IsValidation(err), "create: %v", err)

			var last error
			for _, item := range tt.items {
				_, last = svc.AddItem(ctx, s.ID, item)
				if last != nil {
					break
				}
			}
			assert.True(t, validate.IsValidation(last), "add item: %v", last)
		})
	}

	// only the first 60,000,000.00 line was kept
	got, err := svc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "60000000.00", got.TotalAmount.StringFixed(2))
	assert.Len(t, got.Items, 1)
}
