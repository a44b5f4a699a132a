package consignment_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/repo/repotest"
	"github.com/Alijeyrad/optica_backend/internal/service/consignment"
	"github.com/Alijeyrad/optica_backend/internal/service/product"
)

func TestStateOf(t *testing.T) {
	tests := []struct {
		stock int
		want  consignment.Status
	}{
		{0, consignment.StatusSold},
		{1, consignment.StatusActive},
		{12, consignment.StatusActive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, consignment.StateOf(tt.stock), "stock %d", tt.stock)
	}
}

func TestCreateForcesType(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := consignment.New(product.New(client))

	stock := 0
	price := decimal.RequireFromString("89.90")
	c, err := svc.Create(ctx, consignment.CreateRequest{
		Name:     "Lentes Premium",
		Category: "lentes",
		Supplier: "Telko",
		Stock:    &stock,
		Price:    &price,
	})
	require.NoError(t, err)
	assert.Equal(t, repo.ProductTypeConsignment, c.Type)
	assert.Equal(t, repo.ProductStatusCritical, c.Status)
	assert.Equal(t, consignment.StatusSold, c.State)
}

func TestListOnlyConsignments(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)
	svc := consignment.New(product.New(client))

	repotest.Product(t, client, func(p *repo.Product) { p.Name = "Armazón propio" })
	repotest.Product(t, client, func(p *repo.Product) {
		p.Name = "Armazones Designer"
		p.Supplier = "Telko"
		p.Type = repo.ProductTypeConsignment
		p.Stock = 5
	})
	repotest.Product(t, client, func(p *repo.Product) {
		p.Name = "Lentes Premium"
		p.Supplier = "Visión Sur"
		p.Category = repo.CategoryLenses
		p.Type = repo.ProductTypeConsignment
		p.Stock = 0
	})

	res, err := svc.List(ctx, consignment.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page.TotalItems)
	assert.Equal(t, []string{"Telko", "Visión Sur"}, res.Suppliers)

	res, err = svc.List(ctx, consignment.ListRequest{Supplier: "telko"})
	require.NoError(t, err)
	require.Len(t, res.Consignments, 1)
	assert.Equal(t, consignment.StatusActive, res.Consignments[0].State)

	res, err = svc.List(ctx, consignment.ListRequest{Search: "lentes"})
	require.NoError(t, err)
	require.Len(t, res.Consignments, 1)
	assert.Equal(t, "Lentes Premium", res.Consignments[0].Name)

	res, err = svc.List(ctx, consignment.ListRequest{Search: "armaz"})
	require.NoError(t, err)
	require.Len(t, res.Consignments, 1)
	assert.Equal(t, "Armazones Designer", res.Consignments[0].Name)
}
