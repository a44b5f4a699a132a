package repo_test

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
)

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)

	p := repotest.Product(t, client, func(p *repo.Product) {
		p.Price = decimal.RequireFromString("129.90")
	})
	require.NotEqual(t, uuid.Nil, p.ID)

	got, err := client.Product.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Code, got.Code)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("129.90")))
	assert.Equal(t, repo.CategoryFrames, got.Category)
	assert.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Millisecond)

	got.Stock = 2
	got.Status = repo.ProductStatusLow
	require.NoError(t, client.Product.Update(ctx, got))

	again, err := client.Product.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Stock)
	assert.Equal(t, repo.ProductStatusLow, again.Status)

	require.NoError(t, client.Product.Delete(ctx, p.ID))
	_, err = client.Product.Get(ctx, p.ID)
	assert.True(t, repo.IsNotFound(err))

	err = client.Product.Delete(ctx, p.ID)
	assert.True(t, repo.IsNotFound(err))
}

func TestProductValidation(t *testing.T) {
	client := repotest.NewClient(t)

	err := client.Product.Create(context.Background(), &repo.Product{
		Code: "PROD-AAAAAAAA", Name: "x", Category: "gafas",
		Status: repo.ProductStatusNormal, Type: repo.ProductTypeOwn,
	})
	require.Error(t, err)
	assert.True(t, repo.IsValidationError(err))
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)

	p := repotest.Product(t, client)
	dup := *p
	err := client.Product.Create(ctx, &dup)
	require.Error(t, err)
	assert.True(t, repo.IsConstraintError(err), "got %v", err)

	exists, err := client.Product.CodeExists(ctx, p.Code)
	require.NoError(t, err)
	assert.True(t, exists)

	patient := repotest.Patient(t, client)
	err = client.Patient.Create(ctx, &repo.Patient{
		Name: "Otra", Email: patient.Email, Status: repo.PatientStatusActive,
	})
	assert.True(t, repo.IsConstraintError(err), "got %v", err)

	taken, err := client.Patient.EmailTaken(ctx, patient.Email, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = client.Patient.EmailTaken(ctx, patient.Email, patient.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestDanglingReference(t *testing.T) {
	client := repotest.NewClient(t)

	err := client.Sale.Create(context.Background(), &repo.Sale{
		OrderNumber: "ORD-AAAAAAAA",
		PatientID:   uuid.New(),
		Status:      repo.SaleStatusNew,
	})
	require.Error(t, err)
	assert.True(t, repo.IsConstraintError(err), "got %v", err)
}

func TestProductListFilterAndPaginate(t *testing.T) {
	ctx := context.Background()
	clock := repotest.NewClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	client := repotest.NewClient(t, repo.WithClock(clock.Now))

	var lenses []*repo.Product
	for i := 0; i < 12; i++ {
		clock.Advance(time.Minute)
		lenses = append(lenses, repotest.Product(t, client, func(p *repo.Product) {
			p.Category = repo.CategoryLenses
		}))
	}
	for i := 0; i < 3; i++ {
		clock.Advance(time.Minute)
		repotest.Product(t, client, func(p *repo.Product) {
			p.Supplier = "Visión Sur"
		})
	}

	page, info, err := client.Product.List(ctx, repo.ProductFilter{Category: repo.CategoryLenses}, repo.Page{Number: 2, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, repo.PageInfo{CurrentPage: 2, TotalPages: 3, TotalItems: 12, HasNext: true, HasPrevious: true, PageSize: 5}, info)
	require.Len(t, page, 5)
	// newest first: page 2 holds the 6th..10th newest
	for i, p := range page {
		assert.Equal(t, lenses[11-5-i].ID, p.ID)
	}

	bySupplier, _, err := client.Product.List(ctx, repo.ProductFilter{Supplier: "visión"}, repo.Page{})
	require.NoError(t, err)
	assert.Len(t, bySupplier, 3)

	search, _, err := client.Product.List(ctx, repo.ProductFilter{Search: lenses[0].Code}, repo.Page{})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, lenses[0].ID, search[0].ID)

	suppliers, err := client.Product.Suppliers(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lux Óptica", "Visión Sur"}, suppliers)
}

func TestPatientCascade(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)

	patient := repotest.Patient(t, client)
	product := repotest.Product(t, client)
	sale := repotest.Sale(t, client, patient.ID)
	item := &repo.SaleItem{SaleID: sale.ID, ProductID: product.ID, Quantity: 1,
		UnitPrice: product.Price, TotalPrice: product.Price}
	require.NoError(t, client.SaleItem.Create(ctx, item))
	appt := repotest.Appointment(t, client, patient.ID, "2026-03-02", "09:30")
	hist := &repo.PurchaseHistory{PatientID: patient.ID, ProductID: product.ID, Quantity: 1, Price: product.Price}
	require.NoError(t, client.PurchaseHistory.Create(ctx, hist))

	require.NoError(t, client.Patient.Delete(ctx, patient.ID))

	_, err := client.Sale.Get(ctx, sale.ID)
	assert.True(t, repo.IsNotFound(err))
	_, err = client.SaleItem.Get(ctx, sale.ID, item.ID)
	assert.True(t, repo.IsNotFound(err))
	_, err = client.Appointment.Get(ctx, appt.ID)
	assert.True(t, repo.IsNotFound(err))
	_, err = client.PurchaseHistory.Get(ctx, hist.ID)
	assert.True(t, repo.IsNotFound(err))

	// products are only referenced
	_, err = client.Product.Get(ctx, product.ID)
	assert.NoError(t, err)
}

func TestPurchaseHistory(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)

	patient := repotest.Patient(t, client)
	other := repotest.Patient(t, client)
	product := repotest.Product(t, client)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		require.NoError(t, client.PurchaseHistory.Create(ctx, &repo.PurchaseHistory{
			PatientID: patient.ID, ProductID: product.ID, Quantity: i + 1,
			Price: decimal.NewFromInt(10), Date: base.AddDate(0, 0, i),
		}))
	}

	last, err := client.PurchaseHistory.ListByPatient(ctx, patient.ID, 5)
	require.NoError(t, err)
	require.Len(t, last, 5)
	assert.Equal(t, 7, last[0].Quantity)
	assert.Equal(t, product.Name, last[0].ProductName)
	assert.True(t, last[0].Date.Equal(base.AddDate(0, 0, 6)))

	counts, err := client.PurchaseHistory.CountByPatients(ctx, []uuid.UUID{patient.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, 7, counts[patient.ID])
	assert.Equal(t, 0, counts[other.ID])

	err = client.PurchaseHistory.Delete(ctx, other.ID, last[0].ID)
	assert.True(t, repo.IsNotFound(err))
	require.NoError(t, client.PurchaseHistory.Delete(ctx, patient.ID, last[0].ID))
}

func TestAppointmentListOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)

	ana := repotest.Patient(t, client, func(p *repo.Patient) { p.Name = "Ana Rojas" })
	luis := repotest.Patient(t, client, func(p *repo.Patient) { p.Name = "Luis Soto" })

	repotest.Appointment(t, client, ana.ID, "2026-03-03", "10:00")
	repotest.Appointment(t, client, luis.ID, "2026-03-02", "15:00", func(a *repo.Appointment) {
		a.Status = repo.AppointmentStatusConfirmed
	})
	repotest.Appointment(t, client, ana.ID, "2026-03-02", "09:00")

	all, info, err := client.Appointment.List(ctx, repo.AppointmentFilter{}, repo.Page{})
	require.NoError(t, err)
	assert.Equal(t, 3, info.TotalItems)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"2026-03-02 09:00", "2026-03-02 15:00", "2026-03-03 10:00"},
		[]string{all[0].Date + " " + all[0].Time, all[1].Date + " " + all[1].Time, all[2].Date + " " + all[2].Time})
	assert.Equal(t, "Ana Rojas", all[0].PatientName)

	byName, _, err := client.Appointment.List(ctx, repo.AppointmentFilter{Search: "luis"}, repo.Page{})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, luis.ID, byName[0].PatientID)

	ranged, _, err := client.Appointment.List(ctx, repo.AppointmentFilter{DateFrom: "2026-03-03", DateTo: "2026-03-31"}, repo.Page{})
	require.NoError(t, err)
	assert.Len(t, ranged, 1)

	confirmed, _, err := client.Appointment.List(ctx, repo.AppointmentFilter{Status: repo.AppointmentStatusConfirmed, PatientID: luis.ID}, repo.Page{})
	require.NoError(t, err)
	assert.Len(t, confirmed, 1)
}

func TestSaleItemsAndTotals(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)

	patient := repotest.Patient(t, client)
	frame := repotest.Product(t, client)
	case_ := repotest.Product(t, client, func(p *repo.Product) {
		p.Category = repo.CategoryAccessories
		p.Price = decimal.RequireFromString("50.00")
	})
	sale := repotest.Sale(t, client, patient.ID)

	err := client.WithTx(ctx, func(tx *repo.Tx) error {
		if err := tx.SaleItem.Create(ctx, &repo.SaleItem{SaleID: sale.ID, ProductID: frame.ID, Quantity: 2,
			UnitPrice: frame.Price, TotalPrice: decimal.RequireFromString("200.00")}); err != nil {
			return err
		}
		return tx.SaleItem.Create(ctx, &repo.SaleItem{SaleID: sale.ID, ProductID: case_.ID, Quantity: 1,
			UnitPrice: case_.Price, TotalPrice: case_.Price})
	})
	require.NoError(t, err)

	totals, err := client.SaleItem.LineTotals(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, totals, 2)

	require.NoError(t, client.Sale.SetTotal(ctx, sale.ID, decimal.RequireFromString("250.00")))
	got, err := client.Sale.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "250.00", got.TotalAmount.StringFixed(2))
	assert.Equal(t, patient.Name, got.PatientName)

	items, err := client.SaleItem.ListBySales(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, items[sale.ID], 2)
	assert.Equal(t, frame.Name, items[sale.ID][0].ProductName)

	ids, err := client.SaleItem.SaleIDsByProduct(ctx, case_.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{sale.ID}, ids)

	// product delete cascades to its items
	require.NoError(t, client.Product.Delete(ctx, case_.ID))
	totals, err = client.SaleItem.LineTotals(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, totals, 1)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)

	patient := repotest.Patient(t, client)
	err := client.WithTx(ctx, func(tx *repo.Tx) error {
		if err := tx.Sale.Create(ctx, &repo.Sale{OrderNumber: "ORD-ROLLBACK", PatientID: patient.ID, Status: repo.SaleStatusNew}); err != nil {
			return err
		}
		return tx.SaleItem.Create(ctx, &repo.SaleItem{SaleID: uuid.New(), ProductID: uuid.New(), Quantity: 1})
	})
	require.Error(t, err)

	exists, err := client.Sale.OrderNumberExists(ctx, "ORD-ROLLBACK")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPurchaseItems(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)

	product := repotest.Product(t, client)
	p := &repo.Purchase{PurchaseNumber: "PUR-AAAAAAAA", Supplier: "Lux Óptica", Status: repo.PurchaseStatusPending}
	require.NoError(t, client.Purchase.Create(ctx, p))

	item := &repo.PurchaseItem{PurchaseID: p.ID, ProductID: product.ID, Quantity: 3,
		UnitCost: decimal.RequireFromString("40.00"), TotalCost: decimal.RequireFromString("120.00")}
	require.NoError(t, client.PurchaseItem.Create(ctx, item))

	item.Quantity = 4
	item.TotalCost = decimal.RequireFromString("160.00")
	require.NoError(t, client.PurchaseItem.Update(ctx, item))

	got, err := client.PurchaseItem.Get(ctx, p.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
	assert.Equal(t, "160.00", got.TotalCost.StringFixed(2))

	list, info, err := client.Purchase.List(ctx, repo.PurchaseFilter{Supplier: "lux"}, repo.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, info.TotalItems)
	assert.Equal(t, p.PurchaseNumber, list[0].PurchaseNumber)

	require.NoError(t, client.PurchaseItem.Delete(ctx, p.ID, item.ID))
	err = client.PurchaseItem.Delete(ctx, p.ID, item.ID)
	assert.True(t, repo.IsNotFound(err))
}

func TestSearchFoldsAccentedNames(t *testing.T) {
	ctx := context.Background()
	client := repotest.NewClient(t)

	angela := repotest.Patient(t, client, func(p *repo.Patient) { p.Name = "ÁNGELA MUÑOZ" })
	repotest.Patient(t, client, func(p *repo.Patient) { p.Name = "Pedro Soto" })
	sale := repotest.Sale(t, client, angela.ID)
	appt := repotest.Appointment(t, client, angela.ID, "2026-03-12", "10:00")

	tests := []string{"ángela", "ÁNGELA", "muñoz", "MUÑOZ", "Ángela Muñoz"}
	for _, term := range tests {
		t.Run(term, func(t *testing.T) {
			patients, info, err := client.Patient.List(ctx, repo.PatientFilter{Search: term}, repo.Page{})
			require.NoError(t, err)
			require.Len(t, patients, 1)
			assert.Equal(t, angela.ID, patients[0].ID)
			assert.Equal(t, 1, info.TotalItems)

			// patient name comes from the joined table
			sales, _, err := client.Sale.List(ctx, repo.SaleFilter{Search: term}, repo.Page{})
			require.NoError(t, err)
			require.Len(t, sales, 1)
			assert.Equal(t, sale.ID, sales[0].ID)
			assert.Equal(t, "ÁNGELA MUÑOZ", sales[0].PatientName)

			appts, _, err := client.Appointment.List(ctx, repo.AppointmentFilter{Search: term}, repo.Page{})
			require.NoError(t, err)
			require.Len(t, appts, 1)
			assert.Equal(t, appt.ID, appts[0].ID)
		})
	}
}
