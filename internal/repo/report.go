package repo

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/shopspring/decimal"
)

// ReportClient runs the read-only aggregate queries of the dashboard.
type ReportClient struct {
	config
}

type CategoryInventory struct {
	Category   ProductCategory `db:"category"`
	Count      int             `db:"count"`
	TotalStock int             `db:"total_stock"`
}

type CategorySales struct {
	Category ProductCategory
	Quantity int
	Amount   decimal.Decimal
}

func (c *ReportClient) count(ctx context.Context, table string, ps ...*entsql.Predicate) (int, error) {
	t := c.sql().Table(table)
	sel := c.sql().Select(entsql.Count("*")).From(t)
	where(sel, ps)

	var n int
	if err := c.get(ctx, &n, sel); err != nil {
		return 0, fmt.Errorf("repo: count %s: %w", table, err)
	}
	return n, nil
}

// SaleTotals returns total_amount of every sale created in [from, to).
func (c *ReportClient) SaleTotals(ctx context.Context, from, to time.Time) ([]decimal.Decimal, error) {
	t := c.sql().Table(SalesTable)
	sel := c.sql().Select(t.C("total_amount")).From(t).Where(entsql.And(
		entsql.GTE(t.C("created_at"), from.UTC()),
		entsql.LT(t.C("created_at"), to.UTC()),
	))

	totals := []decimal.Decimal{}
	if err := c.selectAll(ctx, &totals, sel); err != nil {
		return nil, fmt.Errorf("repo: sale totals: %w", err)
	}
	return totals, nil
}

func (c *ReportClient) CountAppointmentsOn(ctx context.Context, date string) (int, error) {
	return c.count(ctx, AppointmentsTable, entsql.EQ("date", date))
}

func (c *ReportClient) CountAppointmentsByStatus(ctx context.Context, status AppointmentStatus) (int, error) {
	return c.count(ctx, AppointmentsTable, entsql.EQ("status", string(status)))
}

// CountProducts counts products of typ, or all of them when typ is empty.
func (c *ReportClient) CountProducts(ctx context.Context, typ ProductType) (int, error) {
	if typ == "" {
		return c.count(ctx, ProductsTable)
	}
	return c.count(ctx, ProductsTable, entsql.EQ("type", string(typ)))
}

func (c *ReportClient) CountPatients(ctx context.Context) (int, error) {
	return c.count(ctx, PatientsTable)
}

func (c *ReportClient) CountSalesByStatus(ctx context.Context, statuses ...SaleStatus) (int, error) {
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}
	return c.count(ctx, SalesTable, entsql.In("status", args...))
}

func (c *ReportClient) TotalStock(ctx context.Context) (int, error) {
	t := c.sql().Table(ProductsTable)
	sel := c.sql().Select("COALESCE(" + entsql.Sum(t.C("stock")) + ", 0)").From(t)

	var n int
	if err := c.get(ctx, &n, sel); err != nil {
		return 0, fmt.Errorf("repo: total stock: %w", err)
	}
	return n, nil
}

// RecentSales returns the newest sales with their patient names.
func (c *ReportClient) RecentSales(ctx context.Context, limit int) ([]Sale, error) {
	sc := &SaleClient{config: c.config}
	sel, t, _ := sc.query()
	sel.OrderBy(entsql.Desc(t.C("created_at")), entsql.Desc(t.C("id"))).Limit(limit)

	sales := []Sale{}
	if err := c.selectAll(ctx, &sales, sel); err != nil {
		return nil, fmt.Errorf("repo: recent sales: %w", err)
	}
	return sales, nil
}

// UpcomingAppointments returns appointments on or after date in calendar order.
func (c *ReportClient) UpcomingAppointments(ctx context.Context, date string, limit int) ([]Appointment, error) {
	ac := &AppointmentClient{config: c.config}
	sel, t, _ := ac.query()
	sel.Where(entsql.GTE(t.C("date"), date)).
		OrderBy(entsql.Asc(t.C("date")), entsql.Asc(t.C("time")), entsql.Asc(t.C("id"))).
		Limit(limit)

	appointments := []Appointment{}
	if err := c.selectAll(ctx, &appointments, sel); err != nil {
		return nil, fmt.Errorf("repo: upcoming appointments: %w", err)
	}
	return appointments, nil
}

// InventoryByCategory groups products by category, in category order.
func (c *ReportClient) InventoryByCategory(ctx context.Context) ([]CategoryInventory, error) {
	t := c.sql().Table(ProductsTable)
	sel := c.sql().Select(
		t.C("category"),
		entsql.As(entsql.Count("*"), "count"),
		entsql.As(entsql.Sum(t.C("stock")), "total_stock"),
	).From(t).GroupBy(t.C("category"))

	var rows []CategoryInventory
	if err := c.selectAll(ctx, &rows, sel); err != nil {
		return nil, fmt.Errorf("repo: inventory by category: %w", err)
	}
	byCategory := make(map[ProductCategory]CategoryInventory, len(rows))
	for _, r := range rows {
		byCategory[r.Category] = r
	}

	out := []CategoryInventory{}
	for _, cat := range ProductCategories {
		if r, ok := byCategory[cat]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// SalesByCategory sums sale items of sales created in [from, to) per product
// category. Categories without sold units are left out.
func (c *ReportClient) SalesByCategory(ctx context.Context, from, to time.Time) ([]CategorySales, error) {
	i := c.sql().Table(SaleItemsTable)
	s := c.sql().Table(SalesTable).As("s")
	p := c.sql().Table(ProductsTable).As("p")
	sel := c.sql().Select(p.C("category"), i.C("quantity"), i.C("total_price")).
		From(i).
		Join(s).On(i.C("sale_id"), s.C("id")).
		Join(p).On(i.C("product_id"), p.C("id")).
		Where(entsql.And(
			entsql.GTE(s.C("created_at"), from.UTC()),
			entsql.LT(s.C("created_at"), to.UTC()),
		))

	var rows []struct {
		Category   ProductCategory `db:"category"`
		Quantity   int             `db:"quantity"`
		TotalPrice decimal.Decimal `db:"total_price"`
	}
	if err := c.selectAll(ctx, &rows, sel); err != nil {
		return nil, fmt.Errorf("repo: sales by category: %w", err)
	}

	sums := make(map[ProductCategory]*CategorySales)
	for _, r := range rows {
		cs, ok := sums[r.Category]
		if !ok {
			cs = &CategorySales{Category: r.Category, Amount: decimal.Zero}
			sums[r.Category] = cs
		}
		cs.Quantity += r.Quantity
		cs.Amount = cs.Amount.Add(r.TotalPrice)
	}

	out := []CategorySales{}
	for _, cat := range ProductCategories {
		if cs, ok := sums[cat]; ok && cs.Quantity > 0 {
			out = append(out, *cs)
		}
	}
	return out, nil
}

// LowStockProducts returns products in bajo or critico status, lowest stock first.
func (c *ReportClient) LowStockProducts(ctx context.Context, limit int) ([]Product, error) {
	pc := &ProductClient{config: c.config}
	sel, t := pc.query()
	sel.Where(entsql.In(t.C("status"), string(ProductStatusLow), string(ProductStatusCritical))).
		OrderBy(entsql.Asc(t.C("stock")), entsql.Asc(t.C("name"))).
		Limit(limit)

	products := []Product{}
	if err := c.selectAll(ctx, &products, sel); err != nil {
		return nil, fmt.Errorf("repo: low stock products: %w", err)
	}
	return products, nil
}
