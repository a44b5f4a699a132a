package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var saleColumns = []string{
	"id", "order_number", "patient_id", "status", "total_amount", "notes", "created_at", "updated_at",
}

type SaleFilter struct {
	Search    string // order number, patient name or notes
	Status    SaleStatus
	PatientID uuid.UUID
}

func (f SaleFilter) predicates(t, p *entsql.SelectTable) []*entsql.Predicate {
	var ps []*entsql.Predicate
	if f.Search != "" {
		ps = append(ps, entsql.Or(
			entsql.ContainsFold(t.C("order_number"), f.Search),
			entsql.ContainsFold(p.C("name"), f.Search),
			entsql.ContainsFold(t.C("notes"), f.Search),
		))
	}
	if f.Status != "" {
		ps = append(ps, entsql.EQ(t.C("status"), string(f.Status)))
	}
	if f.PatientID != uuid.Nil {
		ps = append(ps, entsql.EQ(t.C("patient_id"), f.PatientID))
	}
	return ps
}

// SaleClient is a client for the Sale schema.
type SaleClient struct {
	config
}

func (c *SaleClient) tables() (*entsql.SelectTable, *entsql.SelectTable) {
	return c.sql().Table(SalesTable), c.sql().Table(PatientsTable).As("p")
}

func (c *SaleClient) query() (*entsql.Selector, *entsql.SelectTable, *entsql.SelectTable) {
	t, p := c.tables()
	sel := c.sql().Select(append(columns(t, saleColumns...), entsql.As(p.C("name"), "patient_name"))...).
		From(t).
		Join(p).On(t.C("patient_id"), p.C("id"))
	return sel, t, p
}

func (s *Sale) check() error {
	if s.OrderNumber == "" {
		return validationError("order_number", "missing required value")
	}
	if s.PatientID == uuid.Nil {
		return validationError("patient_id", "missing required value")
	}
	if !s.Status.Valid() {
		return validationError("status", "invalid enum value %q", s.Status)
	}
	return nil
}

// Create inserts the sale row only; items go through SaleItemClient.
func (c *SaleClient) Create(ctx context.Context, s *Sale) error {
	if err := s.check(); err != nil {
		return err
	}
	now := c.timestamp()
	s.ID = newID()
	s.CreatedAt, s.UpdatedAt = now, now

	q := c.sql().Insert(SalesTable).
		Columns(saleColumns...).
		Values(s.ID, s.OrderNumber, s.PatientID, string(s.Status), s.TotalAmount, s.Notes, s.CreatedAt, s.UpdatedAt)
	if _, err := c.exec(ctx, q); err != nil {
		return fmt.Errorf("repo: insert sale: %w", err)
	}
	return nil
}

func (c *SaleClient) Get(ctx context.Context, id uuid.UUID) (*Sale, error) {
	sel, t, _ := c.query()
	sel.Where(entsql.EQ(t.C("id"), id))

	var s Sale
	if err := c.get(ctx, &s, sel); err != nil {
		return nil, notFound(err, "sale")
	}
	return &s, nil
}

func (c *SaleClient) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	t := c.sql().Table(SalesTable)
	sel := c.sql().Select(entsql.Count("*")).From(t).Where(entsql.EQ(t.C("order_number"), number))

	var n int
	if err := c.get(ctx, &n, sel); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update writes patient, status and notes. The order number and the total
// are not touched here.
func (c *SaleClient) Update(ctx context.Context, s *Sale) error {
	if err := s.check(); err != nil {
		return err
	}
	s.UpdatedAt = c.timestamp()

	q := c.sql().Update(SalesTable).
		Set("patient_id", s.PatientID).
		Set("status", string(s.Status)).
		Set("notes", s.Notes).
		Set("updated_at", s.UpdatedAt).
		Where(entsql.EQ("id", s.ID))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: update sale: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "sale"}
	}
	return nil
}

// SetTotal stores a recomputed total_amount.
func (c *SaleClient) SetTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	q := c.sql().Update(SalesTable).
		Set("total_amount", total).
		Set("updated_at", c.timestamp()).
		Where(entsql.EQ("id", id))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: update sale total: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "sale"}
	}
	return nil
}

func (c *SaleClient) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := c.exec(ctx, c.sql().Delete(SalesTable).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("repo: delete sale: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "sale"}
	}
	return nil
}

// List returns one page of sales, newest first. Items are not loaded.
func (c *SaleClient) List(ctx context.Context, f SaleFilter, page Page) ([]Sale, PageInfo, error) {
	t, p := c.tables()
	count := c.sql().Select(entsql.Count("*")).From(t).Join(p).On(t.C("patient_id"), p.C("id"))
	where(count, f.predicates(t, p))

	var total int
	if err := c.get(ctx, &total, count); err != nil {
		return nil, PageInfo{}, fmt.Errorf("repo: count sales: %w", err)
	}
	info, offset := Paginate(total, page)

	sel, t, p := c.query()
	where(sel, f.predicates(t, p)).
		OrderBy(entsql.Desc(t.C("created_at")), entsql.Desc(t.C("id"))).
		Limit(info.PageSize).
		Offset(offset)

	sales := []Sale{}
	if err := c.selectAll(ctx, &sales, sel); err != nil {
		return nil, PageInfo{}, fmt.Errorf("repo: list sales: %w", err)
	}
	return sales, info, nil
}

var saleItemColumns = []string{"id", "sale_id", "product_id", "quantity", "unit_price", "total_price"}

// SaleItemClient is a client for the SaleItem schema.
type SaleItemClient struct {
	config
}

func (c *SaleItemClient) query() (*entsql.Selector, *entsql.SelectTable) {
	t := c.sql().Table(SaleItemsTable)
	p := c.sql().Table(ProductsTable).As("p")
	sel := c.sql().Select(append(columns(t, saleItemColumns...), entsql.As(p.C("name"), "product_name"))...).
		From(t).
		Join(p).On(t.C("product_id"), p.C("id"))
	return sel, t
}

func (i *SaleItem) check() error {
	if i.SaleID == uuid.Nil {
		return validationError("sale_id", "missing required value")
	}
	if i.ProductID == uuid.Nil {
		return validationError("product_id", "missing required value")
	}
	if i.Quantity < 1 {
		return validationError("quantity", "value out of range")
	}
	return nil
}

// Create inserts i. TotalPrice must already be derived.
func (c *SaleItemClient) Create(ctx context.Context, i *SaleItem) error {
	if err := i.check(); err != nil {
		return err
	}
	i.ID = newID()

	q := c.sql().Insert(SaleItemsTable).
		Columns(saleItemColumns...).
		Values(i.ID, i.SaleID, i.ProductID, i.Quantity, i.UnitPrice, i.TotalPrice)
	if _, err := c.exec(ctx, q); err != nil {
		return fmt.Errorf("repo: insert sale item: %w", err)
	}
	return nil
}

// Get returns item id of sale saleID.
func (c *SaleItemClient) Get(ctx context.Context, saleID, id uuid.UUID) (*SaleItem, error) {
	sel, t := c.query()
	sel.Where(entsql.And(entsql.EQ(t.C("id"), id), entsql.EQ(t.C("sale_id"), saleID)))

	var i SaleItem
	if err := c.get(ctx, &i, sel); err != nil {
		return nil, notFound(err, "sale item")
	}
	return &i, nil
}

func (c *SaleItemClient) Update(ctx context.Context, i *SaleItem) error {
	if err := i.check(); err != nil {
		return err
	}
	q := c.sql().Update(SaleItemsTable).
		Set("product_id", i.ProductID).
		Set("quantity", i.Quantity).
		Set("unit_price", i.UnitPrice).
		Set("total_price", i.TotalPrice).
		Where(entsql.And(entsql.EQ("id", i.ID), entsql.EQ("sale_id", i.SaleID)))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: update sale item: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "sale item"}
	}
	return nil
}

func (c *SaleItemClient) Delete(ctx context.Context, saleID, id uuid.UUID) error {
	q := c.sql().Delete(SaleItemsTable).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("sale_id", saleID)))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: delete sale item: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "sale item"}
	}
	return nil
}

// ListBySales loads the items of every sale in ids, in insertion order.
func (c *SaleItemClient) ListBySales(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID][]SaleItem, error) {
	out := make(map[uuid.UUID][]SaleItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sel, t := c.query()
	sel.Where(entsql.In(t.C("sale_id"), uuidArgs(ids)...)).OrderBy(entsql.Asc(t.C("id")))

	var items []SaleItem
	if err := c.selectAll(ctx, &items, sel); err != nil {
		return nil, fmt.Errorf("repo: list sale items: %w", err)
	}
	for _, i := range items {
		out[i.SaleID] = append(out[i.SaleID], i)
	}
	return out, nil
}

// LineTotals returns the persisted total_price of every item of a sale.
func (c *SaleItemClient) LineTotals(ctx context.Context, saleID uuid.UUID) ([]decimal.Decimal, error) {
	t := c.sql().Table(SaleItemsTable)
	sel := c.sql().Select(t.C("total_price")).From(t).Where(entsql.EQ(t.C("sale_id"), saleID))

	totals := []decimal.Decimal{}
	if err := c.selectAll(ctx, &totals, sel); err != nil {
		return nil, fmt.Errorf("repo: sale line totals: %w", err)
	}
	return totals, nil
}

// SaleIDsByProduct lists the sales holding at least one item of productID.
func (c *SaleItemClient) SaleIDsByProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	t := c.sql().Table(SaleItemsTable)
	sel := c.sql().Select(t.C("sale_id")).Distinct().From(t).Where(entsql.EQ(t.C("product_id"), productID))

	ids := []uuid.UUID{}
	if err := c.selectAll(ctx, &ids, sel); err != nil {
		return nil, fmt.Errorf("repo: sales by product: %w", err)
	}
	return ids, nil
}

func uuidArgs(ids []uuid.UUID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
