package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var purchaseColumns = []string{
	"id", "purchase_number", "supplier", "total_amount", "status", "notes", "created_at", "updated_at",
}

type PurchaseFilter struct {
	Search   string // purchase number, supplier or notes
	Status   PurchaseStatus
	Supplier string // substring
}

func (f PurchaseFilter) predicates(t *entsql.SelectTable) []*entsql.Predicate {
	var ps []*entsql.Predicate
	if f.Search != "" {
		ps = append(ps, entsql.Or(
			entsql.ContainsFold(t.C("purchase_number"), f.Search),
			entsql.ContainsFold(t.C("supplier"), f.Search),
			entsql.ContainsFold(t.C("notes"), f.Search),
		))
	}
	if f.Status != "" {
		ps = append(ps, entsql.EQ(t.C("status"), string(f.Status)))
	}
	if f.Supplier != "" {
		ps = append(ps, entsql.ContainsFold(t.C("supplier"), f.Supplier))
	}
	return ps
}

// PurchaseClient is a client for the Purchase schema.
type PurchaseClient struct {
	config
}

func (c *PurchaseClient) table() *entsql.SelectTable {
	return c.sql().Table(PurchasesTable)
}

func (c *PurchaseClient) query() (*entsql.Selector, *entsql.SelectTable) {
	t := c.table()
	return c.sql().Select(columns(t, purchaseColumns...)...).From(t), t
}

func (p *Purchase) check() error {
	if p.PurchaseNumber == "" {
		return validationError("purchase_number", "missing required value")
	}
	if p.Supplier == "" {
		return validationError("supplier", "missing required value")
	}
	if !p.Status.Valid() {
		return validationError("status", "invalid enum value %q", p.Status)
	}
	return nil
}

// Create inserts the purchase row only; items go through PurchaseItemClient.
func (c *PurchaseClient) Create(ctx context.Context, p *Purchase) error {
	if err := p.check(); err != nil {
		return err
	}
	now := c.timestamp()
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = now, now

	q := c.sql().Insert(PurchasesTable).
		Columns(purchaseColumns...).
		Values(p.ID, p.PurchaseNumber, p.Supplier, p.TotalAmount, string(p.Status), p.Notes, p.CreatedAt, p.UpdatedAt)
	if _, err := c.exec(ctx, q); err != nil {
		return fmt.Errorf("repo: insert purchase: %w", err)
	}
	return nil
}

func (c *PurchaseClient) Get(ctx context.Context, id uuid.UUID) (*Purchase, error) {
	sel, t := c.query()
	sel.Where(entsql.EQ(t.C("id"), id))

	var p Purchase
	if err := c.get(ctx, &p, sel); err != nil {
		return nil, notFound(err, "purchase")
	}
	return &p, nil
}

func (c *PurchaseClient) PurchaseNumberExists(ctx context.Context, number string) (bool, error) {
	t := c.table()
	sel := c.sql().Select(entsql.Count("*")).From(t).Where(entsql.EQ(t.C("purchase_number"), number))

	var n int
	if err := c.get(ctx, &n, sel); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update writes supplier, status and notes.
func (c *PurchaseClient) Update(ctx context.Context, p *Purchase) error {
	if err := p.check(); err != nil {
		return err
	}
	p.UpdatedAt = c.timestamp()

	q := c.sql().Update(PurchasesTable).
		Set("supplier", p.Supplier).
		Set("status", string(p.Status)).
		Set("notes", p.Notes).
		Set("updated_at", p.UpdatedAt).
		Where(entsql.EQ("id", p.ID))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: update purchase: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "purchase"}
	}
	return nil
}

// SetTotal stores a recomputed total_amount.
func (c *PurchaseClient) SetTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	q := c.sql().Update(PurchasesTable).
		Set("total_amount", total).
		Set("updated_at", c.timestamp()).
		Where(entsql.EQ("id", id))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: update purchase total: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "purchase"}
	}
	return nil
}

func (c *PurchaseClient) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := c.exec(ctx, c.sql().Delete(PurchasesTable).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("repo: delete purchase: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "purchase"}
	}
	return nil
}

// List returns one page of purchases, newest first.
func (c *PurchaseClient) List(ctx context.Context, f PurchaseFilter, page Page) ([]Purchase, PageInfo, error) {
	t := c.table()
	count := where(c.sql().Select(entsql.Count("*")).From(t), f.predicates(t))

	var total int
	if err := c.get(ctx, &total, count); err != nil {
		return nil, PageInfo{}, fmt.Errorf("repo: count purchases: %w", err)
	}
	info, offset := Paginate(total, page)

	sel, t := c.query()
	where(sel, f.predicates(t)).
		OrderBy(entsql.Desc(t.C("created_at")), entsql.Desc(t.C("id"))).
		Limit(info.PageSize).
		Offset(offset)

	purchases := []Purchase{}
	if err := c.selectAll(ctx, &purchases, sel); err != nil {
		return nil, PageInfo{}, fmt.Errorf("repo: list purchases: %w", err)
	}
	return purchases, info, nil
}

func (c *PurchaseClient) All(ctx context.Context, f PurchaseFilter) ([]Purchase, error) {
	sel, t := c.query()
	where(sel, f.predicates(t)).OrderBy(entsql.Desc(t.C("created_at")), entsql.Desc(t.C("id")))

	purchases := []Purchase{}
	if err := c.selectAll(ctx, &purchases, sel); err != nil {
		return nil, fmt.Errorf("repo: list purchases: %w", err)
	}
	return purchases, nil
}

var purchaseItemColumns = []string{"id", "purchase_id", "product_id", "quantity", "unit_cost", "total_cost"}

// PurchaseItemClient is a client for the PurchaseItem schema.
type PurchaseItemClient struct {
	config
}

func (c *PurchaseItemClient) query() (*entsql.Selector, *entsql.SelectTable) {
	t := c.sql().Table(PurchaseItemsTable)
	p := c.sql().Table(ProductsTable).As("p")
	sel := c.sql().Select(append(columns(t, purchaseItemColumns...), entsql.As(p.C("name"), "product_name"))...).
		From(t).
		Join(p).On(t.C("product_id"), p.C("id"))
	return sel, t
}

func (i *PurchaseItem) check() error {
	if i.PurchaseID == uuid.Nil {
		return validationError("purchase_id", "missing required value")
	}
	if i.ProductID == uuid.Nil {
		return validationError("product_id", "missing required value")
	}
	if i.Quantity < 1 {
		return validationError("quantity", "value out of range")
	}
	return nil
}

// Create inserts i. TotalCost must already be derived.
func (c *PurchaseItemClient) Create(ctx context.Context, i *PurchaseItem) error {
	if err := i.check(); err != nil {
		return err
	}
	i.ID = newID()

	q := c.sql().Insert(PurchaseItemsTable).
		Columns(purchaseItemColumns...).
		Values(i.ID, i.PurchaseID, i.ProductID, i.Quantity, i.UnitCost, i.TotalCost)
	if _, err := c.exec(ctx, q); err != nil {
		return fmt.Errorf("repo: insert purchase item: %w", err)
	}
	return nil
}

func (c *PurchaseItemClient) Get(ctx context.Context, purchaseID, id uuid.UUID) (*PurchaseItem, error) {
	sel, t := c.query()
	sel.Where(entsql.And(entsql.EQ(t.C("id"), id), entsql.EQ(t.C("purchase_id"), purchaseID)))

	var i PurchaseItem
	if err := c.get(ctx, &i, sel); err != nil {
		return nil, notFound(err, "purchase item")
	}
	return &i, nil
}

func (c *PurchaseItemClient) Update(ctx context.Context, i *PurchaseItem) error {
	if err := i.check(); err != nil {
		return err
	}
	q := c.sql().Update(PurchaseItemsTable).
		Set("product_id", i.ProductID).
		Set("quantity", i.Quantity).
		Set("unit_cost", i.UnitCost).
		Set("total_cost", i.TotalCost).
		Where(entsql.And(entsql.EQ("id", i.ID), entsql.EQ("purchase_id", i.PurchaseID)))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: update purchase item: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "purchase item"}
	}
	return nil
}

func (c *PurchaseItemClient) Delete(ctx context.Context, purchaseID, id uuid.UUID) error {
	q := c.sql().Delete(PurchaseItemsTable).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("purchase_id", purchaseID)))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: delete purchase item: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "purchase item"}
	}
	return nil
}

func (c *PurchaseItemClient) ListByPurchases(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID][]PurchaseItem, error) {
	out := make(map[uuid.UUID][]PurchaseItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sel, t := c.query()
	sel.Where(entsql.In(t.C("purchase_id"), uuidArgs(ids)...)).OrderBy(entsql.Asc(t.C("id")))

	var items []PurchaseItem
	if err := c.selectAll(ctx, &items, sel); err != nil {
		return nil, fmt.Errorf("repo: list purchase items: %w", err)
	}
	for _, i := range items {
		out[i.PurchaseID] = append(out[i.PurchaseID], i)
	}
	return out, nil
}

// LineTotals returns the persisted total_cost of every item of a purchase.
func (c *PurchaseItemClient) LineTotals(ctx context.Context, purchaseID uuid.UUID) ([]decimal.Decimal, error) {
	t := c.sql().Table(PurchaseItemsTable)
	sel := c.sql().Select(t.C("total_cost")).From(t).Where(entsql.EQ(t.C("purchase_id"), purchaseID))

	totals := []decimal.Decimal{}
	if err := c.selectAll(ctx, &totals, sel); err != nil {
		return nil, fmt.Errorf("repo: purchase line totals: %w", err)
	}
	return totals, nil
}

func (c *PurchaseItemClient) PurchaseIDsByProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	t := c.sql().Table(PurchaseItemsTable)
	sel := c.sql().Select(t.C("purchase_id")).Distinct().From(t).Where(entsql.EQ(t.C("product_id"), productID))

	ids := []uuid.UUID{}
	if err := c.selectAll(ctx, &ids, sel); err != nil {
		return nil, fmt.Errorf("repo: purchases by product: %w", err)
	}
	return ids, nil
}
