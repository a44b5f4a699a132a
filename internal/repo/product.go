package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var productColumns = []string{
	"id", "code", "name", "category", "supplier", "stock", "price", "status", "type", "created_at", "updated_at",
}

// ProductSearchFields are the columns Search matches by default.
var ProductSearchFields = []string{"name", "category", "supplier", "code"}

// ProductFilter narrows product lists. Zero fields do not filter.
type ProductFilter struct {
	Search       string
	SearchFields []string // defaults to ProductSearchFields
	Code         string // exact
	Category     ProductCategory
	Supplier     string // substring
	Type         ProductType
	Status       ProductStatus
}

func (f ProductFilter) predicates(t *entsql.SelectTable) []*entsql.Predicate {
	var ps []*entsql.Predicate
	if f.Search != "" {
		fields := f.SearchFields
		if len(fields) == 0 {
			fields = ProductSearchFields
		}
		or := make([]*entsql.Predicate, len(fields))
		for i, name := range fields {
			or[i] = entsql.ContainsFold(t.C(name), f.Search)
		}
		ps = append(ps, entsql.Or(or...))
	}
	if f.Code != "" {
		ps = append(ps, entsql.EQ(t.C("code"), f.Code))
	}
	if f.Category != "" {
		ps = append(ps, entsql.EQ(t.C("category"), string(f.Category)))
	}
	if f.Supplier != "" {
		ps = append(ps, entsql.ContainsFold(t.C("supplier"), f.Supplier))
	}
	if f.Type != "" {
		ps = append(ps, entsql.EQ(t.C("type"), string(f.Type)))
	}
	if f.Status != "" {
		ps = append(ps, entsql.EQ(t.C("status"), string(f.Status)))
	}
	return ps
}

// ProductClient is a client for the Product schema.
type ProductClient struct {
	config
}

func (c *ProductClient) table() *entsql.SelectTable {
	return c.sql().Table(ProductsTable)
}

func (c *ProductClient) query() (*entsql.Selector, *entsql.SelectTable) {
	t := c.table()
	return c.sql().Select(columns(t, productColumns...)...).From(t), t
}

func (p *Product) check() error {
	if p.Code == "" {
		return validationError("code", "missing required value")
	}
	if p.Name == "" {
		return validationError("name", "missing required value")
	}
	if !p.Category.Valid() {
		return validationError("category", "invalid enum value %q", p.Category)
	}
	if !p.Status.Valid() {
		return validationError("status", "invalid enum value %q", p.Status)
	}
	if !p.Type.Valid() {
		return validationError("type", "invalid enum value %q", p.Type)
	}
	if p.Stock < 0 {
		return validationError("stock", "value out of range")
	}
	return nil
}

// Create inserts p, assigning its id and timestamps.
func (c *ProductClient) Create(ctx context.Context, p *Product) error {
	if err := p.check(); err != nil {
		return err
	}
	now := c.timestamp()
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = now, now

	q := c.sql().Insert(ProductsTable).
		Columns(productColumns...).
		Values(p.ID, p.Code, p.Name, string(p.Category), p.Supplier, p.Stock, p.Price,
			string(p.Status), string(p.Type), p.CreatedAt, p.UpdatedAt)
	if _, err := c.exec(ctx, q); err != nil {
		return fmt.Errorf("repo: insert product: %w", err)
	}
	return nil
}

func (c *ProductClient) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	sel, t := c.query()
	sel.Where(entsql.EQ(t.C("id"), id))

	var p Product
	if err := c.get(ctx, &p, sel); err != nil {
		return nil, notFound(err, "product")
	}
	return &p, nil
}

// CodeExists probes the unique code column.
func (c *ProductClient) CodeExists(ctx context.Context, code string) (bool, error) {
	t := c.table()
	sel := c.sql().Select(entsql.Count("*")).From(t).Where(entsql.EQ(t.C("code"), code))

	var n int
	if err := c.get(ctx, &n, sel); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update writes every mutable field of p. The code never changes.
func (c *ProductClient) Update(ctx context.Context, p *Product) error {
	if err := p.check(); err != nil {
		return err
	}
	p.UpdatedAt = c.timestamp()

	q := c.sql().Update(ProductsTable).
		Set("name", p.Name).
		Set("category", string(p.Category)).
		Set("supplier", p.Supplier).
		Set("stock", p.Stock).
		Set("price", p.Price).
		Set("status", string(p.Status)).
		Set("type", string(p.Type)).
		Set("updated_at", p.UpdatedAt).
		Where(entsql.EQ("id", p.ID))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: update product: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "product"}
	}
	return nil
}

// Delete removes the product; items and history rows referencing it cascade.
func (c *ProductClient) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := c.exec(ctx, c.sql().Delete(ProductsTable).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("repo: delete product: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "product"}
	}
	return nil
}

// List returns one page of products, newest first.
func (c *ProductClient) List(ctx context.Context, f ProductFilter, page Page) ([]Product, PageInfo, error) {
	t := c.table()
	count := where(c.sql().Select(entsql.Count("*")).From(t), f.predicates(t))

	var total int
	if err := c.get(ctx, &total, count); err != nil {
		return nil, PageInfo{}, fmt.Errorf("repo: count products: %w", err)
	}
	info, offset := Paginate(total, page)

	sel, t := c.query()
	where(sel, f.predicates(t)).
		OrderBy(entsql.Desc(t.C("created_at")), entsql.Desc(t.C("id"))).
		Limit(info.PageSize).
		Offset(offset)

	products := []Product{}
	if err := c.selectAll(ctx, &products, sel); err != nil {
		return nil, PageInfo{}, fmt.Errorf("repo: list products: %w", err)
	}
	return products, info, nil
}

// All returns every matching product, newest first.
func (c *ProductClient) All(ctx context.Context, f ProductFilter) ([]Product, error) {
	sel, t := c.query()
	where(sel, f.predicates(t)).OrderBy(entsql.Desc(t.C("created_at")), entsql.Desc(t.C("id")))

	products := []Product{}
	if err := c.selectAll(ctx, &products, sel); err != nil {
		return nil, fmt.Errorf("repo: list products: %w", err)
	}
	return products, nil
}

// Suppliers lists distinct supplier names, optionally only for one product type.
func (c *ProductClient) Suppliers(ctx context.Context, typ ProductType) ([]string, error) {
	t := c.table()
	sel := c.sql().Select(t.C("supplier")).Distinct().From(t).OrderBy(t.C("supplier"))
	if typ != "" {
		sel.Where(entsql.EQ(t.C("type"), string(typ)))
	}

	suppliers := []string{}
	if err := c.selectAll(ctx, &suppliers, sel); err != nil {
		return nil, fmt.Errorf("repo: list suppliers: %w", err)
	}
	return suppliers, nil
}

func where(sel *entsql.Selector, ps []*entsql.Predicate) *entsql.Selector {
	if len(ps) > 0 {
		sel.Where(entsql.And(ps...))
	}
	return sel
}
