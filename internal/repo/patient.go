package repo

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var patientColumns = []string{
	"id", "name", "email", "phone", "status", "address", "notes", "created_at", "updated_at",
}

type PatientFilter struct {
	Search string // name, email or phone
	Status PatientStatus
}

func (f PatientFilter) predicates(t *entsql.SelectTable) []*entsql.Predicate {
	var ps []*entsql.Predicate
	if f.Search != "" {
		ps = append(ps, entsql.Or(
			entsql.ContainsFold(t.C("name"), f.Search),
			entsql.ContainsFold(t.C("email"), f.Search),
			entsql.ContainsFold(t.C("phone"), f.Search),
		))
	}
	if f.Status != "" {
		ps = append(ps, entsql.EQ(t.C("status"), string(f.Status)))
	}
	return ps
}

// PatientClient is a client for the Patient schema.
type PatientClient struct {
	config
}

func (c *PatientClient) table() *entsql.SelectTable {
	return c.sql().Table(PatientsTable)
}

func (c *PatientClient) query() (*entsql.Selector, *entsql.SelectTable) {
	t := c.table()
	return c.sql().Select(columns(t, patientColumns...)...).From(t), t
}

func (p *Patient) check() error {
	if p.Name == "" {
		return validationError("name", "missing required value")
	}
	if p.Email == "" {
		return validationError("email", "missing required value")
	}
	if !p.Status.Valid() {
		return validationError("status", "invalid enum value %q", p.Status)
	}
	return nil
}

func (c *PatientClient) Create(ctx context.Context, p *Patient) error {
	if err := p.check(); err != nil {
		return err
	}
	now := c.timestamp()
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = now, now

	q := c.sql().Insert(PatientsTable).
		Columns(patientColumns...).
		Values(p.ID, p.Name, p.Email, p.Phone, string(p.Status), p.Address, p.Notes, p.CreatedAt, p.UpdatedAt)
	if _, err := c.exec(ctx, q); err != nil {
		return fmt.Errorf("repo: insert patient: %w", err)
	}
	return nil
}

func (c *PatientClient) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	sel, t := c.query()
	sel.Where(entsql.EQ(t.C("id"), id))

	var p Patient
	if err := c.get(ctx, &p, sel); err != nil {
		return nil, notFound(err, "patient")
	}
	return &p, nil
}

func (c *PatientClient) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	t := c.table()
	sel := c.sql().Select(entsql.Count("*")).From(t).Where(entsql.EQ(t.C("id"), id))

	var n int
	if err := c.get(ctx, &n, sel); err != nil {
		return false, err
	}
	return n > 0, nil
}

// EmailTaken reports whether another patient than except already uses email.
// Pass uuid.Nil to check against everyone.
func (c *PatientClient) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	t := c.table()
	sel := c.sql().Select(entsql.Count("*")).From(t).Where(entsql.EQ(t.C("email"), email))
	if except != uuid.Nil {
		sel.Where(entsql.NEQ(t.C("id"), except))
	}

	var n int
	if err := c.get(ctx, &n, sel); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *PatientClient) Update(ctx context.Context, p *Patient) error {
	if err := p.check(); err != nil {
		return err
	}
	p.UpdatedAt = c.timestamp()

	q := c.sql().Update(PatientsTable).
		Set("name", p.Name).
		Set("email", p.Email).
		Set("phone", p.Phone).
		Set("status", string(p.Status)).
		Set("address", p.Address).
		Set("notes", p.Notes).
		Set("updated_at", p.UpdatedAt).
		Where(entsql.EQ("id", p.ID))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: update patient: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "patient"}
	}
	return nil
}

// Delete removes the patient with their appointments, sales and history.
func (c *PatientClient) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := c.exec(ctx, c.sql().Delete(PatientsTable).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("repo: delete patient: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "patient"}
	}
	return nil
}

// List returns one page of patients ordered by name.
func (c *PatientClient) List(ctx context.Context, f PatientFilter, page Page) ([]Patient, PageInfo, error) {
	t := c.table()
	count := where(c.sql().Select(entsql.Count("*")).From(t), f.predicates(t))

	var total int
	if err := c.get(ctx, &total, count); err != nil {
		return nil, PageInfo{}, fmt.Errorf("repo: count patients: %w", err)
	}
	info, offset := Paginate(total, page)

	sel, t := c.query()
	where(sel, f.predicates(t)).
		OrderBy(entsql.Asc(t.C("name")), entsql.Asc(t.C("id"))).
		Limit(info.PageSize).
		Offset(offset)

	patients := []Patient{}
	if err := c.selectAll(ctx, &patients, sel); err != nil {
		return nil, PageInfo{}, fmt.Errorf("repo: list patients: %w", err)
	}
	return patients, info, nil
}

func (c *PatientClient) All(ctx context.Context, f PatientFilter) ([]Patient, error) {
	sel, t := c.query()
	where(sel, f.predicates(t)).OrderBy(entsql.Asc(t.C("name")), entsql.Asc(t.C("id")))

	patients := []Patient{}
	if err := c.selectAll(ctx, &patients, sel); err != nil {
		return nil, fmt.Errorf("repo: list patients: %w", err)
	}
	return patients, nil
}

var purchaseHistoryColumns = []string{"id", "patient_id", "product_id", "quantity", "price", "date", "notes"}

// PurchaseHistoryClient is a client for the PatientPurchaseHistory schema.
type PurchaseHistoryClient struct {
	config
}

func (c *PurchaseHistoryClient) query() (*entsql.Selector, *entsql.SelectTable) {
	t := c.sql().Table(PurchaseHistoryTable)
	p := c.sql().Table(ProductsTable).As("p")
	sel := c.sql().Select(append(columns(t, purchaseHistoryColumns...), entsql.As(p.C("name"), "product_name"))...).
		From(t).
		Join(p).On(t.C("product_id"), p.C("id"))
	return sel, t
}

func (h *PurchaseHistory) check() error {
	if h.PatientID == uuid.Nil {
		return validationError("patient_id", "missing required value")
	}
	if h.ProductID == uuid.Nil {
		return validationError("product_id", "missing required value")
	}
	if h.Quantity < 1 {
		return validationError("quantity", "value out of range")
	}
	return nil
}

// Create inserts h. A zero Date means now.
func (c *PurchaseHistoryClient) Create(ctx context.Context, h *PurchaseHistory) error {
	if err := h.check(); err != nil {
		return err
	}
	h.ID = newID()
	if h.Date.IsZero() {
		h.Date = c.timestamp()
	} else {
		h.Date = h.Date.UTC().Truncate(time.Microsecond)
	}

	q := c.sql().Insert(PurchaseHistoryTable).
		Columns(purchaseHistoryColumns...).
		Values(h.ID, h.PatientID, h.ProductID, h.Quantity, h.Price, h.Date, h.Notes)
	if _, err := c.exec(ctx, q); err != nil {
		return fmt.Errorf("repo: insert purchase history: %w", err)
	}
	return nil
}

func (c *PurchaseHistoryClient) Get(ctx context.Context, id uuid.UUID) (*PurchaseHistory, error) {
	sel, t := c.query()
	sel.Where(entsql.EQ(t.C("id"), id))

	var h PurchaseHistory
	if err := c.get(ctx, &h, sel); err != nil {
		return nil, notFound(err, "purchase history")
	}
	return &h, nil
}

// ListByPatient returns the newest entries first. limit < 1 returns all.
func (c *PurchaseHistoryClient) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]PurchaseHistory, error) {
	sel, t := c.query()
	sel.Where(entsql.EQ(t.C("patient_id"), patientID)).
		OrderBy(entsql.Desc(t.C("date")), entsql.Desc(t.C("id")))
	if limit > 0 {
		sel.Limit(limit)
	}

	entries := []PurchaseHistory{}
	if err := c.selectAll(ctx, &entries, sel); err != nil {
		return nil, fmt.Errorf("repo: list purchase history: %w", err)
	}
	return entries, nil
}

// CountByPatients returns the number of entries of each patient in ids.
// Patients without entries are absent from the map.
func (c *PurchaseHistoryClient) CountByPatients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	t := c.sql().Table(PurchaseHistoryTable)
	sel := c.sql().Select(t.C("patient_id"), entsql.As(entsql.Count("*"), "n")).
		From(t).
		Where(entsql.In(t.C("patient_id"), uuidArgs(ids)...)).
		GroupBy(t.C("patient_id"))

	var rows []struct {
		PatientID uuid.UUID `db:"patient_id"`
		N         int       `db:"n"`
	}
	if err := c.selectAll(ctx, &rows, sel); err != nil {
		return nil, fmt.Errorf("repo: count purchase history: %w", err)
	}
	for _, r := range rows {
		counts[r.PatientID] = r.N
	}
	return counts, nil
}

// Delete removes entry id of patientID.
func (c *PurchaseHistoryClient) Delete(ctx context.Context, patientID, id uuid.UUID) error {
	q := c.sql().Delete(PurchaseHistoryTable).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("patient_id", patientID)))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: delete purchase history: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "purchase history"}
	}
	return nil
}
