package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var appointmentColumns = []string{
	"id", "patient_id", "date", "time", "type", "doctor", "status", "notes", "created_at", "updated_at",
}

type AppointmentFilter struct {
	Search    string // patient name, doctor or notes
	Status    AppointmentStatus
	Type      AppointmentType
	PatientID uuid.UUID
	Date      string // exact YYYY-MM-DD
	DateFrom  string // inclusive
	DateTo    string // inclusive
}

func (f AppointmentFilter) predicates(t, p *entsql.SelectTable) []*entsql.Predicate {
	var ps []*entsql.Predicate
	if f.Search != "" {
		ps = append(ps, entsql.Or(
			entsql.ContainsFold(p.C("name"), f.Search),
			entsql.ContainsFold(t.C("doctor"), f.Search),
			entsql.ContainsFold(t.C("notes"), f.Search),
		))
	}
	if f.Status != "" {
		ps = append(ps, entsql.EQ(t.C("status"), string(f.Status)))
	}
	if f.Type != "" {
		ps = append(ps, entsql.EQ(t.C("type"), string(f.Type)))
	}
	if f.PatientID != uuid.Nil {
		ps = append(ps, entsql.EQ(t.C("patient_id"), f.PatientID))
	}
	// dates are zero padded, so string order is date order
	if f.Date != "" {
		ps = append(ps, entsql.EQ(t.C("date"), f.Date))
	}
	if f.DateFrom != "" {
		ps = append(ps, entsql.GTE(t.C("date"), f.DateFrom))
	}
	if f.DateTo != "" {
		ps = append(ps, entsql.LTE(t.C("date"), f.DateTo))
	}
	return ps
}

// AppointmentClient is a client for the Appointment schema.
type AppointmentClient struct {
	config
}

func (c *AppointmentClient) tables() (*entsql.SelectTable, *entsql.SelectTable) {
	return c.sql().Table(AppointmentsTable), c.sql().Table(PatientsTable).As("p")
}

func (c *AppointmentClient) query() (*entsql.Selector, *entsql.SelectTable, *entsql.SelectTable) {
	t, p := c.tables()
	sel := c.sql().Select(append(columns(t, appointmentColumns...), entsql.As(p.C("name"), "patient_name"))...).
		From(t).
		Join(p).On(t.C("patient_id"), p.C("id"))
	return sel, t, p
}

func (a *Appointment) check() error {
	if a.PatientID == uuid.Nil {
		return validationError("patient_id", "missing required value")
	}
	if a.Date == "" {
		return validationError("date", "missing required value")
	}
	if a.Time == "" {
		return validationError("time", "missing required value")
	}
	if !a.Type.Valid() {
		return validationError("type", "invalid enum value %q", a.Type)
	}
	if !a.Status.Valid() {
		return validationError("status", "invalid enum value %q", a.Status)
	}
	return nil
}

func (c *AppointmentClient) Create(ctx context.Context, a *Appointment) error {
	if err := a.check(); err != nil {
		return err
	}
	now := c.timestamp()
	a.ID = newID()
	a.CreatedAt, a.UpdatedAt = now, now

	q := c.sql().Insert(AppointmentsTable).
		Columns(appointmentColumns...).
		Values(a.ID, a.PatientID, a.Date, a.Time, string(a.Type), a.Doctor, string(a.Status), a.Notes, a.CreatedAt, a.UpdatedAt)
	if _, err := c.exec(ctx, q); err != nil {
		return fmt.Errorf("repo: insert appointment: %w", err)
	}
	return nil
}

func (c *AppointmentClient) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	sel, t, _ := c.query()
	sel.Where(entsql.EQ(t.C("id"), id))

	var a Appointment
	if err := c.get(ctx, &a, sel); err != nil {
		return nil, notFound(err, "appointment")
	}
	return &a, nil
}

func (c *AppointmentClient) Update(ctx context.Context, a *Appointment) error {
	if err := a.check(); err != nil {
		return err
	}
	a.UpdatedAt = c.timestamp()

	q := c.sql().Update(AppointmentsTable).
		Set("patient_id", a.PatientID).
		Set("date", a.Date).
		Set("time", a.Time).
		Set("type", string(a.Type)).
		Set("doctor", a.Doctor).
		Set("status", string(a.Status)).
		Set("notes", a.Notes).
		Set("updated_at", a.UpdatedAt).
		Where(entsql.EQ("id", a.ID))
	n, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("repo: update appointment: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "appointment"}
	}
	return nil
}

func (c *AppointmentClient) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := c.exec(ctx, c.sql().Delete(AppointmentsTable).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("repo: delete appointment: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: "appointment"}
	}
	return nil
}

// List returns one page of appointments in calendar order.
func (c *AppointmentClient) List(ctx context.Context, f AppointmentFilter, page Page) ([]Appointment, PageInfo, error) {
	t, p := c.tables()
	count := c.sql().Select(entsql.Count("*")).From(t).Join(p).On(t.C("patient_id"), p.C("id"))
	where(count, f.predicates(t, p))

	var total int
	if err := c.get(ctx, &total, count); err != nil {
		return nil, PageInfo{}, fmt.Errorf("repo: count appointments: %w", err)
	}
	info, offset := Paginate(total, page)

	sel, t, p := c.query()
	where(sel, f.predicates(t, p)).
		OrderBy(entsql.Asc(t.C("date")), entsql.Asc(t.C("time")), entsql.Asc(t.C("id"))).
		Limit(info.PageSize).
		Offset(offset)

	appointments := []Appointment{}
	if err := c.selectAll(ctx, &appointments, sel); err != nil {
		return nil, PageInfo{}, fmt.Errorf("repo: list appointments: %w", err)
	}
	return appointments, info, nil
}
