// Package repotest opens migrated in-memory stores for tests.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/pkg/database"
)

// NewClient returns a store backed by a fresh in-memory SQLite database with
// every table created. It is closed when the test ends.
func NewClient(t testing.TB, opts ...repo.Option) *repo.Client {
	t.Helper()

	client, err := database.NewClientFromConfig(database.MemoryConfig(), opts...)
	if err != nil {
		t.Fatalf("repotest: open store: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := database.Migrate(context.Background(), client); err != nil {
		t.Fatalf("repotest: migrate: %v", err)
	}
	return client
}

// Clock is a settable time source for repo.WithClock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Seed helpers insert rows directly, bypassing the services.

var seq struct {
	sync.Mutex
	n int
}

func next() int {
	seq.Lock()
	defer seq.Unlock()
	seq.n++
	return seq.n
}

func Code(prefix string) string {
	return prefix + "-" + padded(next())
}

func padded(n int) string {
	const digits = "0123456789"
	b := []byte("T0000000")
	for i := len(b) - 1; i > 0 && n > 0; i-- {
		b[i] = digits[n%10]
		n /= 10
	}
	return string(b)
}

func Product(t testing.TB, c *repo.Client, mutate ...func(*repo.Product)) *repo.Product {
	t.Helper()
	p := &repo.Product{
		Code:     Code("PROD"),
		Name:     "Armazón clásico",
		Category: repo.CategoryFrames,
		Supplier: "Lux Óptica",
		Stock:    10,
		Price:    decimal.RequireFromString("100.00"),
		Status:   repo.ProductStatusNormal,
		Type:     repo.ProductTypeOwn,
	}
	for _, m := range mutate {
		m(p)
	}
	if err := c.Product.Create(context.Background(), p); err != nil {
		t.Fatalf("repotest: create product: %v", err)
	}
	return p
}

func Patient(t testing.TB, c *repo.Client, mutate ...func(*repo.Patient)) *repo.Patient {
	t.Helper()
	n := next()
	p := &repo.Patient{
		Name:   "Paciente " + padded(n),
		Email:  "paciente" + padded(n) + "@example.com",
		Phone:  "+56987654321",
		Status: repo.PatientStatusActive,
	}
	for _, m := range mutate {
		m(p)
	}
	if err := c.Patient.Create(context.Background(), p); err != nil {
		t.Fatalf("repotest: create patient: %v", err)
	}
	return p
}

func Sale(t testing.TB, c *repo.Client, patientID uuid.UUID, mutate ...func(*repo.Sale)) *repo.Sale {
	t.Helper()
	s := &repo.Sale{
		OrderNumber: Code("ORD"),
		PatientID:   patientID,
		Status:      repo.SaleStatusNew,
		TotalAmount: decimal.Zero,
	}
	for _, m := range mutate {
		m(s)
	}
	if err := c.Sale.Create(context.Background(), s); err != nil {
		t.Fatalf("repotest: create sale: %v", err)
	}
	return s
}

func Appointment(t testing.TB, c *repo.Client, patientID uuid.UUID, date, hhmm string, mutate ...func(*repo.Appointment)) *repo.Appointment {
	t.Helper()
	a := &repo.Appointment{
		PatientID: patientID,
		Date:      date,
		Time:      hhmm,
		Type:      repo.AppointmentTypeEyeExam,
		Doctor:    "Dr. Principal",
		Status:    repo.AppointmentStatusPending,
	}
	for _, m := range mutate {
		m(a)
	}
	if err := c.Appointment.Create(context.Background(), a); err != nil {
		t.Fatalf("repotest: create appointment: %v", err)
	}
	return a
}
