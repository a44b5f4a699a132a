// Package repo is the entity store. Queries are built with ent's dialect/sql
// builder and executed through sqlx, so one code path serves SQLite and
// Postgres. The Client and Tx types mirror the ones ent generates.
package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Table names.
const (
	ProductsTable        = "products"
	PatientsTable        = "patients"
	PurchaseHistoryTable = "patient_purchase_histories"
	AppointmentsTable    = "appointments"
	SalesTable           = "sales"
	SaleItemsTable       = "sale_items"
	PurchasesTable       = "purchases"
	PurchaseItemsTable   = "purchase_items"
)

// conn is satisfied by both *sqlx.DB and *sqlx.Tx.
type conn interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// config is shared by every entity client of a Client or a Tx.
type config struct {
	conn    conn
	dialect string
	now     func() time.Time
}

func (c config) sql() *entsql.DialectBuilder {
	return entsql.Dialect(c.dialect)
}

// timestamp is the store clock: UTC, microsecond precision on every driver.
func (c config) timestamp() time.Time {
	return c.now().UTC().Truncate(time.Microsecond)
}

func (c config) get(ctx context.Context, dest any, q querier) error {
	query, args := q.Query()
	return classify(c.conn.GetContext(ctx, dest, query, args...))
}

func (c config) selectAll(ctx context.Context, dest any, q querier) error {
	query, args := q.Query()
	return classify(c.conn.SelectContext(ctx, dest, query, args...))
}

func (c config) exec(ctx context.Context, q querier) (int64, error) {
	query, args := q.Query()
	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

type querier interface {
	Query() (string, []any)
}

// Option configures a Client.
type Option func(*config)

// WithClock replaces the clock used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// Client is the entry point of the store.
type Client struct {
	config

	Product         *ProductClient
	Patient         *PatientClient
	PurchaseHistory *PurchaseHistoryClient
	Appointment     *AppointmentClient
	Sale            *SaleClient
	SaleItem        *SaleItemClient
	Purchase        *PurchaseClient
	PurchaseItem    *PurchaseItemClient
	Report          *ReportClient

	db  *sqlx.DB
	drv *entsql.Driver
}

// NewClient wraps an open database. dialectName is one of ent's dialect names.
func NewClient(db *sqlx.DB, dialectName string, opts ...Option) *Client {
	cfg := config{conn: db, dialect: dialectName, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Client{
		config: cfg,
		db:     db,
		drv:    entsql.OpenDB(dialectName, db.DB),
	}
	c.init()
	return c
}

func (c *Client) init() {
	c.Product = &ProductClient{config: c.config}
	c.Patient = &PatientClient{config: c.config}
	c.PurchaseHistory = &PurchaseHistoryClient{config: c.config}
	c.Appointment = &AppointmentClient{config: c.config}
	c.Sale = &SaleClient{config: c.config}
	c.SaleItem = &SaleItemClient{config: c.config}
	c.Purchase = &PurchaseClient{config: c.config}
	c.PurchaseItem = &PurchaseItemClient{config: c.config}
	c.Report = &ReportClient{config: c.config}
}

// Driver exposes the ent driver, used by the schema migrator.
func (c *Client) Driver() dialect.Driver {
	return c.drv
}

// Dialect returns the ent dialect name of the underlying database.
func (c *Client) Dialect() string {
	return c.dialect
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Tx is a transactional view of the store.
type Tx struct {
	config

	Product         *ProductClient
	Patient         *PatientClient
	PurchaseHistory *PurchaseHistoryClient
	Appointment     *AppointmentClient
	Sale            *SaleClient
	SaleItem        *SaleItemClient
	Purchase        *PurchaseClient
	PurchaseItem    *PurchaseItemClient

	tx *sqlx.Tx
}

// Tx opens a transaction. On SQLite the pool holds a single connection, so
// nothing may touch the Client until the Tx is finished.
func (c *Client) Tx(ctx context.Context) (*Tx, error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("repo: starting a transaction: %w", err)
	}
	cfg := c.config
	cfg.conn = tx
	return &Tx{
		config:          cfg,
		Product:         &ProductClient{config: cfg},
		Patient:         &PatientClient{config: cfg},
		PurchaseHistory: &PurchaseHistoryClient{config: cfg},
		Appointment:     &AppointmentClient{config: cfg},
		Sale:            &SaleClient{config: cfg},
		SaleItem:        &SaleItemClient{config: cfg},
		Purchase:        &PurchaseClient{config: cfg},
		PurchaseItem:    &PurchaseItemClient{config: cfg},
		tx:              tx,
	}, nil
}

func (tx *Tx) Commit() error {
	return tx.tx.Commit()
}

func (tx *Tx) Rollback() error {
	return tx.tx.Rollback()
}

// WithTx runs fn inside a transaction, rolling back on error or panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := c.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repo: committing transaction: %w", err)
	}
	return nil
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id
}

// columns qualifies names with t.
func columns(t *entsql.SelectTable, names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = t.C(n)
	}
	return out
}
