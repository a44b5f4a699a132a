// Package dashboard aggregates the store into the home screen payload.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/derive"
	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/validate"
)

const (
	recentSalesLimit        = 5
	upcomingAppointmentsMax = 5
	lowStockLimit           = 10
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "optica_dashboard_cache_total",
	Help: "Dashboard payload lookups by cache result.",
}, []string{"result"})

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Config struct {
	// Location is the business timezone that defines "today". Defaults to UTC.
	Location *time.Location
	// CacheTTL is how long a payload is served from Cache. Zero disables caching.
	CacheTTL time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

type RecentSale struct {
	ID       uuid.UUID   `json:"id"`
	Customer string      `json:"customer"`
	Amount   json.Number `json:"amount"`
	Date     string      `json:"date"`
	Status   string      `json:"status"`
}

type RecentAppointment struct {
	ID      uuid.UUID `json:"id"`
	Patient string    `json:"patient"`
	Time    string    `json:"time"`
	Date    string    `json:"date"`
	Type    string    `json:"type"`
	Status  string    `json:"status"`
}

type CategoryInventory struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	TotalStock int    `json:"total_stock"`
}

type CategorySales struct {
	Category string      `json:"category"`
	Quantity int         `json:"quantity"`
	Amount   json.Number `json:"amount"`
}

type LowStockProduct struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Code     string    `json:"code"`
	Stock    int       `json:"stock"`
	Status   string    `json:"status"`
	Category string    `json:"category"`
}

type Stats struct {
	TotalProducts       int `json:"totalProducts"`
	TotalPatients       int `json:"totalPatients"`
	PendingAppointments int `json:"pendingAppointments"`
	ActiveSales         int `json:"activeSales"`
}

type Dashboard struct {
	DailySales          json.Number         `json:"dailySales"`
	MonthlySales        json.Number         `json:"monthlySales"`
	Appointments        int                 `json:"appointments"`
	Inventory           int                 `json:"inventory"`
	Consignments        int                 `json:"consignments"`
	RecentSales         []RecentSale        `json:"recentSales"`
	RecentAppointments  []RecentAppointment `json:"recentAppointments"`
	InventoryByCategory []CategoryInventory `json:"inventoryByCategory"`
	SalesByCategory     []CategorySales     `json:"salesByCategory"`
	LowStockProducts    []LowStockProduct   `json:"lowStockProducts"`
	Stats               Stats               `json:"stats"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Get(ctx context.Context) (*Dashboard, error)
	// Invalidate drops the cached payload. Call it after any write.
	Invalidate(ctx context.Context) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type dashboardService struct {
	db    *repo.Client
	cache Cache
	cfg   Config
}

func New(db *repo.Client, cache Cache, cfg Config) Service {
	if cache == nil {
		cache = NopCache{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &dashboardService{db: db, cache: cache, cfg: cfg}
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func (s *dashboardService) Get(ctx context.Context) (*Dashboard, error) {
	if s.cfg.CacheTTL <= 0 {
		return s.compute(ctx)
	}

	gen, err := s.generation(ctx)
	if err != nil {
		s.cfg.Logger.WarnContext(ctx, "dashboard cache generation read failed", "error", err)
		cacheLookups.WithLabelValues("miss").Inc()
		return s.compute(ctx)
	}
	key := PayloadKey(gen)

	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.cfg.Logger.WarnContext(ctx, "dashboard cache read failed", "error", err)
	}
	if ok {
		var d Dashboard
		if err := json.Unmarshal(b, &d); err == nil {
			cacheLookups.WithLabelValues("hit").Inc()
			return &d, nil
		}
	}
	cacheLookups.WithLabelValues("miss").Inc()

	d, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	b, err = json.Marshal(d)
	if err == nil {
		err = s.cache.Set(ctx, key, b, s.cfg.CacheTTL)
	}
	if err != nil {
		s.cfg.Logger.WarnContext(ctx, "dashboard cache write failed", "error", err)
	}
	return d, nil
}

// generation reads the invalidation counter; a missing counter is zero.
func (s *dashboardService) generation(ctx context.Context) (int64, error) {
	b, ok, err := s.cache.Get(ctx, GenerationKey)
	if err != nil || !ok {
		return 0, err
	}
	gen, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse dashboard generation %q: %w", b, err)
	}
	return gen, nil
}

// Invalidate moves readers to a fresh generation. The previous payload is
// left to expire with its TTL.
func (s *dashboardService) Invalidate(ctx context.Context) error {
	if _, err := s.cache.Incr(ctx, GenerationKey); err != nil {
		return fmt.Errorf("invalidate dashboard: %w", err)
	}
	return nil
}

func (s *dashboardService) compute(ctx context.Context) (*Dashboard, error) {
	now := s.cfg.Now().In(s.cfg.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.cfg.Location)
	nextMonth := monthStart.AddDate(0, 1, 0)
	todayStr := today.Format(validate.DateLayout)

	report := s.db.Report
	d := &Dashboard{}

	daily, err := report.SaleTotals(ctx, today, tomorrow)
	if err != nil {
		return nil, err
	}
	d.DailySales = money(derive.OrderTotal(daily))

	monthly, err := report.SaleTotals(ctx, monthStart, nextMonth)
	if err != nil {
		return nil, err
	}
	d.MonthlySales = money(derive.OrderTotal(monthly))

	if d.Appointments, err = report.CountAppointmentsOn(ctx, todayStr); err != nil {
		return nil, err
	}
	if d.Inventory, err = report.TotalStock(ctx); err != nil {
		return nil, err
	}
	if d.Consignments, err = report.CountProducts(ctx, repo.ProductTypeConsignment); err != nil {
		return nil, err
	}

	sales, err := report.RecentSales(ctx, recentSalesLimit)
	if err != nil {
		return nil, err
	}
	d.RecentSales = make([]RecentSale, len(sales))
	for i, sale := range sales {
		d.RecentSales[i] = RecentSale{
			ID:       sale.ID,
			Customer: sale.PatientName,
			Amount:   money(sale.TotalAmount),
			Date:     sale.CreatedAt.In(s.cfg.Location).Format(validate.DateLayout),
			Status:   sale.Status.Label(),
		}
	}

	appointments, err := report.UpcomingAppointments(ctx, todayStr, upcomingAppointmentsMax)
	if err != nil {
		return nil, err
	}
	d.RecentAppointments = make([]RecentAppointment, len(appointments))
	for i, a := range appointments {
		d.RecentAppointments[i] = RecentAppointment{
			ID:      a.ID,
			Patient: a.PatientName,
			Time:    a.Time,
			Date:    a.Date,
			Type:    a.Type.Label(),
			Status:  a.Status.Label(),
		}
	}

	inventory, err := report.InventoryByCategory(ctx)
	if err != nil {
		return nil, err
	}
	d.InventoryByCategory = make([]CategoryInventory, len(inventory))
	for i, row := range inventory {
		d.InventoryByCategory[i] = CategoryInventory{Category: row.Category.Label(), Count: row.Count, TotalStock: row.TotalStock}
	}

	byCategory, err := report.SalesByCategory(ctx, monthStart, nextMonth)
	if err != nil {
		return nil, err
	}
	d.SalesByCategory = make([]CategorySales, len(byCategory))
	for i, row := range byCategory {
		d.SalesByCategory[i] = CategorySales{Category: row.Category.Label(), Quantity: row.Quantity, Amount: money(row.Amount)}
	}

	low, err := report.LowStockProducts(ctx, lowStockLimit)
	if err != nil {
		return nil, err
	}
	d.LowStockProducts = make([]LowStockProduct, len(low))
	for i, p := range low {
		d.LowStockProducts[i] = LowStockProduct{
			ID:       p.ID,
			Name:     p.Name,
			Code:     p.Code,
			Stock:    p.Stock,
			Status:   p.Status.Label(),
			Category: p.Category.Label(),
		}
	}

	if d.Stats.TotalProducts, err = report.CountProducts(ctx, ""); err != nil {
		return nil, err
	}
	if d.Stats.TotalPatients, err = report.CountPatients(ctx); err != nil {
		return nil, err
	}
	if d.Stats.PendingAppointments, err = report.CountAppointmentsByStatus(ctx, repo.AppointmentStatusPending); err != nil {
		return nil, err
	}
	if d.Stats.ActiveSales, err = report.CountSalesByStatus(ctx, repo.SaleStatusNew, repo.SaleStatusInProgress); err != nil {
		return nil, err
	}
	return d, nil
}
