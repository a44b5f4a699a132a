package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/optica_backend/config"
	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/appointment"
	"github.com/Alijeyrad/optica_backend/internal/service/consignment"
	"github.com/Alijeyrad/optica_backend/internal/service/dashboard"
	"github.com/Alijeyrad/optica_backend/internal/service/export"
	"github.com/Alijeyrad/optica_backend/internal/service/patient"
	"github.com/Alijeyrad/optica_backend/internal/service/product"
	"github.com/Alijeyrad/optica_backend/internal/service/purchase"
	"github.com/Alijeyrad/optica_backend/internal/service/sale"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		product.New,
		ProvidePatientService,
		appointment.New,
		sale.New,
		purchase.New,
		consignment.New,
		ProvideDashboardService,
		ProvideExportService,
	),
)

func ProvidePatientService(db *repo.Client, cfg *config.Config) patient.Service {
	return patient.New(db, patient.Config{PhoneRegion: cfg.Business.PhoneRegion})
}

// ProvideDashboardService caches in Redis when a client is available.
func ProvideDashboardService(db *repo.Client, rdb *redis.Client, cfg *config.Config, logger *slog.Logger) dashboard.Service {
	var cache dashboard.Cache = dashboard.NopCache{}
	if rdb != nil {
		cache = dashboard.NewRedisCache(rdb)
	}
	return dashboard.New(db, cache, dashboard.Config{
		Location: cfg.Business.Location(),
		CacheTTL: cfg.Dashboard.CacheTTL(),
		Logger:   logger,
	})
}

func ProvideExportService(
	products product.Service,
	patients patient.Service,
	purchases purchase.Service,
	cfg *config.Config,
) export.Service {
	return export.New(products, patients, purchases, cfg.Business.Location())
}
