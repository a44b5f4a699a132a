package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/optica_backend/config"
	"github.com/Alijeyrad/optica_backend/internal/api/http/handler"
	"github.com/Alijeyrad/optica_backend/internal/api/http/middleware"
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

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg            *config.Config
	DB             *repo.Client
	ProductSvc     product.Service
	PatientSvc     patient.Service
	AppointmentSvc appointment.Service
	SaleSvc        sale.Service
	PurchaseSvc    purchase.Service
	ConsignmentSvc consignment.Service
	DashboardSvc   dashboard.Service
	ExportSvc      export.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Middlewares shared by the resource groups
	invalidate := middleware.InvalidateDashboard(r.p.DashboardSvc)

	// 3. Handlers
	loc := r.p.Cfg.Business.Location()
	productH := handler.NewProductHandler(r.p.ProductSvc)
	patientH := handler.NewPatientHandler(r.p.PatientSvc, loc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	saleH := handler.NewSaleHandler(r.p.SaleSvc, loc)
	purchaseH := handler.NewPurchaseHandler(r.p.PurchaseSvc, loc)
	consignmentH := handler.NewConsignmentHandler(r.p.ConsignmentSvc)
	dashboardH := handler.NewDashboardHandler(r.p.DashboardSvc)
	exportH := handler.NewExportHandler(r.p.ExportSvc)

	var api fiber.Router = app
	if base := r.p.Cfg.Server.BasePath; base != "" && base != "/" {
		api = app.Group(base)
	}

	// 4. Delegate to sub-files
	r.registerDashboardRoutes(api, dashboardH)
	r.registerProductRoutes(api, productH, exportH, invalidate)
	r.registerPatientRoutes(api, patientH, exportH, invalidate)
	r.registerAppointmentRoutes(api, appointmentH, invalidate)
	r.registerSaleRoutes(api, saleH, invalidate)
	r.registerPurchaseRoutes(api, purchaseH, exportH, invalidate)
	r.registerConsignmentRoutes(api, consignmentH, invalidate)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			return r.p.DB.Ping(ctx) == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
