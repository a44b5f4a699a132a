package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"

	"github.com/Alijeyrad/optica_backend/config"
	"github.com/Alijeyrad/optica_backend/internal/api/http/router"
	"github.com/Alijeyrad/optica_backend/internal/app"
)

func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		router.Module,
		Module,

		// NewServer is only built, and its OnStart hook registered, when something asks for the app
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
		fx.NopLogger,
	).Run()
}
