package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/optica_backend/internal/service/dashboard"
)

// InvalidateDashboard drops the cached dashboard after every successful write.
func InvalidateDashboard(dash dashboard.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		err := c.Next()
		if err != nil || c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return err
		}
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			return nil
		}
		if ierr := dash.Invalidate(c.Context()); ierr != nil {
			slog.WarnContext(c.Context(), "dashboard invalidation failed", "error", ierr)
		}
		return nil
	}
}
