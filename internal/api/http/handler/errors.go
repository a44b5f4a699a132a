package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/appointment"
	"github.com/Alijeyrad/optica_backend/internal/service/patient"
	"github.com/Alijeyrad/optica_backend/internal/service/product"
	"github.com/Alijeyrad/optica_backend/internal/service/purchase"
	"github.com/Alijeyrad/optica_backend/internal/service/sale"
	"github.com/Alijeyrad/optica_backend/internal/service/validate"
)

type errKind string

const (
	kindValidation errKind = "validation"
	kindConstraint errKind = "constraint"
	kindNotFound   errKind = "not_found"
	kindInternal   errKind = "internal"
)

var httpErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "optica_http_errors_total",
	Help: "Failed requests by error kind and route.",
}, []string{"kind", "route"})

var notFoundErrs = []error{
	product.ErrNotFound,
	patient.ErrNotFound,
	patient.ErrHistoryNotFound,
	appointment.ErrNotFound,
	sale.ErrNotFound,
	sale.ErrItemNotFound,
	purchase.ErrNotFound,
	purchase.ErrItemNotFound,
}

// constraintErrs are duplicates and references to rows that do not exist.
var constraintErrs = []error{
	product.ErrCodeConflict,
	patient.ErrEmailTaken,
	patient.ErrProductNotFound,
	appointment.ErrPatientNotFound,
	sale.ErrPatientNotFound,
	sale.ErrProductNotFound,
	sale.ErrNumberConflict,
	purchase.ErrProductNotFound,
	purchase.ErrNumberConflict,
}

// requestError is a malformed request caught before reaching a service.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badInput(msg string) error { return &requestError{msg: msg} }

func matching(err error, targets []error) error {
	for _, target := range targets {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

// errorKind classifies err and picks the message shown to the client.
func errorKind(err error) (errKind, string) {
	var rerr *requestError
	if errors.As(err, &rerr) {
		return kindValidation, rerr.msg
	}
	var verr *validate.Error
	if errors.As(err, &verr) {
		return kindValidation, verr.Error()
	}
	var rverr *repo.ValidationError
	if errors.As(err, &rverr) {
		return kindValidation, rverr.Error()
	}
	if target := matching(err, notFoundErrs); target != nil {
		return kindNotFound, target.Error()
	}
	if repo.IsNotFound(err) {
		return kindNotFound, "not found"
	}
	if target := matching(err, constraintErrs); target != nil {
		return kindConstraint, target.Error()
	}
	if repo.IsConstraintError(err) {
		return kindConstraint, "constraint violation"
	}
	return kindInternal, err.Error()
}

func record(c fiber.Ctx, op string, kind errKind, err error) {
	route := c.Route().Path
	httpErrors.WithLabelValues(string(kind), route).Inc()

	level := slog.LevelInfo
	if kind == kindInternal {
		level = slog.LevelError
	}
	// request_id is added from the context by the log handler
	slog.Log(c.Context(), level, "request failed", "kind", kind, "op", op, "route", route, "error", err)
}

// respond maps a failure to its status. Internal messages are not shown.
func respond(c fiber.Ctx, op string, err error) error {
	kind, msg := errorKind(err)
	record(c, op, kind, err)

	switch kind {
	case kindValidation:
		return badRequest(c, msg)
	case kindNotFound:
		return notFound(c, msg)
	case kindConstraint:
		return conflict(c, msg)
	default:
		return internalError(c)
	}
}

// respondCreate answers every failed create with 400 and the error text.
func respondCreate(c fiber.Ctx, op string, err error) error {
	kind, msg := errorKind(err)
	record(c, op, kind, err)
	return badRequest(c, msg)
}
