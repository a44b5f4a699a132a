package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/optica_backend/internal/repo"
)

// pageFrom reads page and page_size. Missing values take the defaults;
// anything present must be a positive integer and page_size at most MaxPageSize.
func pageFrom(c fiber.Ctx) (repo.Page, error) {
	var p repo.Page
	var err error
	if p.Number, err = positiveQuery(c, "page"); err != nil {
		return p, err
	}
	if p.Size, err = positiveQuery(c, "page_size"); err != nil {
		return p, err
	}
	if p.Size > repo.MaxPageSize {
		return p, badInput("page_size no puede superar " + strconv.Itoa(repo.MaxPageSize))
	}
	return p, nil
}

func positiveQuery(c fiber.Ctx, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, badInput(name + " debe ser un entero positivo")
	}
	return n, nil
}

func idParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, badInput("invalid " + name)
	}
	return id, nil
}

// optionalID parses an id taken from a body or query; empty is uuid.Nil.
func optionalID(field, v string) (uuid.UUID, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, badInput("invalid " + field)
	}
	return id, nil
}

// optionalIDPtr is for partial updates; absent or empty leaves the field unchanged.
func optionalIDPtr(field string, v *string) (*uuid.UUID, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	id, err := optionalID(field, *v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func bindJSON(c fiber.Ctx, out any) error {
	if err := c.Bind().JSON(out); err != nil {
		return badInput("invalid request body")
	}
	return nil
}
