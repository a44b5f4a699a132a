// Package validate holds the input checks shared by the services.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// maxMoney is the largest value a numeric(10,2) column holds.
var maxMoney = decimal.New(1, 8)

// Error reports a rejected input field.
type Error struct {
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func Invalid(field, format string, args ...any) *Error {
	return &Error{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// Required trims v and rejects it when empty or longer than max runes.
func Required(field, v string, max int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", Invalid(field, "es obligatorio")
	}
	return Optional(field, v, max)
}

// Optional trims v and rejects it when longer than max runes. max < 1 means unbounded.
func Optional(field, v string, max int) (string, error) {
	v = strings.TrimSpace(v)
	if max > 0 && len([]rune(v)) > max {
		return "", Invalid(field, "no puede superar %d caracteres", max)
	}
	return v, nil
}

// Money accepts non-negative amounts with at most two decimals.
func Money(field string, d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, Invalid(field, "no puede ser negativo")
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, Invalid(field, "admite como máximo 2 decimales")
	}
	if d.GreaterThanOrEqual(maxMoney) {
		return decimal.Zero, Invalid(field, "excede el máximo permitido")
	}
	return d.Round(2), nil
}

func Stock(field string, n int) (int, error) {
	if n < 0 {
		return 0, Invalid(field, "no puede ser negativo")
	}
	return n, nil
}

func Quantity(field string, n int) (int, error) {
	if n < 1 {
		return 0, Invalid(field, "debe ser al menos 1")
	}
	return n, nil
}

type enum interface {
	~string
	Valid() bool
}

// Enum parses v as a value of T. An empty v yields def.
func Enum[T enum](field, v string, def T) (T, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		if def == "" {
			return def, Invalid(field, "es obligatorio")
		}
		return def, nil
	}
	t := T(v)
	if !t.Valid() {
		return "", Invalid(field, "valor inválido %q", v)
	}
	return t, nil
}

// EnumFilter parses an optional list filter; empty stays empty.
func EnumFilter[T enum](field, v string) (T, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	t := T(v)
	if !t.Valid() {
		return "", Invalid(field, "valor inválido %q", v)
	}
	return t, nil
}

// Date checks a YYYY-MM-DD calendar date and returns it normalized.
func Date(field, v string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(v))
	if err != nil {
		return "", Invalid(field, "debe tener el formato AAAA-MM-DD")
	}
	return t.Format(DateLayout), nil
}

// Clock checks an HH:MM time of day. Seconds, when given, are dropped.
func Clock(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	t, err := time.Parse(TimeLayout, v)
	if err != nil {
		t, err = time.Parse("15:04:05", v)
	}
	if err != nil {
		return "", Invalid(field, "debe tener el formato HH:MM")
	}
	return t.Format(TimeLayout), nil
}
