// Package derive holds the pure computations that keep dependent fields
// consistent: product status, line and order totals, generated identifiers.
// Services call these explicitly before a write is committed.
package derive

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/pkg/util/codes"
)

const (
	// LowStockThreshold is the highest stock still reported as "bajo".
	LowStockThreshold = 5

	// MaxIdentifierAttempts bounds the uniqueness retry loop.
	MaxIdentifierAttempts = 5
)

// Identifier prefixes.
const (
	ProductCodePrefix    = "PROD"
	OrderNumberPrefix    = "ORD"
	PurchaseNumberPrefix = "PUR"
)

var ErrIdentifierExhausted = errors.New("could not generate a unique identifier")

// ProductStatus maps stock to status: 0 is critico, 1..5 is bajo, above is normal.
func ProductStatus(stock int) repo.ProductStatus {
	switch {
	case stock <= 0:
		return repo.ProductStatusCritical
	case stock <= LowStockThreshold:
		return repo.ProductStatusLow
	default:
		return repo.ProductStatusNormal
	}
}

// LineTotal is quantity × unit, exact.
func LineTotal(quantity int, unit decimal.Decimal) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

// OrderTotal re-sums every line total of an order.
func OrderTotal(lines []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l)
	}
	return total
}

// LinesFunc loads the persisted line totals of an order.
type LinesFunc func(ctx context.Context, orderID uuid.UUID) ([]decimal.Decimal, error)

// SetTotalFunc stores the total of an order.
type SetTotalFunc func(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error

// RecomputeTotal re-sums every line of an order and stores the result. Call
// it inside the transaction of the item write.
func RecomputeTotal(ctx context.Context, orderID uuid.UUID, lines LinesFunc, set SetTotalFunc) (decimal.Decimal, error) {
	totals, err := lines(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	total := OrderTotal(totals)
	if err := set(ctx, orderID, total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ExistsFunc reports whether an identifier is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// UniqueIdentifier draws identifiers until exists reports a free one.
func UniqueIdentifier(ctx context.Context, prefix string, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxIdentifierAttempts; attempt++ {
		id, err := codes.GenerateIdentifier(prefix)
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("probe identifier: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts with prefix %s", ErrIdentifierExhausted, MaxIdentifierAttempts, prefix)
}
