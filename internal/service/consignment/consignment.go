// Package consignment serves the products a supplier left on consignment.
// They are ordinary products with type consignacion; this package only fixes
// the type and derives the consignment state.
package consignment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/product"
)

type Status string

const (
	StatusActive Status = "Activa"
	StatusSold   Status = "Vendida"
)

// SearchFields are the product columns a consignment search matches.
var SearchFields = []string{"name", "supplier", "code"}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Consignment struct {
	repo.Product
	State Status
}

type CreateRequest struct {
	Name     string
	Category string
	Supplier string
	Stock    *int
	Price    *decimal.Decimal
}

type ListRequest struct {
	Search   string
	Supplier string
	Page     repo.Page
}

type ListResult struct {
	Consignments []Consignment
	Page         repo.PageInfo
	Suppliers    []string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Consignment, error)
	List(ctx context.Context, req ListRequest) (*ListResult, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type consignmentService struct {
	products product.Service
}

func New(products product.Service) Service {
	return &consignmentService{products: products}
}

// StateOf reports a consignment as active while any unit remains.
func StateOf(stock int) Status {
	if stock > 0 {
		return StatusActive
	}
	return StatusSold
}

func wrap(p repo.Product) Consignment {
	return Consignment{Product: p, State: StateOf(p.Stock)}
}

func (s *consignmentService) Create(ctx context.Context, req CreateRequest) (*Consignment, error) {
	p, err := s.products.Create(ctx, product.CreateRequest{
		Name:     req.Name,
		Category: req.Category,
		Supplier: req.Supplier,
		Stock:    req.Stock,
		Price:    req.Price,
		Type:     string(repo.ProductTypeConsignment),
	})
	if err != nil {
		return nil, err
	}
	c := wrap(*p)
	return &c, nil
}

func (s *consignmentService) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	res, err := s.products.List(ctx, product.ListRequest{
		Search:       req.Search,
		SearchFields: SearchFields,
		Supplier:     req.Supplier,
		Type:         string(repo.ProductTypeConsignment),
		Page:         req.Page,
	})
	if err != nil {
		return nil, err
	}

	out := &ListResult{Consignments: make([]Consignment, len(res.Products)), Page: res.Page, Suppliers: res.Suppliers}
	for i, p := range res.Products {
		out.Consignments[i] = wrap(p)
	}
	return out, nil
}
