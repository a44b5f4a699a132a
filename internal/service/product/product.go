package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/derive"
	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/validate"
	"github.com/Alijeyrad/optica_backend/pkg/util/codes"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Name     string
	Category string
	Supplier string
	Stock    *int
	Price    *decimal.Decimal
	Type     string // defaults to propio
	Status   string // ignored, status follows stock
}

type UpdateRequest struct {
	Name     *string
	Category *string
	Supplier *string
	Stock    *int
	Price    *decimal.Decimal
	Type     *string
	Status   *string // ignored, status follows stock
}

type ListRequest struct {
	Search       string
	SearchFields []string
	Code         string // matched exactly after normalization
	Category     string
	Supplier     string
	Type         string
	Status       string
	Page         repo.Page
}

type ListResult struct {
	Products  []repo.Product
	Page      repo.PageInfo
	Suppliers []string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*repo.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Product, error)
	List(ctx context.Context, req ListRequest) (*ListResult, error)
	All(ctx context.Context, req ListRequest) ([]repo.Product, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type productService struct {
	db *repo.Client
}

func New(db *repo.Client) Service {
	return &productService{db: db}
}

func (s *productService) Create(ctx context.Context, req CreateRequest) (*repo.Product, error) {
	p := &repo.Product{}
	var err error

	if p.Name, err = validate.Required("name", req.Name, 200); err != nil {
		return nil, err
	}
	if p.Category, err = validate.Enum[repo.ProductCategory]("category", req.Category, ""); err != nil {
		return nil, err
	}
	if p.Supplier, err = validate.Required("supplier", req.Supplier, 200); err != nil {
		return nil, err
	}
	if req.Stock == nil {
		return nil, validate.Invalid("stock", "es obligatorio")
	}
	if p.Stock, err = validate.Stock("stock", *req.Stock); err != nil {
		return nil, err
	}
	if req.Price == nil {
		return nil, validate.Invalid("price", "es obligatorio")
	}
	if p.Price, err = validate.Money("price", *req.Price); err != nil {
		return nil, err
	}
	if p.Type, err = validate.Enum("type", req.Type, repo.ProductTypeOwn); err != nil {
		return nil, err
	}
	p.Status = derive.ProductStatus(p.Stock)

	p.Code, err = derive.UniqueIdentifier(ctx, derive.ProductCodePrefix, s.db.Product.CodeExists)
	if err != nil {
		return nil, fmt.Errorf("generate product code: %w", err)
	}

	if err := s.db.Product.Create(ctx, p); err != nil {
		if repo.IsConstraintError(err) {
			return nil, ErrCodeConflict
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*repo.Product, error) {
	p, err := s.db.Product.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (req ListRequest) filter() (repo.ProductFilter, error) {
	f := repo.ProductFilter{
		Search:       req.Search,
		SearchFields: req.SearchFields,
		Code:         codes.NormalizeCode(req.Code),
		Supplier:     req.Supplier,
	}
	var err error
	if f.Category, err = validate.EnumFilter[repo.ProductCategory]("category", req.Category); err != nil {
		return f, err
	}
	if f.Type, err = validate.EnumFilter[repo.ProductType]("type", req.Type); err != nil {
		return f, err
	}
	if f.Status, err = validate.EnumFilter[repo.ProductStatus]("status", req.Status); err != nil {
		return f, err
	}
	return f, nil
}

func (s *productService) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	f, err := req.filter()
	if err != nil {
		return nil, err
	}

	products, info, err := s.db.Product.List(ctx, f, req.Page)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	suppliers, err := s.db.Product.Suppliers(ctx, f.Type)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}

	return &ListResult{Products: products, Page: info, Suppliers: suppliers}, nil
}

func (s *productService) All(ctx context.Context, req ListRequest) ([]repo.Product, error) {
	f, err := req.filter()
	if err != nil {
		return nil, err
	}
	products, err := s.db.Product.All(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if p.Name, err = validate.Required("name", *req.Name, 200); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		if p.Category, err = validate.Enum[repo.ProductCategory]("category", *req.Category, ""); err != nil {
			return nil, err
		}
	}
	if req.Supplier != nil {
		if p.Supplier, err = validate.Required("supplier", *req.Supplier, 200); err != nil {
			return nil, err
		}
	}
	if req.Stock != nil {
		if p.Stock, err = validate.Stock("stock", *req.Stock); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		if p.Price, err = validate.Money("price", *req.Price); err != nil {
			return nil, err
		}
	}
	if req.Type != nil {
		if p.Type, err = validate.Enum("type", *req.Type, p.Type); err != nil {
			return nil, err
		}
	}
	p.Status = derive.ProductStatus(p.Stock)

	if err := s.db.Product.Update(ctx, p); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete removes the product with the items and history rows that reference
// it, then recomputes the totals of the orders that lost items.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		saleIDs, err := tx.SaleItem.SaleIDsByProduct(ctx, id)
		if err != nil {
			return err
		}
		purchaseIDs, err := tx.PurchaseItem.PurchaseIDsByProduct(ctx, id)
		if err != nil {
			return err
		}

		if err := tx.Product.Delete(ctx, id); err != nil {
			return err
		}

		for _, saleID := range saleIDs {
			if _, err := derive.RecomputeTotal(ctx, saleID, tx.SaleItem.LineTotals, tx.Sale.SetTotal); err != nil {
				return err
			}
		}
		for _, purchaseID := range purchaseIDs {
			if _, err := derive.RecomputeTotal(ctx, purchaseID, tx.PurchaseItem.LineTotals, tx.Purchase.SetTotal); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
