package purchase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/derive"
	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/validate"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
	UnitCost  *decimal.Decimal
}

type CreateRequest struct {
	Supplier string
	Status   string // defaults to pendiente
	Notes    string
	Items    []ItemRequest
}

type UpdateRequest struct {
	Supplier *string
	Status   *string
	Notes    *string
}

type UpdateItemRequest struct {
	ProductID *uuid.UUID
	Quantity  *int
	UnitCost  *decimal.Decimal
}

type ListRequest struct {
	Search   string
	Status   string
	Supplier string
	Page     repo.Page
}

type ListResult struct {
	Purchases []repo.Purchase
	Page      repo.PageInfo
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*repo.Purchase, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Purchase, error)
	List(ctx context.Context, req ListRequest) (*ListResult, error)
	All(ctx context.Context, req ListRequest) ([]repo.Purchase, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Purchase, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Items. Every write recomputes the purchase total in the same transaction.
	AddItem(ctx context.Context, purchaseID uuid.UUID, req ItemRequest) (*repo.Purchase, error)
	UpdateItem(ctx context.Context, purchaseID, itemID uuid.UUID, req UpdateItemRequest) (*repo.Purchase, error)
	DeleteItem(ctx context.Context, purchaseID, itemID uuid.UUID) (*repo.Purchase, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type purchaseService struct {
	db *repo.Client
}

func New(db *repo.Client) Service {
	return &purchaseService{db: db}
}

func getProduct(ctx context.Context, tx *repo.Tx, id uuid.UUID) (*repo.Product, error) {
	if id == uuid.Nil {
		return nil, validate.Invalid("product_id", "es obligatorio")
	}
	p, err := tx.Product.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func unitCost(v *decimal.Decimal) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, validate.Invalid("unit_cost", "es obligatorio")
	}
	return validate.Money("unit_cost", *v)
}

func addItem(ctx context.Context, tx *repo.Tx, purchaseID uuid.UUID, req ItemRequest) error {
	product, err := getProduct(ctx, tx, req.ProductID)
	if err != nil {
		return err
	}
	item := &repo.PurchaseItem{PurchaseID: purchaseID, ProductID: product.ID, ProductName: product.Name}
	if item.Quantity, err = validate.Quantity("quantity", req.Quantity); err != nil {
		return err
	}
	if item.UnitCost, err = unitCost(req.UnitCost); err != nil {
		return err
	}
	if item.TotalCost, err = validate.Money("total_cost", derive.LineTotal(item.Quantity, item.UnitCost)); err != nil {
		return err
	}
	return tx.PurchaseItem.Create(ctx, item)
}

func recompute(ctx context.Context, tx *repo.Tx, purchaseID uuid.UUID) error {
	set := func(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
		if _, err := validate.Money("total_amount", total); err != nil {
			return err
		}
		return tx.Purchase.SetTotal(ctx, id, total)
	}
	_, err := derive.RecomputeTotal(ctx, purchaseID, tx.PurchaseItem.LineTotals, set)
	return err
}

func load(ctx context.Context, tx *repo.Tx, id uuid.UUID) (*repo.Purchase, error) {
	p, err := tx.Purchase.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := tx.PurchaseItem.ListByPurchases(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Items = withItems(items[id])
	return p, nil
}

func withItems(items []repo.PurchaseItem) []repo.PurchaseItem {
	if items == nil {
		return []repo.PurchaseItem{}
	}
	return items
}

func mapErr(op string, err error) error {
	if repo.IsNotFound(err) {
		return ErrNotFound
	}
	if validate.IsValidation(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *purchaseService) Create(ctx context.Context, req CreateRequest) (*repo.Purchase, error) {
	p := &repo.Purchase{TotalAmount: decimal.Zero}
	var err error

	if p.Supplier, err = validate.Required("supplier", req.Supplier, 200); err != nil {
		return nil, err
	}
	if p.Status, err = validate.Enum("status", req.Status, repo.PurchaseStatusPending); err != nil {
		return nil, err
	}
	if p.Notes, err = validate.Optional("notes", req.Notes, 0); err != nil {
		return nil, err
	}

	var out *repo.Purchase
	err = s.db.WithTx(ctx, func(tx *repo.Tx) error {
		var err error
		if p.PurchaseNumber, err = derive.UniqueIdentifier(ctx, derive.PurchaseNumberPrefix, tx.Purchase.PurchaseNumberExists); err != nil {
			return err
		}
		if err := tx.Purchase.Create(ctx, p); err != nil {
			if repo.IsConstraintError(err) {
				return ErrNumberConflict
			}
			return err
		}
		for i, item := range req.Items {
			if err := addItem(ctx, tx, p.ID, item); err != nil {
				return fmt.Errorf("items[%d]: %w", i, err)
			}
		}
		if err := recompute(ctx, tx, p.ID); err != nil {
			return err
		}
		out, err = load(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, mapErr("create purchase", err)
	}
	return out, nil
}

func (s *purchaseService) GetByID(ctx context.Context, id uuid.UUID) (*repo.Purchase, error) {
	p, err := s.db.Purchase.Get(ctx, id)
	if err != nil {
		return nil, mapErr("get purchase", err)
	}
	items, err := s.db.PurchaseItem.ListByPurchases(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get purchase items: %w", err)
	}
	p.Items = withItems(items[id])
	return p, nil
}

func (req ListRequest) filter() (repo.PurchaseFilter, error) {
	status, err := validate.EnumFilter[repo.PurchaseStatus]("status", req.Status)
	if err != nil {
		return repo.PurchaseFilter{}, err
	}
	return repo.PurchaseFilter{Search: req.Search, Status: status, Supplier: req.Supplier}, nil
}

func (s *purchaseService) attachItems(ctx context.Context, purchases []repo.Purchase) error {
	ids := make([]uuid.UUID, len(purchases))
	for i, p := range purchases {
		ids[i] = p.ID
	}
	items, err := s.db.PurchaseItem.ListByPurchases(ctx, ids...)
	if err != nil {
		return fmt.Errorf("list purchase items: %w", err)
	}
	for i := range purchases {
		purchases[i].Items = withItems(items[purchases[i].ID])
	}
	return nil
}

func (s *purchaseService) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	f, err := req.filter()
	if err != nil {
		return nil, err
	}
	purchases, info, err := s.db.Purchase.List(ctx, f, req.Page)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	if err := s.attachItems(ctx, purchases); err != nil {
		return nil, err
	}
	return &ListResult{Purchases: purchases, Page: info}, nil
}

// All returns every matching purchase without items, for export.
func (s *purchaseService) All(ctx context.Context, req ListRequest) ([]repo.Purchase, error) {
	f, err := req.filter()
	if err != nil {
		return nil, err
	}
	purchases, err := s.db.Purchase.All(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}

func (s *purchaseService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Purchase, error) {
	var out *repo.Purchase
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		p, err := tx.Purchase.Get(ctx, id)
		if err != nil {
			return err
		}
		if req.Supplier != nil {
			if p.Supplier, err = validate.Required("supplier", *req.Supplier, 200); err != nil {
				return err
			}
		}
		if req.Status != nil {
			if p.Status, err = validate.Enum("status", *req.Status, p.Status); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			if p.Notes, err = validate.Optional("notes", *req.Notes, 0); err != nil {
				return err
			}
		}
		if err := tx.Purchase.Update(ctx, p); err != nil {
			return err
		}
		out, err = load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, mapErr("update purchase", err)
	}
	return out, nil
}

func (s *purchaseService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.Purchase.Delete(ctx, id); err != nil {
		return mapErr("delete purchase", err)
	}
	return nil
}

func (s *purchaseService) itemWrite(ctx context.Context, op string, purchaseID uuid.UUID, fn func(tx *repo.Tx) error) (*repo.Purchase, error) {
	var out *repo.Purchase
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		if _, err := tx.Purchase.Get(ctx, purchaseID); err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}
		if err := recompute(ctx, tx, purchaseID); err != nil {
			return err
		}
		var err error
		out, err = load(ctx, tx, purchaseID)
		return err
	})
	if err != nil {
		return nil, mapErr(op, err)
	}
	return out, nil
}

func (s *purchaseService) AddItem(ctx context.Context, purchaseID uuid.UUID, req ItemRequest) (*repo.Purchase, error) {
	return s.itemWrite(ctx, "add purchase item", purchaseID, func(tx *repo.Tx) error {
		return addItem(ctx, tx, purchaseID, req)
	})
}

func (s *purchaseService) UpdateItem(ctx context.Context, purchaseID, itemID uuid.UUID, req UpdateItemRequest) (*repo.Purchase, error) {
	return s.itemWrite(ctx, "update purchase item", purchaseID, func(tx *repo.Tx) error {
		item, err := tx.PurchaseItem.Get(ctx, purchaseID, itemID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrItemNotFound
			}
			return err
		}
		if req.ProductID != nil && *req.ProductID != item.ProductID {
			product, err := getProduct(ctx, tx, *req.ProductID)
			if err != nil {
				return err
			}
			item.ProductID, item.ProductName = product.ID, product.Name
		}
		if req.Quantity != nil {
			if item.Quantity, err = validate.Quantity("quantity", *req.Quantity); err != nil {
				return err
			}
		}
		if req.UnitCost != nil {
			if item.UnitCost, err = unitCost(req.UnitCost); err != nil {
				return err
			}
		}
		if item.TotalCost, err = validate.Money("total_cost", derive.LineTotal(item.Quantity, item.UnitCost)); err != nil {
			return err
		}
		return tx.PurchaseItem.Update(ctx, item)
	})
}

func (s *purchaseService) DeleteItem(ctx context.Context, purchaseID, itemID uuid.UUID) (*repo.Purchase, error) {
	return s.itemWrite(ctx, "delete purchase item", purchaseID, func(tx *repo.Tx) error {
		if err := tx.PurchaseItem.Delete(ctx, purchaseID, itemID); err != nil {
			if repo.IsNotFound(err) {
				return ErrItemNotFound
			}
			return err
		}
		return nil
	})
}
