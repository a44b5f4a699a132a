package sale

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
	UnitPrice *decimal.Decimal // defaults to the product price
}

type CreateRequest struct {
	PatientID uuid.UUID
	Status    string // defaults to nuevo
	Notes     string
	Items     []ItemRequest
}

type UpdateRequest struct {
	PatientID *uuid.UUID
	Status    *string
	Notes     *string
}

type UpdateItemRequest struct {
	ProductID *uuid.UUID
	Quantity  *int
	UnitPrice *decimal.Decimal
}

type ListRequest struct {
	Search    string
	Status    string
	PatientID uuid.UUID
	Page      repo.Page
}

type ListResult struct {
	Sales []repo.Sale
	Page  repo.PageInfo
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*repo.Sale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Sale, error)
	List(ctx context.Context, req ListRequest) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Items. Every write recomputes the sale total in the same transaction.
	AddItem(ctx context.Context, saleID uuid.UUID, req ItemRequest) (*repo.Sale, error)
	UpdateItem(ctx context.Context, saleID, itemID uuid.UUID, req UpdateItemRequest) (*repo.Sale, error)
	DeleteItem(ctx context.Context, saleID, itemID uuid.UUID) (*repo.Sale, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type saleService struct {
	db *repo.Client
}

func New(db *repo.Client) Service {
	return &saleService{db: db}
}

func checkPatient(ctx context.Context, tx *repo.Tx, id uuid.UUID) (*repo.Patient, error) {
	if id == uuid.Nil {
		return nil, validate.Invalid("patient_id", "es obligatorio")
	}
	p, err := tx.Patient.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return p, nil
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

// addItem validates req, derives the line total and inserts it. The caller
// recomputes the sale total.
func addItem(ctx context.Context, tx *repo.Tx, saleID uuid.UUID, req ItemRequest) error {
	product, err := getProduct(ctx, tx, req.ProductID)
	if err != nil {
		return err
	}
	item := &repo.SaleItem{SaleID: saleID, ProductID: product.ID, ProductName: product.Name}
	if item.Quantity, err = validate.Quantity("quantity", req.Quantity); err != nil {
		return err
	}
	item.UnitPrice = product.Price
	if req.UnitPrice != nil {
		if item.UnitPrice, err = validate.Money("unit_price", *req.UnitPrice); err != nil {
			return err
		}
	}
	if item.TotalPrice, err = validate.Money("total_price", derive.LineTotal(item.Quantity, item.UnitPrice)); err != nil {
		return err
	}
	return tx.SaleItem.Create(ctx, item)
}

func recompute(ctx context.Context, tx *repo.Tx, saleID uuid.UUID) error {
	// the re-summed total must still fit the column
	set := func(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
		if _, err := validate.Money("total_amount", total); err != nil {
			return err
		}
		return tx.Sale.SetTotal(ctx, id, total)
	}
	_, err := derive.RecomputeTotal(ctx, saleID, tx.SaleItem.LineTotals, set)
	return err
}

// load reads a sale with its items inside tx.
func load(ctx context.Context, tx *repo.Tx, id uuid.UUID) (*repo.Sale, error) {
	s, err := tx.Sale.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := tx.SaleItem.ListBySales(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Items = withItems(items[id])
	return s, nil
}

func withItems(items []repo.SaleItem) []repo.SaleItem {
	if items == nil {
		return []repo.SaleItem{}
	}
	return items
}

func (s *saleService) mapErr(op string, err error) error {
	if repo.IsNotFound(err) {
		return ErrNotFound
	}
	if validate.IsValidation(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *saleService) Create(ctx context.Context, req CreateRequest) (*repo.Sale, error) {
	sale := &repo.Sale{TotalAmount: decimal.Zero}
	var err error

	if sale.Status, err = validate.Enum("status", req.Status, repo.SaleStatusNew); err != nil {
		return nil, err
	}
	if sale.Notes, err = validate.Optional("notes", req.Notes, 0); err != nil {
		return nil, err
	}

	var out *repo.Sale
	err = s.db.WithTx(ctx, func(tx *repo.Tx) error {
		patient, err := checkPatient(ctx, tx, req.PatientID)
		if err != nil {
			return err
		}
		sale.PatientID, sale.PatientName = patient.ID, patient.Name

		if sale.OrderNumber, err = derive.UniqueIdentifier(ctx, derive.OrderNumberPrefix, tx.Sale.OrderNumberExists); err != nil {
			return err
		}
		if err := tx.Sale.Create(ctx, sale); err != nil {
			if repo.IsConstraintError(err) {
				return ErrNumberConflict
			}
			return err
		}
		for i, item := range req.Items {
			if err := addItem(ctx, tx, sale.ID, item); err != nil {
				return fmt.Errorf("items[%d]: %w", i, err)
			}
		}
		if err := recompute(ctx, tx, sale.ID); err != nil {
			return err
		}
		out, err = load(ctx, tx, sale.ID)
		return err
	})
	if err != nil {
		return nil, s.mapErr("create sale", err)
	}
	return out, nil
}

func (s *saleService) GetByID(ctx context.Context, id uuid.UUID) (*repo.Sale, error) {
	sale, err := s.db.Sale.Get(ctx, id)
	if err != nil {
		return nil, s.mapErr("get sale", err)
	}
	items, err := s.db.SaleItem.ListBySales(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	sale.Items = withItems(items[id])
	return sale, nil
}

func (s *saleService) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	status, err := validate.EnumFilter[repo.SaleStatus]("status", req.Status)
	if err != nil {
		return nil, err
	}
	f := repo.SaleFilter{Search: req.Search, Status: status, PatientID: req.PatientID}

	sales, info, err := s.db.Sale.List(ctx, f, req.Page)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	ids := make([]uuid.UUID, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
	}
	items, err := s.db.SaleItem.ListBySales(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	for i := range sales {
		sales[i].Items = withItems(items[sales[i].ID])
	}
	return &ListResult{Sales: sales, Page: info}, nil
}

func (s *saleService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Sale, error) {
	var out *repo.Sale
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		sale, err := tx.Sale.Get(ctx, id)
		if err != nil {
			return err
		}
		if req.PatientID != nil {
			patient, err := checkPatient(ctx, tx, *req.PatientID)
			if err != nil {
				return err
			}
			sale.PatientID = patient.ID
		}
		if req.Status != nil {
			if sale.Status, err = validate.Enum("status", *req.Status, sale.Status); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			if sale.Notes, err = validate.Optional("notes", *req.Notes, 0); err != nil {
				return err
			}
		}
		if err := tx.Sale.Update(ctx, sale); err != nil {
			return err
		}
		out, err = load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, s.mapErr("update sale", err)
	}
	return out, nil
}

func (s *saleService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.Sale.Delete(ctx, id); err != nil {
		return s.mapErr("delete sale", err)
	}
	return nil
}

// itemWrite runs fn against an existing sale, then recomputes its total.
func (s *saleService) itemWrite(ctx context.Context, op string, saleID uuid.UUID, fn func(tx *repo.Tx) error) (*repo.Sale, error) {
	var out *repo.Sale
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		if _, err := tx.Sale.Get(ctx, saleID); err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}
		if err := recompute(ctx, tx, saleID); err != nil {
			return err
		}
		var err error
		out, err = load(ctx, tx, saleID)
		return err
	})
	if err != nil {
		return nil, s.mapErr(op, err)
	}
	return out, nil
}

func (s *saleService) AddItem(ctx context.Context, saleID uuid.UUID, req ItemRequest) (*repo.Sale, error) {
	return s.itemWrite(ctx, "add sale item", saleID, func(tx *repo.Tx) error {
		return addItem(ctx, tx, saleID, req)
	})
}

func (s *saleService) UpdateItem(ctx context.Context, saleID, itemID uuid.UUID, req UpdateItemRequest) (*repo.Sale, error) {
	return s.itemWrite(ctx, "update sale item", saleID, func(tx *repo.Tx) error {
		item, err := tx.SaleItem.Get(ctx, saleID, itemID)
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
		if req.UnitPrice != nil {
			if item.UnitPrice, err = validate.Money("unit_price", *req.UnitPrice); err != nil {
				return err
			}
		}
		if item.TotalPrice, err = validate.Money("total_price", derive.LineTotal(item.Quantity, item.UnitPrice)); err != nil {
			return err
		}
		return tx.SaleItem.Update(ctx, item)
	})
}

func (s *saleService) DeleteItem(ctx context.Context, saleID, itemID uuid.UUID) (*repo.Sale, error) {
	return s.itemWrite(ctx, "delete sale item", saleID, func(tx *repo.Tx) error {
		if err := tx.SaleItem.Delete(ctx, saleID, itemID); err != nil {
			if repo.IsNotFound(err) {
				return ErrItemNotFound
			}
			return err
		}
		return nil
	})
}
