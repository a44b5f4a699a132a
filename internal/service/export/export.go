// Package export renders entity collections as spreadsheet downloads.
package export

import (
	"context"
	"time"

	"github.com/Alijeyrad/optica_backend/internal/service/patient"
	"github.com/Alijeyrad/optica_backend/internal/service/product"
	"github.com/Alijeyrad/optica_backend/internal/service/purchase"
)

var (
	productHeader  = []string{"Código", "Nombre", "Categoría", "Proveedor", "Stock", "Precio", "Estado", "Tipo", "Fecha Creación"}
	patientHeader  = []string{"Nombre", "Email", "Teléfono", "Estado", "Dirección", "Notas", "Total Compras", "Fecha Registro"}
	purchaseHeader = []string{"Número", "Proveedor", "Valor Total", "Estado", "Notas", "Fecha Creación"}
)

type Service interface {
	Products(ctx context.Context, req product.ListRequest) (*Table, error)
	Patients(ctx context.Context, req patient.ListRequest) (*Table, error)
	Purchases(ctx context.Context, req purchase.ListRequest) (*Table, error)
}

type exportService struct {
	products  product.Service
	patients  patient.Service
	purchases purchase.Service
	loc       *time.Location
}

// New renders timestamps in loc, the business timezone.
func New(products product.Service, patients patient.Service, purchases purchase.Service, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{products: products, patients: patients, purchases: purchases, loc: loc}
}

func (s *exportService) Products(ctx context.Context, req product.ListRequest) (*Table, error) {
	products, err := s.products.All(ctx, req)
	if err != nil {
		return nil, err
	}
	t := &Table{Name: "productos", Sheet: "Productos", Header: productHeader, Rows: make([][]any, len(products))}
	for i, p := range products {
		t.Rows[i] = []any{
			p.Code, p.Name, p.Category.Label(), p.Supplier, p.Stock, p.Price,
			p.Status.Label(), p.Type.Label(), p.CreatedAt.In(s.loc),
		}
	}
	return t, nil
}

func (s *exportService) Patients(ctx context.Context, req patient.ListRequest) (*Table, error) {
	patients, err := s.patients.All(ctx, req)
	if err != nil {
		return nil, err
	}
	t := &Table{Name: "pacientes", Sheet: "Pacientes", Header: patientHeader, Rows: make([][]any, len(patients))}
	for i, p := range patients {
		t.Rows[i] = []any{
			p.Name, p.Email, p.Phone, p.Status.Label(), p.Address, p.Notes,
			p.TotalPurchases, p.CreatedAt.In(s.loc),
		}
	}
	return t, nil
}

func (s *exportService) Purchases(ctx context.Context, req purchase.ListRequest) (*Table, error) {
	purchases, err := s.purchases.All(ctx, req)
	if err != nil {
		return nil, err
	}
	t := &Table{Name: "compras", Sheet: "Compras", Header: purchaseHeader, Rows: make([][]any, len(purchases))}
	for i, p := range purchases {
		t.Rows[i] = []any{
			p.PurchaseNumber, p.Supplier, p.TotalAmount, p.Status.Label(), p.Notes, p.CreatedAt.In(s.loc),
		}
	}
	return t, nil
}
