package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/consignment"
	"github.com/Alijeyrad/optica_backend/internal/service/patient"
	"github.com/Alijeyrad/optica_backend/internal/service/validate"
)

// money renders a decimal as a JSON number with two decimals.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type productView struct {
	ID        uuid.UUID   `json:"id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Supplier  string      `json:"supplier"`
	Stock     int         `json:"stock"`
	Price     json.Number `json:"price"`
	Status    string      `json:"status"`
	Type      string      `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func newProductView(p repo.Product) productView {
	return productView{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Category:  p.Category.Label(),
		Supplier:  p.Supplier,
		Stock:     p.Stock,
		Price:     money(p.Price),
		Status:    p.Status.Label(),
		Type:      p.Type.Label(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type historyView struct {
	ID        uuid.UUID   `json:"id"`
	ProductID uuid.UUID   `json:"product_id"`
	Product   string      `json:"product"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
	Date      time.Time   `json:"date"`
	Notes     string      `json:"notes"`
}

func newHistoryViews(entries []repo.PurchaseHistory) []historyView {
	out := make([]historyView, len(entries))
	for i, h := range entries {
		out[i] = historyView{
			ID:        h.ID,
			ProductID: h.ProductID,
			Product:   h.ProductName,
			Quantity:  h.Quantity,
			Price:     money(h.Price),
			Date:      h.Date,
			Notes:     h.Notes,
		}
	}
	return out
}

type patientView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newPatientView(p repo.Patient) patientView {
	return patientView{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Status:    p.Status.Label(),
		Address:   p.Address,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type patientSummaryView struct {
	patientView
	PurchaseHistory []historyView `json:"purchase_history"`
	TotalPurchases  int           `json:"total_purchases"`
}

func newPatientSummaryView(s patient.Summary) patientSummaryView {
	return patientSummaryView{
		patientView:     newPatientView(s.Patient),
		PurchaseHistory: newHistoryViews(s.RecentHistory),
		TotalPurchases:  s.TotalPurchases,
	}
}

type appointmentView struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	Patient   string    `json:"patient"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Type      string    `json:"type"`
	Doctor    string    `json:"doctor"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newAppointmentView(a repo.Appointment) appointmentView {
	return appointmentView{
		ID:        a.ID,
		PatientID: a.PatientID,
		Patient:   a.PatientName,
		Date:      a.Date,
		Time:      a.Time,
		Type:      a.Type.Label(),
		Doctor:    a.Doctor,
		Status:    a.Status.Label(),
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type saleItemView struct {
	ID         uuid.UUID   `json:"id"`
	ProductID  uuid.UUID   `json:"product_id"`
	Product    string      `json:"product"`
	Quantity   int         `json:"quantity"`
	UnitPrice  json.Number `json:"unit_price"`
	TotalPrice json.Number `json:"total_price"`
}

type saleView struct {
	ID          uuid.UUID      `json:"id"`
	OrderNumber string         `json:"order_number"`
	PatientID   uuid.UUID      `json:"patient_id"`
	Customer    string         `json:"customer"`
	Status      string         `json:"status"`
	TotalAmount json.Number    `json:"total_amount"`
	Notes       string         `json:"notes"`
	Date        string         `json:"date"`
	Items       []saleItemView `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func newSaleView(s repo.Sale, loc *time.Location) saleView {
	items := make([]saleItemView, len(s.Items))
	for i, it := range s.Items {
		items[i] = saleItemView{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Product:    it.ProductName,
			Quantity:   it.Quantity,
			UnitPrice:  money(it.UnitPrice),
			TotalPrice: money(it.TotalPrice),
		}
	}
	return saleView{
		ID:          s.ID,
		OrderNumber: s.OrderNumber,
		PatientID:   s.PatientID,
		Customer:    s.PatientName,
		Status:      s.Status.Label(),
		TotalAmount: money(s.TotalAmount),
		Notes:       s.Notes,
		Date:        s.CreatedAt.In(loc).Format(validate.DateLayout),
		Items:       items,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type purchaseItemView struct {
	ID        uuid.UUID   `json:"id"`
	ProductID uuid.UUID   `json:"product_id"`
	Product   string      `json:"product"`
	Quantity  int         `json:"quantity"`
	UnitCost  json.Number `json:"unit_cost"`
	TotalCost json.Number `json:"total_cost"`
}

type purchaseView struct {
	ID             uuid.UUID          `json:"id"`
	PurchaseNumber string             `json:"purchase_number"`
	Supplier       string             `json:"supplier"`
	TotalAmount    json.Number        `json:"total_amount"`
	Status         string             `json:"status"`
	Notes          string             `json:"notes"`
	Date           string             `json:"date"`
	Items          []purchaseItemView `json:"items"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func newPurchaseView(p repo.Purchase, loc *time.Location) purchaseView {
	items := make([]purchaseItemView, len(p.Items))
	for i, it := range p.Items {
		items[i] = purchaseItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			Product:   it.ProductName,
			Quantity:  it.Quantity,
			UnitCost:  money(it.UnitCost),
			TotalCost: money(it.TotalCost),
		}
	}
	return purchaseView{
		ID:             p.ID,
		PurchaseNumber: p.PurchaseNumber,
		Supplier:       p.Supplier,
		TotalAmount:    money(p.TotalAmount),
		Status:         p.Status.Label(),
		Notes:          p.Notes,
		Date:           p.CreatedAt.In(loc).Format(validate.DateLayout),
		Items:          items,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type consignmentView struct {
	ID        uuid.UUID   `json:"id"`
	Code      string      `json:"code"`
	Supplier  string      `json:"supplier"`
	Product   string      `json:"product"`
	Category  string      `json:"category"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

func newConsignmentView(c consignment.Consignment) consignmentView {
	return consignmentView{
		ID:        c.ID,
		Code:      c.Code,
		Supplier:  c.Supplier,
		Product:   c.Name,
		Category:  c.Category.Label(),
		Quantity:  c.Stock,
		Price:     money(c.Price),
		Status:    string(c.State),
		CreatedAt: c.CreatedAt,
	}
}
