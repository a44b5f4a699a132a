package repo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID        uuid.UUID       `db:"id"`
	Code      string          `db:"code"`
	Name      string          `db:"name"`
	Category  ProductCategory `db:"category"`
	Supplier  string          `db:"supplier"`
	Stock     int             `db:"stock"`
	Price     decimal.Decimal `db:"price"`
	Status    ProductStatus   `db:"status"`
	Type      ProductType     `db:"type"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

type Patient struct {
	ID        uuid.UUID     `db:"id"`
	Name      string        `db:"name"`
	Email     string        `db:"email"`
	Phone     string        `db:"phone"`
	Status    PatientStatus `db:"status"`
	Address   string        `db:"address"`
	Notes     string        `db:"notes"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

// PurchaseHistory is a patient purchase recorded by hand, independent of sales.
type PurchaseHistory struct {
	ID          uuid.UUID       `db:"id"`
	PatientID   uuid.UUID       `db:"patient_id"`
	ProductID   uuid.UUID       `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	Price       decimal.Decimal `db:"price"`
	Date        time.Time       `db:"date"`
	Notes       string          `db:"notes"`
}

type Appointment struct {
	ID          uuid.UUID         `db:"id"`
	PatientID   uuid.UUID         `db:"patient_id"`
	PatientName string            `db:"patient_name"`
	Date        string            `db:"date"` // YYYY-MM-DD
	Time        string            `db:"time"` // HH:MM
	Type        AppointmentType   `db:"type"`
	Doctor      string            `db:"doctor"`
	Status      AppointmentStatus `db:"status"`
	Notes       string            `db:"notes"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
}

type Sale struct {
	ID          uuid.UUID       `db:"id"`
	OrderNumber string          `db:"order_number"`
	PatientID   uuid.UUID       `db:"patient_id"`
	PatientName string          `db:"patient_name"`
	Status      SaleStatus      `db:"status"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Notes       string          `db:"notes"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`

	Items []SaleItem `db:"-"`
}

type SaleItem struct {
	ID          uuid.UUID       `db:"id"`
	SaleID      uuid.UUID       `db:"sale_id"`
	ProductID   uuid.UUID       `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	TotalPrice  decimal.Decimal `db:"total_price"`
}

type Purchase struct {
	ID             uuid.UUID       `db:"id"`
	PurchaseNumber string          `db:"purchase_number"`
	Supplier       string          `db:"supplier"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	Status         PurchaseStatus  `db:"status"`
	Notes          string          `db:"notes"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`

	Items []PurchaseItem `db:"-"`
}

type PurchaseItem struct {
	ID          uuid.UUID       `db:"id"`
	PurchaseID  uuid.UUID       `db:"purchase_id"`
	ProductID   uuid.UUID       `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	UnitCost    decimal.Decimal `db:"unit_cost"`
	TotalCost   decimal.Decimal `db:"total_cost"`
}
