package patient

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/validate"
)

// RecentHistoryLimit is how many purchases a patient summary embeds.
const RecentHistoryLimit = 5

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Config struct {
	// PhoneRegion is the ISO region assumed for numbers without a country code.
	PhoneRegion string
}

type CreateRequest struct {
	Name    string
	Email   string
	Phone   string
	Status  string // defaults to activo
	Address string
	Notes   string
}

type UpdateRequest struct {
	Name    *string
	Email   *string
	Phone   *string
	Status  *string
	Address *string
	Notes   *string
}

type ListRequest struct {
	Search string
	Status string
	Page   repo.Page
}

// Summary is a patient with the head of their purchase history.
type Summary struct {
	repo.Patient
	RecentHistory  []repo.PurchaseHistory
	TotalPurchases int
}

type ListResult struct {
	Patients []Summary
	Page     repo.PageInfo
}

type AddHistoryRequest struct {
	ProductID uuid.UUID
	Quantity  int
	Price     *decimal.Decimal // defaults to the product price
	Date      *time.Time       // defaults to now
	Notes     string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*repo.Patient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Summary, error)
	List(ctx context.Context, req ListRequest) (*ListResult, error)
	All(ctx context.Context, req ListRequest) ([]Summary, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Purchase history
	ListHistory(ctx context.Context, patientID uuid.UUID) ([]repo.PurchaseHistory, error)
	AddHistory(ctx context.Context, patientID uuid.UUID, req AddHistoryRequest) (*repo.PurchaseHistory, error)
	DeleteHistory(ctx context.Context, patientID, historyID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type patientService struct {
	db     *repo.Client
	region string
}

func New(db *repo.Client, cfg Config) Service {
	region := strings.ToUpper(cfg.PhoneRegion)
	if region == "" {
		region = "CL"
	}
	return &patientService{db: db, region: region}
}

func normalizeEmail(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "", validate.Invalid("email", "es obligatorio")
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return "", validate.Invalid("email", "no es una dirección válida")
	}
	if len(v) > 254 {
		return "", validate.Invalid("email", "no puede superar 254 caracteres")
	}
	return v, nil
}

// normalizePhone stores numbers in E.164 so search and display agree.
func (s *patientService) normalizePhone(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", validate.Invalid("phone", "es obligatorio")
	}
	num, err := phonenumbers.Parse(v, s.region)
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return "", validate.Invalid("phone", "no es un número válido")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func (s *patientService) Create(ctx context.Context, req CreateRequest) (*repo.Patient, error) {
	p := &repo.Patient{}
	var err error

	if p.Name, err = validate.Required("name", req.Name, 200); err != nil {
		return nil, err
	}
	if p.Email, err = normalizeEmail(req.Email); err != nil {
		return nil, err
	}
	if p.Phone, err = s.normalizePhone(req.Phone); err != nil {
		return nil, err
	}
	if p.Status, err = validate.Enum("status", req.Status, repo.PatientStatusActive); err != nil {
		return nil, err
	}
	if p.Address, err = validate.Optional("address", req.Address, 0); err != nil {
		return nil, err
	}
	if p.Notes, err = validate.Optional("notes", req.Notes, 0); err != nil {
		return nil, err
	}

	taken, err := s.db.Patient.EmailTaken(ctx, p.Email, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	if err := s.db.Patient.Create(ctx, p); err != nil {
		// lost a race with a concurrent create
		if repo.IsConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

func (s *patientService) get(ctx context.Context, id uuid.UUID) (*repo.Patient, error) {
	p, err := s.db.Patient.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (s *patientService) GetByID(ctx context.Context, id uuid.UUID) (*Summary, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize(ctx, []repo.Patient{*p}, true)
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

func (req ListRequest) filter() (repo.PatientFilter, error) {
	status, err := validate.EnumFilter[repo.PatientStatus]("status", req.Status)
	if err != nil {
		return repo.PatientFilter{}, err
	}
	return repo.PatientFilter{Search: req.Search, Status: status}, nil
}

func (s *patientService) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	f, err := req.filter()
	if err != nil {
		return nil, err
	}

	patients, info, err := s.db.Patient.List(ctx, f, req.Page)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	summaries, err := s.summarize(ctx, patients, true)
	if err != nil {
		return nil, err
	}
	return &ListResult{Patients: summaries, Page: info}, nil
}

// All returns every matching patient with purchase counts but no history rows.
func (s *patientService) All(ctx context.Context, req ListRequest) ([]Summary, error) {
	f, err := req.filter()
	if err != nil {
		return nil, err
	}
	patients, err := s.db.Patient.All(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return s.summarize(ctx, patients, false)
}

func (s *patientService) summarize(ctx context.Context, patients []repo.Patient, withHistory bool) ([]Summary, error) {
	ids := make([]uuid.UUID, len(patients))
	for i, p := range patients {
		ids[i] = p.ID
	}
	counts, err := s.db.PurchaseHistory.CountByPatients(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count purchase history: %w", err)
	}

	out := make([]Summary, len(patients))
	for i, p := range patients {
		out[i] = Summary{Patient: p, TotalPurchases: counts[p.ID], RecentHistory: []repo.PurchaseHistory{}}
		if !withHistory || counts[p.ID] == 0 {
			continue
		}
		recent, err := s.db.PurchaseHistory.ListByPatient(ctx, p.ID, RecentHistoryLimit)
		if err != nil {
			return nil, fmt.Errorf("list purchase history: %w", err)
		}
		out[i].RecentHistory = recent
	}
	return out, nil
}

func (s *patientService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Patient, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if p.Name, err = validate.Required("name", *req.Name, 200); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if p.Email, err = normalizeEmail(*req.Email); err != nil {
			return nil, err
		}
		taken, err := s.db.Patient.EmailTaken(ctx, p.Email, p.ID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}
	if req.Phone != nil {
		if p.Phone, err = s.normalizePhone(*req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if p.Status, err = validate.Enum("status", *req.Status, p.Status); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		p.Address = strings.TrimSpace(*req.Address)
	}
	if req.Notes != nil {
		p.Notes = strings.TrimSpace(*req.Notes)
	}

	if err := s.db.Patient.Update(ctx, p); err != nil {
		switch {
		case repo.IsNotFound(err):
			return nil, ErrNotFound
		case repo.IsConstraintError(err):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

func (s *patientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.Patient.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Purchase history
// ---------------------------------------------------------------------------

func (s *patientService) ListHistory(ctx context.Context, patientID uuid.UUID) ([]repo.PurchaseHistory, error) {
	if _, err := s.get(ctx, patientID); err != nil {
		return nil, err
	}
	entries, err := s.db.PurchaseHistory.ListByPatient(ctx, patientID, 0)
	if err != nil {
		return nil, fmt.Errorf("list purchase history: %w", err)
	}
	return entries, nil
}

func (s *patientService) AddHistory(ctx context.Context, patientID uuid.UUID, req AddHistoryRequest) (*repo.PurchaseHistory, error) {
	if _, err := s.get(ctx, patientID); err != nil {
		return nil, err
	}
	if req.ProductID == uuid.Nil {
		return nil, validate.Invalid("product_id", "es obligatorio")
	}
	product, err := s.db.Product.Get(ctx, req.ProductID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	h := &repo.PurchaseHistory{PatientID: patientID, ProductID: product.ID, ProductName: product.Name}
	if h.Quantity, err = validate.Quantity("quantity", req.Quantity); err != nil {
		return nil, err
	}
	h.Price = product.Price
	if req.Price != nil {
		if h.Price, err = validate.Money("price", *req.Price); err != nil {
			return nil, err
		}
	}
	if req.Date != nil {
		h.Date = *req.Date
	}
	if h.Notes, err = validate.Optional("notes", req.Notes, 0); err != nil {
		return nil, err
	}

	if err := s.db.PurchaseHistory.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("create purchase history: %w", err)
	}
	return h, nil
}

func (s *patientService) DeleteHistory(ctx context.Context, patientID, historyID uuid.UUID) error {
	if err := s.db.PurchaseHistory.Delete(ctx, patientID, historyID); err != nil {
		if repo.IsNotFound(err) {
			return ErrHistoryNotFound
		}
		return fmt.Errorf("delete purchase history: %w", err)
	}
	return nil
}
