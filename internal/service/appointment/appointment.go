package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/service/validate"
	"github.com/Alijeyrad/optica_backend/pkg/constants"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	PatientID uuid.UUID
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Type      string
	Doctor    string // defaults to constants.DefaultDoctor
	Status    string // defaults to pendiente
	Notes     string
}

type UpdateRequest struct {
	PatientID *uuid.UUID
	Date      *string
	Time      *string
	Type      *string
	Doctor    *string
	Status    *string
	Notes     *string
}

type ListRequest struct {
	Search    string
	Status    string
	Type      string
	PatientID uuid.UUID
	Date      string
	DateFrom  string
	DateTo    string
	Page      repo.Page
}

type ListResult struct {
	Appointments []repo.Appointment
	Page         repo.PageInfo
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*repo.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Appointment, error)
	List(ctx context.Context, req ListRequest) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	db *repo.Client
}

func New(db *repo.Client) Service {
	return &appointmentService{db: db}
}

// patientName resolves the patient so the response carries the name.
func (s *appointmentService) patientName(ctx context.Context, id uuid.UUID) (string, error) {
	if id == uuid.Nil {
		return "", validate.Invalid("patient_id", "es obligatorio")
	}
	p, err := s.db.Patient.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return "", ErrPatientNotFound
		}
		return "", fmt.Errorf("get patient: %w", err)
	}
	return p.Name, nil
}

func (s *appointmentService) Create(ctx context.Context, req CreateRequest) (*repo.Appointment, error) {
	a := &repo.Appointment{PatientID: req.PatientID}
	var err error

	if a.Date, err = validate.Date("date", req.Date); err != nil {
		return nil, err
	}
	if a.Time, err = validate.Clock("time", req.Time); err != nil {
		return nil, err
	}
	if a.Type, err = validate.Enum[repo.AppointmentType]("type", req.Type, ""); err != nil {
		return nil, err
	}
	if a.Status, err = validate.Enum("status", req.Status, repo.AppointmentStatusPending); err != nil {
		return nil, err
	}
	if a.Doctor, err = validate.Optional("doctor", req.Doctor, 100); err != nil {
		return nil, err
	}
	if a.Doctor == "" {
		a.Doctor = constants.DefaultDoctor
	}
	if a.Notes, err = validate.Optional("notes", req.Notes, 0); err != nil {
		return nil, err
	}
	if a.PatientName, err = s.patientName(ctx, req.PatientID); err != nil {
		return nil, err
	}

	if err := s.db.Appointment.Create(ctx, a); err != nil {
		if repo.IsConstraintError(err) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return a, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id uuid.UUID) (*repo.Appointment, error) {
	a, err := s.db.Appointment.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (s *appointmentService) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	f := repo.AppointmentFilter{Search: req.Search, PatientID: req.PatientID}
	var err error

	if f.Status, err = validate.EnumFilter[repo.AppointmentStatus]("status", req.Status); err != nil {
		return nil, err
	}
	if f.Type, err = validate.EnumFilter[repo.AppointmentType]("type", req.Type); err != nil {
		return nil, err
	}
	for _, d := range []struct {
		field string
		in    string
		out   *string
	}{
		{"date", req.Date, &f.Date},
		{"date_from", req.DateFrom, &f.DateFrom},
		{"date_to", req.DateTo, &f.DateTo},
	} {
		if d.in == "" {
			continue
		}
		if *d.out, err = validate.Date(d.field, d.in); err != nil {
			return nil, err
		}
	}

	appointments, info, err := s.db.Appointment.List(ctx, f, req.Page)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return &ListResult{Appointments: appointments, Page: info}, nil
}

func (s *appointmentService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*repo.Appointment, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PatientID != nil && *req.PatientID != a.PatientID {
		if a.PatientName, err = s.patientName(ctx, *req.PatientID); err != nil {
			return nil, err
		}
		a.PatientID = *req.PatientID
	}
	if req.Date != nil {
		if a.Date, err = validate.Date("date", *req.Date); err != nil {
			return nil, err
		}
	}
	if req.Time != nil {
		if a.Time, err = validate.Clock("time", *req.Time); err != nil {
			return nil, err
		}
	}
	if req.Type != nil {
		if a.Type, err = validate.Enum("type", *req.Type, a.Type); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if a.Status, err = validate.Enum("status", *req.Status, a.Status); err != nil {
			return nil, err
		}
	}
	if req.Doctor != nil {
		if a.Doctor, err = validate.Optional("doctor", *req.Doctor, 100); err != nil {
			return nil, err
		}
		if a.Doctor == "" {
			a.Doctor = constants.DefaultDoctor
		}
	}
	if req.Notes != nil {
		if a.Notes, err = validate.Optional("notes", *req.Notes, 0); err != nil {
			return nil, err
		}
	}

	if err := s.db.Appointment.Update(ctx, a); err != nil {
		switch {
		case repo.IsNotFound(err):
			return nil, ErrNotFound
		case repo.IsConstraintError(err):
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return a, nil
}

func (s *appointmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.Appointment.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}
