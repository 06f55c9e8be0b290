package ports

import (
	"context"

	"patient-record-service/internal/core/domain"

	"github.com/google/uuid"
)

type PatientRepository interface {
	// Create persists a new patient and returns it with generated fields.
	// Returns domain.ErrEmailAlreadyExists on a unique-constraint violation.
	Create(ctx context.Context, patient *domain.Patient) (*domain.Patient, error)

	// GetByID returns domain.ErrPatientNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Patient, error)

	// GetByEmail looks up by normalized lowercase email. A missing row is
	// (nil, nil), not an error; callers decide what absence means.
	GetByEmail(ctx context.Context, email string) (*domain.Patient, error)

	// List returns one page of the filtered set plus a pagination descriptor.
	List(ctx context.Context, opts domain.ListPatientsOptions) (*domain.PagedPatients, error)

	// Update applies a partial update. Returns domain.ErrPatientNotFound when
	// the id does not exist and domain.ErrEmailAlreadyExists on collisions.
	Update(ctx context.Context, id uuid.UUID, cmd *domain.UpdatePatientCommand) (*domain.Patient, error)

	// Delete hard-deletes and reports whether a row was actually removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// All returns every patient ordered by creation time, for export.
	All(ctx context.Context) ([]*domain.Patient, error)

	// Stats computes the age-group aggregate in a single query.
	Stats(ctx context.Context) (*domain.AgeGroupStats, error)
}

type PatientService interface {
	CreatePatient(ctx context.Context, patient *domain.Patient) (*domain.Patient, error)
	GetPatient(ctx context.Context, id string) (*domain.Patient, error)
	ListPatients(ctx context.Context, opts domain.ListPatientsOptions) (*domain.PagedPatients, error)
	UpdatePatient(ctx context.Context, id string, cmd *domain.UpdatePatientCommand) (*domain.Patient, error)
	DeletePatient(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*domain.PatientStats, error)
	ExportPatients(ctx context.Context) ([]*domain.Patient, error)
	BulkCreatePatients(ctx context.Context, patients []*domain.Patient) *domain.BulkCreateReport
}
