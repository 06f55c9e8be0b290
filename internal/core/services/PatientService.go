package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"patient-record-service/internal/core/domain"
	"patient-record-service/internal/core/ports"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxPlausibleAge = 150

type PatientService struct {
	repo     ports.PatientRepository
	logger   ports.LoggerPort
	validate *validator.Validate
	cache    ports.CachePort
}

func NewPatientService(
	repo ports.PatientRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,

) *PatientService {
	return &PatientService{
		repo:     repo,
		logger:   logger,
		validate: validate,
		cache:    cache,
	}
}

func (ps *PatientService) CreatePatient(ctx context.Context, patient *domain.Patient) (*domain.Patient, error) {
	patient.Normalize()

	if err := ps.validatePatient(patient); err != nil {
		ps.logger.Error("Validation failed", map[string]interface{}{
			"error":  err.Error(),
			"method": "CreatePatient",
		})
		return nil, err
	}

	// Uniqueness pre-check goes through the repository, never the cache: a
	// stale cache entry must not decide a uniqueness question. The unique
	// constraint on patients.email remains the actual guarantee.
	existing, err := ps.repo.GetByEmail(ctx, patient.Email)
	if err != nil {
		ps.logger.Error("Failed email uniqueness check", map[string]interface{}{
			"error":  err.Error(),
			"method": "CreatePatient",
		})
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	patient, err = ps.repo.Create(ctx, patient)
	if err != nil {
		ps.logger.Error("Failed to create patient in database", map[string]interface{}{
			"error":  err.Error(),
			"method": "CreatePatient",
		})
		return nil, err
	}

	ps.cachePatient(patient)
	ps.invalidateListCaches()

	ps.logger.Info("Patient created", map[string]interface{}{
		"id":    patient.ID.String(),
		"email": patient.Email,
	})
	return patient, nil
}

func (ps *PatientService) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	patientID, err := uuid.Parse(id)
	if err != nil {
		ps.logger.Error("Invalid UUID format", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return nil, domain.ErrInvalidPatientID
	}

	cacheKey := patientCacheKey(id)
	cachedData, err := ps.cache.Get(cacheKey)
	if err == nil {
		var cachedPatient domain.Patient
		if err := json.Unmarshal(cachedData, &cachedPatient); err == nil {
			ps.logger.Debug("Patient found in cache", map[string]interface{}{
				"id": id,
			})
			return &cachedPatient, nil
		}
	}

	patient, err := ps.repo.GetByID(ctx, patientID)
	if err != nil {
		ps.logger.Error("Failed to get patient", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return nil, err
	}

	ps.cachePatient(patient)

	return patient, nil
}

func (ps *PatientService) ListPatients(ctx context.Context, opts domain.ListPatientsOptions) (*domain.PagedPatients, error) {
	cacheKey := listCacheKey(opts)
	cachedData, err := ps.cache.Get(cacheKey)
	if err == nil {
		var cachedPage domain.PagedPatients
		if err := json.Unmarshal(cachedData, &cachedPage); err == nil {
			ps.logger.Debug("Patient list found in cache", map[string]interface{}{
				"key": cacheKey,
			})
			return &cachedPage, nil
		}
	}

	page, err := ps.repo.List(ctx, opts)
	if err != nil {
		ps.logger.Error("Failed to list patients", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	if pageData, err := json.Marshal(page); err == nil {
		if err := ps.cache.Set(cacheKey, pageData, listTTL); err != nil {
			ps.logger.Warn("Failed to cache patient list", map[string]interface{}{
				"error": err.Error(),
				"key":   cacheKey,
			})
		}
	}

	return page, nil
}

func (ps *PatientService) UpdatePatient(ctx context.Context, id string, cmd *domain.UpdatePatientCommand) (*domain.Patient, error) {
	patientID, err := uuid.Parse(id)
	if err != nil {
		ps.logger.Error("Invalid UUID format", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return nil, domain.ErrInvalidPatientID
	}

	if cmd.Empty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	cmd.Normalize()

	if err := ps.validateUpdate(cmd); err != nil {
		ps.logger.Error("Validation failed", map[string]interface{}{
			"error":  err.Error(),
			"method": "UpdatePatient",
		})
		return nil, err
	}

	current, err := ps.repo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if cmd.Email != nil && *cmd.Email != current.Email {
		existing, err := ps.repo.GetByEmail(ctx, *cmd.Email)
		if err != nil {
			ps.logger.Error("Failed email uniqueness check", map[string]interface{}{
				"error":  err.Error(),
				"method": "UpdatePatient",
			})
			return nil, err
		}
		if existing != nil && existing.ID != patientID {
			return nil, domain.ErrEmailAlreadyExists
		}
	}

	updated, err := ps.repo.Update(ctx, patientID, cmd)
	if err != nil {
		ps.logger.Error("Failed to update patient", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return nil, err
	}

	ps.cachePatient(updated)
	ps.invalidateListCaches()

	ps.logger.Info("Patient updated", map[string]interface{}{
		"id": id,
	})
	return updated, nil
}

func (ps *PatientService) DeletePatient(ctx context.Context, id string) error {
	patientID, err := uuid.Parse(id)
	if err != nil {
		ps.logger.Error("Invalid UUID format", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return domain.ErrInvalidPatientID
	}

	removed, err := ps.repo.Delete(ctx, patientID)
	if err != nil {
		ps.logger.Error("Failed to delete patient", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return err
	}
	if !removed {
		return domain.ErrPatientNotFound
	}

	if err := ps.cache.Delete(patientCacheKey(id)); err != nil {
		ps.logger.Warn("Failed to invalidate patient cache", map[string]interface{}{
			"error": err.Error(),
			"id":    id,
		})
	}
	ps.invalidateListCaches()

	ps.logger.Info("Patient deleted", map[string]interface{}{
		"id": id,
	})
	return nil
}

func (ps *PatientService) GetStats(ctx context.Context) (*domain.PatientStats, error) {
	cachedData, err := ps.cache.Get(statsCacheKey)
	if err == nil {
		var cachedStats domain.PatientStats
		if err := json.Unmarshal(cachedData, &cachedStats); err == nil {
			return &cachedStats, nil
		}
	}

	aggregate, err := ps.repo.Stats(ctx)
	if err != nil {
		ps.logger.Error("Failed to compute patient stats", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	stats := &domain.PatientStats{
		AgeGroupStats: *aggregate,
		Percentages:   percentages(aggregate),
	}

	if statsData, err := json.Marshal(stats); err == nil {
		if err := ps.cache.Set(statsCacheKey, statsData, statsTTL); err != nil {
			ps.logger.Warn("Failed to cache patient stats", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return stats, nil
}

func (ps *PatientService) ExportPatients(ctx context.Context) ([]*domain.Patient, error) {
	patients, err := ps.repo.All(ctx)
	if err != nil {
		ps.logger.Error("Failed to export patients", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return patients, nil
}

// BulkCreatePatients applies CreatePatient per element: each failure is
// recorded with its index and the rest of the batch proceeds.
func (ps *PatientService) BulkCreatePatients(ctx context.Context, patients []*domain.Patient) *domain.BulkCreateReport {
	report := &domain.BulkCreateReport{
		Total:   len(patients),
		Results: make([]*domain.Patient, 0, len(patients)),
		Errors:  make([]domain.BulkCreateError, 0),
	}

	for i, patient := range patients {
		created, err := ps.CreatePatient(ctx, patient)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, domain.BulkCreateError{
				Index: i,
				Email: patient.Email,
				Error: err.Error(),
			})
			continue
		}
		report.Created++
		report.Results = append(report.Results, created)
	}

	return report
}

// cachePatient writes the single-entry key. Cache failures are logged and
// swallowed; the cache is best-effort.
func (ps *PatientService) cachePatient(patient *domain.Patient) {
	patientData, err := json.Marshal(patient)
	if err != nil {
		ps.logger.Warn("Failed to marshal patient for cache", map[string]interface{}{
			"error": err.Error(),
			"id":    patient.ID.String(),
		})
		return
	}
	if err := ps.cache.Set(patientCacheKey(patient.ID.String()), patientData, patientTTL); err != nil {
		ps.logger.Warn("Failed to cache patient", map[string]interface{}{
			"error": err.Error(),
			"id":    patient.ID.String(),
		})
	}
}

// invalidateListCaches drops every cached list query and the stats entry.
// Intentionally coarse: writes are rare on administrative data.
func (ps *PatientService) invalidateListCaches() {
	if err := ps.cache.DeleteByPrefix(listKeyPrefix); err != nil {
		ps.logger.Warn("Failed to invalidate list caches", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := ps.cache.Delete(statsCacheKey); err != nil {
		ps.logger.Warn("Failed to invalidate stats cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (ps *PatientService) validatePatient(patient *domain.Patient) error {
	if err := ps.validate.Struct(patient); err != nil {
		return fmt.Errorf("validation failed: %s", err.Error())
	}
	return ps.checkBirthDate(patient.BirthDate)
}

// validateUpdate mirrors the create-path rules for the fields present.
// Lengths count runes, matching the validator's min/max semantics.
func (ps *PatientService) validateUpdate(cmd *domain.UpdatePatientCommand) error {
	if cmd.Name != nil && utf8.RuneCountInString(*cmd.Name) < 2 {
		return domain.ErrNameTooShort
	}
	if cmd.Address != nil && utf8.RuneCountInString(*cmd.Address) < 10 {
		return domain.ErrAddressTooShort
	}
	if cmd.Email != nil {
		if err := ps.validate.Var(*cmd.Email, "required,email"); err != nil {
			return fmt.Errorf("validation failed: %s", err.Error())
		}
	}
	if cmd.BirthDate != nil {
		return ps.checkBirthDate(*cmd.BirthDate)
	}
	return nil
}

func (ps *PatientService) checkBirthDate(birthDate string) error {
	birth, err := time.Parse(domain.BirthDateLayout, birthDate)
	if err != nil {
		return fmt.Errorf("invalid date format")
	}

	now := time.Now()
	if birth.After(now) {
		return domain.ErrInvalidBirthDate
	}
	if domain.AgeAt(birth, now) > maxPlausibleAge {
		return domain.ErrImplausibleAge
	}
	return nil
}

func percentages(stats *domain.AgeGroupStats) domain.StatsPercentages {
	if stats.Total == 0 {
		return domain.StatsPercentages{}
	}
	return domain.StatsPercentages{
		Minors:  round1(float64(stats.Minors) / float64(stats.Total) * 100),
		Adults:  round1(float64(stats.Adults) / float64(stats.Total) * 100),
		Seniors: round1(float64(stats.Seniors) / float64(stats.Total) * 100),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var _ ports.PatientService = (*PatientService)(nil)
