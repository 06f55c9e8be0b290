package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"patient-record-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const patientColumns = "id, name, birth_date, email, address, created_at, updated_at"

type PostgresPatientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) *PostgresPatientRepository {
	return &PostgresPatientRepository{
		db,
	}
}

func scanPatient(row interface{ Scan(...interface{}) error }) (*domain.Patient, error) {
	patient := &domain.Patient{}
	var birthDate time.Time
	err := row.Scan(
		&patient.ID,
		&patient.Name,
		&birthDate,
		&patient.Email,
		&patient.Address,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	patient.BirthDate = birthDate.Format(domain.BirthDateLayout)
	return patient, nil
}

func (r *PostgresPatientRepository) Create(ctx context.Context, patient *domain.Patient) (*domain.Patient, error) {
	query := `INSERT INTO patients (name, birth_date, email, address)
    VALUES ($1, $2, $3, $4)
    RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, patient.Name, patient.BirthDate, patient.Email, patient.Address).Scan(
		&patient.ID,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return nil, domain.ErrEmailAlreadyExists
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			default:
				return nil, err
			}
		}
		return nil, err
	}
	return patient, nil
}

func (r *PostgresPatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}

	return patient, nil
}

func (r *PostgresPatientRepository) GetByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE email = LOWER($1)`

	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return patient, nil
}

func (r *PostgresPatientRepository) List(ctx context.Context, opts domain.ListPatientsOptions) (*domain.PagedPatients, error) {
	page, limit := normalizePage(opts.Page, opts.Limit)
	where, args := buildListFilter(opts)

	var total int
	countQuery := `SELECT COUNT(*) FROM patients` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	args = append(args, limit, (page-1)*limit)
	listQuery := fmt.Sprintf(
		`SELECT %s FROM patients%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		patientColumns, where, sortClause(opts.SortBy, opts.SortOrder), len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := make([]*domain.Patient, 0)
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, patient)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.PagedPatients{
		Patients:   patients,
		Pagination: domain.NewPagination(page, limit, total),
	}, nil
}

func (r *PostgresPatientRepository) Update(ctx context.Context, id uuid.UUID, cmd *domain.UpdatePatientCommand) (*domain.Patient, error) {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)

	if cmd.Name != nil {
		args = append(args, *cmd.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if cmd.BirthDate != nil {
		args = append(args, *cmd.BirthDate)
		sets = append(sets, fmt.Sprintf("birth_date = $%d", len(args)))
	}
	if cmd.Email != nil {
		args = append(args, *cmd.Email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}
	if cmd.Address != nil {
		args = append(args, *cmd.Address)
		sets = append(sets, fmt.Sprintf("address = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil, domain.ErrNoFieldsToUpdate
	}

	// updated_at is also stamped by the row trigger.
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE patients SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), patientColumns,
	)

	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, domain.ErrPatientNotFound
	}
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("error updating patient: %w", err)
	}
	return patient, nil
}

func (r *PostgresPatientRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM patients WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *PostgresPatientRepository) All(ctx context.Context) ([]*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := make([]*domain.Patient, 0)
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, patient)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return patients, nil
}

func (r *PostgresPatientRepository) Stats(ctx context.Context) (*domain.AgeGroupStats, error) {
	query := fmt.Sprintf(`SELECT
        COUNT(*),
        COUNT(*) FILTER (WHERE %[1]s < 18),
        COUNT(*) FILTER (WHERE %[1]s BETWEEN 18 AND 64),
        COUNT(*) FILTER (WHERE %[1]s >= 65),
        COALESCE(ROUND(AVG(%[1]s)::numeric, 1), 0)
    FROM patients`, ageExpr)

	stats := &domain.AgeGroupStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.Total,
		&stats.Minors,
		&stats.Adults,
		&stats.Seniors,
		&stats.AverageAge,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
