package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BirthDateLayout is the wire format for patient birth dates.
const BirthDateLayout = "2006-01-02"

// swagger:model domain.Patient
type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" validate:"required,min=2,max=100"`
	BirthDate string    `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Email     string    `json:"email" validate:"required,email"`
	Address   string    `json:"address" validate:"required,min=10"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Age derives the patient's age in whole years from BirthDate at the current
// wall clock. Age is never persisted.
func (p *Patient) Age() int {
	birth, err := time.Parse(BirthDateLayout, p.BirthDate)
	if err != nil {
		return 0
	}
	return AgeAt(birth, time.Now())
}

// AgeAt computes the age in whole years at asOf. It decrements by one until
// the birthday anniversary has passed and never goes negative.
func AgeAt(birth, asOf time.Time) int {
	years := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() ||
		(asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Normalize trims free-text fields and lowercases the email so that all
// comparisons and persisted values use the canonical form.
func (p *Patient) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Address = strings.TrimSpace(p.Address)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
}

// UpdatePatientCommand carries a partial update. Nil fields are left
// untouched; updated_at is always refreshed by the store.
type UpdatePatientCommand struct {
	Name      *string `json:"name,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
	Email     *string `json:"email,omitempty"`
	Address   *string `json:"address,omitempty"`
}

// Empty reports whether the command touches no field at all.
func (c *UpdatePatientCommand) Empty() bool {
	return c.Name == nil && c.BirthDate == nil && c.Email == nil && c.Address == nil
}

// Normalize applies the same canonicalization as Patient.Normalize to the
// fields that are present.
func (c *UpdatePatientCommand) Normalize() {
	if c.Name != nil {
		trimmed := strings.TrimSpace(*c.Name)
		c.Name = &trimmed
	}
	if c.Address != nil {
		trimmed := strings.TrimSpace(*c.Address)
		c.Address = &trimmed
	}
	if c.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*c.Email))
		c.Email = &lowered
	}
}

// ListPatientsOptions defines filtering, sorting and pagination for list
// queries. All present filters are ANDed together.
type ListPatientsOptions struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
	MinAge    *int
	MaxAge    *int
}

// Pagination describes the position of one page within the filtered set.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPagination derives the full descriptor from page, limit and the total
// match count. A page beyond the last one is still a valid descriptor.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// PagedPatients is one page of list results together with its descriptor.
type PagedPatients struct {
	Patients   []*Patient `json:"records"`
	Pagination Pagination `json:"pagination"`
}

// AgeGroupStats is the raw aggregate computed by the store: counts per age
// bucket plus the mean age rounded to one decimal.
type AgeGroupStats struct {
	Total      int     `json:"total"`
	Minors     int     `json:"minors"`
	Adults     int     `json:"adults"`
	Seniors    int     `json:"seniors"`
	AverageAge float64 `json:"averageAge"`
}

// StatsPercentages is the share of each bucket, rounded to one decimal.
type StatsPercentages struct {
	Minors  float64 `json:"minors"`
	Adults  float64 `json:"adults"`
	Seniors float64 `json:"seniors"`
}

// PatientStats is the user-facing stats payload: the raw aggregate augmented
// with percentage breakdowns.
type PatientStats struct {
	AgeGroupStats
	Percentages StatsPercentages `json:"percentages"`
}

// BulkCreateError names the failing element of a bulk request by its index.
type BulkCreateError struct {
	Index int    `json:"index"`
	Email string `json:"email,omitempty"`
	Error string `json:"error"`
}

// BulkCreateReport is the partial-success outcome of a bulk create: each
// element succeeds or fails independently.
type BulkCreateReport struct {
	Created int               `json:"created"`
	Failed  int               `json:"failed"`
	Total   int               `json:"total"`
	Results []*Patient        `json:"results"`
	Errors  []BulkCreateError `json:"errors"`
}
