package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"patient-record-service/internal/config"
	"patient-record-service/internal/core/domain"
	"patient-record-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockPatientService is a func-field mock of ports.PatientService.
type MockPatientService struct {
	CreatePatientFunc      func(ctx context.Context, patient *domain.Patient) (*domain.Patient, error)
	GetPatientFunc         func(ctx context.Context, id string) (*domain.Patient, error)
	ListPatientsFunc       func(ctx context.Context, opts domain.ListPatientsOptions) (*domain.PagedPatients, error)
	UpdatePatientFunc      func(ctx context.Context, id string, cmd *domain.UpdatePatientCommand) (*domain.Patient, error)
	DeletePatientFunc      func(ctx context.Context, id string) error
	GetStatsFunc           func(ctx context.Context) (*domain.PatientStats, error)
	ExportPatientsFunc     func(ctx context.Context) ([]*domain.Patient, error)
	BulkCreatePatientsFunc func(ctx context.Context, patients []*domain.Patient) *domain.BulkCreateReport
}

func (m *MockPatientService) CreatePatient(ctx context.Context, patient *domain.Patient) (*domain.Patient, error) {
	if m.CreatePatientFunc != nil {
		return m.CreatePatientFunc(ctx, patient)
	}
	return nil, errors.New("CreatePatientFunc not implemented in mock")
}

func (m *MockPatientService) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	if m.GetPatientFunc != nil {
		return m.GetPatientFunc(ctx, id)
	}
	return nil, errors.New("GetPatientFunc not implemented in mock")
}

func (m *MockPatientService) ListPatients(ctx context.Context, opts domain.ListPatientsOptions) (*domain.PagedPatients, error) {
	if m.ListPatientsFunc != nil {
		return m.ListPatientsFunc(ctx, opts)
	}
	return nil, errors.New("ListPatientsFunc not implemented in mock")
}

func (m *MockPatientService) UpdatePatient(ctx context.Context, id string, cmd *domain.UpdatePatientCommand) (*domain.Patient, error) {
	if m.UpdatePatientFunc != nil {
		return m.UpdatePatientFunc(ctx, id, cmd)
	}
	return nil, errors.New("UpdatePatientFunc not implemented in mock")
}

func (m *MockPatientService) DeletePatient(ctx context.Context, id string) error {
	if m.DeletePatientFunc != nil {
		return m.DeletePatientFunc(ctx, id)
	}
	return errors.New("DeletePatientFunc not implemented in mock")
}

func (m *MockPatientService) GetStats(ctx context.Context) (*domain.PatientStats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx)
	}
	return nil, errors.New("GetStatsFunc not implemented in mock")
}

func (m *MockPatientService) ExportPatients(ctx context.Context) ([]*domain.Patient, error) {
	if m.ExportPatientsFunc != nil {
		return m.ExportPatientsFunc(ctx)
	}
	return nil, errors.New("ExportPatientsFunc not implemented in mock")
}

func (m *MockPatientService) BulkCreatePatients(ctx context.Context, patients []*domain.Patient) *domain.BulkCreateReport {
	if m.BulkCreatePatientsFunc != nil {
		return m.BulkCreatePatientsFunc(ctx, patients)
	}
	return &domain.BulkCreateReport{}
}

var _ ports.PatientService = (*MockPatientService)(nil)

type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Warn(string, map[string]interface{})  {}

type nopMetrics struct{}

func (nopMetrics) IncrementCounter(string, map[string]string)              {}
func (nopMetrics) RecordDuration(string, time.Duration, map[string]string) {}
func (nopMetrics) RecordMetrics(*gin.Context, time.Time)                   {}

func newTestRouter(t *testing.T, svc ports.PatientService) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewPatientHandler(svc, nopLogger{}, nopMetrics{})
	tokenService := NewJWTTokenService("test-secret", "24h", nopLogger{})

	router, err := NewRouter(&config.HTTP{Env: "test", AllowedOrigins: "*"}, tokenService, handler)
	require.NoError(t, err)
	return router
}

func perform(router *Router, method, target string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

func storedPatient() *domain.Patient {
	return &domain.Patient{
		ID:        uuid.New(),
		Name:      "Ana Silva",
		BirthDate: "1990-01-01",
		Email:     "ana@x.com",
		Address:   "Rua Um, 100, SP",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestCreatePatientHandler_Created(t *testing.T) {
	stored := storedPatient()
	router := newTestRouter(t, &MockPatientService{
		CreatePatientFunc: func(_ context.Context, patient *domain.Patient) (*domain.Patient, error) {
			return stored, nil
		},
	})

	body := []byte(`{"name":"Ana Silva","birthDate":"1990-01-01","email":"Ana@X.com","address":"Rua Um, 100, SP"}`)
	recorder := perform(router, http.MethodPost, "/api/patients", body)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, true, envelope["success"])
	assert.NotEmpty(t, envelope["timestamp"])

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, stored.ID.String(), data["id"])
	assert.Equal(t, "ana@x.com", data["email"])
}

func TestCreatePatientHandler_MissingFields(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{})

	recorder := perform(router, http.MethodPost, "/api/patients", []byte(`{"name":"Ana Silva"}`))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "VALIDATION_ERROR", envelope["code"])

	details := envelope["details"].([]interface{})
	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.(map[string]interface{})["field"].(string))
	}
	assert.Contains(t, fields, "birthDate")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "address")
}

func TestCreatePatientHandler_FutureBirthDate(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		CreatePatientFunc: func(_ context.Context, patient *domain.Patient) (*domain.Patient, error) {
			return nil, domain.ErrInvalidBirthDate
		},
	})

	tomorrow := time.Now().AddDate(0, 0, 1).Format(domain.BirthDateLayout)
	body := []byte(`{"name":"Ana Silva","birthDate":"` + tomorrow + `","email":"ana@x.com","address":"Rua Um, 100, SP"}`)
	recorder := perform(router, http.MethodPost, "/api/patients", body)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, "VALIDATION_ERROR", envelope["code"])

	details := envelope["details"].([]interface{})
	require.Len(t, details, 1)
	assert.Equal(t, "birthDate", details[0].(map[string]interface{})["field"])
}

func TestCreatePatientHandler_DuplicateEmail(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		CreatePatientFunc: func(_ context.Context, patient *domain.Patient) (*domain.Patient, error) {
			return nil, domain.ErrEmailAlreadyExists
		},
	})

	body := []byte(`{"name":"Ana Silva","birthDate":"1990-01-01","email":"ana@x.com","address":"Rua Um, 100, SP"}`)
	recorder := perform(router, http.MethodPost, "/api/patients", body)

	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestGetPatientHandler_NotFound(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		GetPatientFunc: func(_ context.Context, id string) (*domain.Patient, error) {
			return nil, domain.ErrPatientNotFound
		},
	})

	recorder := perform(router, http.MethodGet, "/api/patients/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListPatientsHandler_PaginationEnvelope(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		ListPatientsFunc: func(_ context.Context, opts domain.ListPatientsOptions) (*domain.PagedPatients, error) {
			assert.Equal(t, 2, opts.Page)
			assert.Equal(t, 5, opts.Limit)
			return &domain.PagedPatients{
				Patients:   []*domain.Patient{storedPatient()},
				Pagination: domain.NewPagination(2, 5, 12),
			}, nil
		},
	})

	recorder := perform(router, http.MethodGet, "/api/patients?page=2&limit=5", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	pagination := envelope["pagination"].(map[string]interface{})
	assert.Equal(t, float64(12), pagination["total"])
	assert.Equal(t, float64(3), pagination["totalPages"])
	assert.Equal(t, true, pagination["hasNext"])
	assert.Equal(t, true, pagination["hasPrev"])
}

func TestListPatientsHandler_InvalidParams(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{})

	recorder := perform(router, http.MethodGet, "/api/patients?page=zero&limit=9000", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, "VALIDATION_ERROR", envelope["code"])
	assert.Len(t, envelope["details"], 2)
}

func TestListPatientsHandler_EmptyFilterResult(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		ListPatientsFunc: func(_ context.Context, opts domain.ListPatientsOptions) (*domain.PagedPatients, error) {
			require.NotNil(t, opts.MinAge)
			assert.Equal(t, 200, *opts.MinAge)
			return &domain.PagedPatients{
				Patients:   []*domain.Patient{},
				Pagination: domain.NewPagination(1, 10, 0),
			}, nil
		},
	})

	recorder := perform(router, http.MethodGet, "/api/patients?minAge=200", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, []interface{}{}, envelope["data"])
	pagination := envelope["pagination"].(map[string]interface{})
	assert.Equal(t, float64(0), pagination["total"])
}

func TestSearchPatientsHandler_MissingQuery(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{})

	recorder := perform(router, http.MethodGet, "/api/patients/search", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSearchPatientsHandler_DelegatesQuery(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		ListPatientsFunc: func(_ context.Context, opts domain.ListPatientsOptions) (*domain.PagedPatients, error) {
			assert.Equal(t, "silva", opts.Search)
			return &domain.PagedPatients{
				Patients:   []*domain.Patient{storedPatient()},
				Pagination: domain.NewPagination(1, 10, 1),
			}, nil
		},
	})

	recorder := perform(router, http.MethodGet, "/api/patients/search?q=silva", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestAgeRangeHandler_RequiresABound(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{})

	recorder := perform(router, http.MethodGet, "/api/patients/age-range", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAgeRangeHandler_RejectsInvertedBounds(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{})

	recorder := perform(router, http.MethodGet, "/api/patients/age-range?minAge=65&maxAge=18", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdatePatientHandler_Patch(t *testing.T) {
	stored := storedPatient()
	router := newTestRouter(t, &MockPatientService{
		UpdatePatientFunc: func(_ context.Context, id string, cmd *domain.UpdatePatientCommand) (*domain.Patient, error) {
			require.NotNil(t, cmd.Name)
			assert.Nil(t, cmd.Email)
			updated := *stored
			updated.Name = *cmd.Name
			return &updated, nil
		},
	})

	body := []byte(`{"name":"Ana Souza"}`)
	recorder := perform(router, http.MethodPatch, "/api/patients/"+stored.ID.String(), body)

	assert.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "Ana Souza", data["name"])
}

func TestDeletePatientHandler(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		DeletePatientFunc: func(_ context.Context, id string) error {
			return nil
		},
	})

	recorder := perform(router, http.MethodDelete, "/api/patients/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestExportPatientsHandler_UnsupportedFormat(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{})

	recorder := perform(router, http.MethodGet, "/api/patients/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestExportPatientsHandler_CSV(t *testing.T) {
	stored := storedPatient()
	router := newTestRouter(t, &MockPatientService{
		ExportPatientsFunc: func(_ context.Context) ([]*domain.Patient, error) {
			return []*domain.Patient{stored}, nil
		},
	})

	recorder := perform(router, http.MethodGet, "/api/patients/export?format=csv", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "patients.csv")

	lines := strings.Split(strings.TrimSpace(recorder.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,name,birthDate,email,address,createdAt,updatedAt", lines[0])
	assert.Contains(t, lines[1], stored.Email)
}

func TestExportPatientsHandler_JSONAttachment(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		ExportPatientsFunc: func(_ context.Context) ([]*domain.Patient, error) {
			return []*domain.Patient{storedPatient(), storedPatient()}, nil
		},
	})

	recorder := perform(router, http.MethodGet, "/api/patients/export", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "patients.json")

	var exported []map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &exported))
	assert.Len(t, exported, 2)
}

func TestBulkCreateHandler_PartialSuccess(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		BulkCreatePatientsFunc: func(_ context.Context, patients []*domain.Patient) *domain.BulkCreateReport {
			return &domain.BulkCreateReport{
				Created: 2,
				Failed:  1,
				Total:   3,
				Results: []*domain.Patient{storedPatient(), storedPatient()},
				Errors: []domain.BulkCreateError{
					{Index: 1, Email: "dup@x.com", Error: domain.ErrEmailAlreadyExists.Error()},
				},
			}
		},
	})

	body := []byte(`{"patients":[
        {"name":"One","birthDate":"1990-01-01","email":"one@x.com","address":"Rua Um, 100, SP"},
        {"name":"Two","birthDate":"1990-01-01","email":"dup@x.com","address":"Rua Um, 100, SP"},
        {"name":"Three","birthDate":"1990-01-01","email":"three@x.com","address":"Rua Um, 100, SP"}
    ]}`)
	recorder := perform(router, http.MethodPost, "/api/patients/bulk", body)

	assert.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["created"])
	assert.Equal(t, float64(1), data["failed"])

	errs := data["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.Equal(t, float64(1), errs[0].(map[string]interface{})["index"])
}

func TestBulkCreateHandler_AllCreated(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		BulkCreatePatientsFunc: func(_ context.Context, patients []*domain.Patient) *domain.BulkCreateReport {
			return &domain.BulkCreateReport{Created: 1, Total: 1, Results: []*domain.Patient{storedPatient()}}
		},
	})

	body := []byte(`{"patients":[{"name":"One","birthDate":"1990-01-01","email":"one@x.com","address":"Rua Um, 100, SP"}]}`)
	recorder := perform(router, http.MethodPost, "/api/patients/bulk", body)
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func TestBulkCreateHandler_AllFailed(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		BulkCreatePatientsFunc: func(_ context.Context, patients []*domain.Patient) *domain.BulkCreateReport {
			return &domain.BulkCreateReport{
				Failed: 1,
				Total:  1,
				Errors: []domain.BulkCreateError{{Index: 0, Error: domain.ErrEmailAlreadyExists.Error()}},
			}
		},
	})

	body := []byte(`{"patients":[{"name":"One","birthDate":"1990-01-01","email":"dup@x.com","address":"Rua Um, 100, SP"}]}`)
	recorder := perform(router, http.MethodPost, "/api/patients/bulk", body)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// Same error envelope as every other failure path, report attached.
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, false, envelope["success"])
	assert.NotEmpty(t, envelope["timestamp"])

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["failed"])
	require.Len(t, data["errors"], 1)
}

func TestHealthHandlers(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{})

	for _, target := range []string{"/health", "/api/patients/health"} {
		recorder := perform(router, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusOK, recorder.Code, target)
	}
}

func TestStatsHandler(t *testing.T) {
	router := newTestRouter(t, &MockPatientService{
		GetStatsFunc: func(_ context.Context) (*domain.PatientStats, error) {
			return &domain.PatientStats{
				AgeGroupStats: domain.AgeGroupStats{Total: 4, Minors: 1, Adults: 2, Seniors: 1, AverageAge: 44.5},
				Percentages:   domain.StatsPercentages{Minors: 25, Adults: 50, Seniors: 25},
			}, nil
		},
	})

	recorder := perform(router, http.MethodGet, "/api/patients/stats", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["total"])
	assert.Equal(t, 44.5, data["averageAge"])

	percentages := data["percentages"].(map[string]interface{})
	assert.Equal(t, float64(50), percentages["adults"])
}
