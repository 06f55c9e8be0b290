package http

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"patient-record-service/internal/core/domain"
	"patient-record-service/internal/core/ports"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	patientService ports.PatientService
	logger         ports.LoggerPort
	metrics        ports.MetricsPort
}

func NewPatientHandler(
	patientService ports.PatientService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		logger:         logger,
		metrics:        metrics,
	}
}

type PatientRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100" example:"Ana Silva"`
	BirthDate string `json:"birthDate" binding:"required,datetime=2006-01-02" example:"1990-01-01"`
	Email     string `json:"email" binding:"required,email" example:"ana@example.com"`
	Address   string `json:"address" binding:"required,min=10" example:"Rua Um, 100, SP"`
}

type UpdatePatientRequest struct {
	Name      *string `json:"name,omitempty" example:"Ana Souza"`
	BirthDate *string `json:"birthDate,omitempty" example:"1990-01-01"`
	Email     *string `json:"email,omitempty" example:"new@example.com"`
	Address   *string `json:"address,omitempty" example:"Rua Dois, 200, SP"`
}

type BulkCreateRequest struct {
	Patients []PatientRequest `json:"patients" binding:"required,min=1,dive"`
}

func (r *PatientRequest) toPatient() *domain.Patient {
	return &domain.Patient{
		Name:      r.Name,
		BirthDate: r.BirthDate,
		Email:     r.Email,
		Address:   r.Address,
	}
}

func (r *UpdatePatientRequest) toCommand() *domain.UpdatePatientCommand {
	return &domain.UpdatePatientCommand{
		Name:      r.Name,
		BirthDate: r.BirthDate,
		Email:     r.Email,
		Address:   r.Address,
	}
}

// handleServiceError maps domain outcomes onto HTTP statuses. Business-rule
// violations carry field-level detail so clients can highlight the input.
func (h *PatientHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPatientNotFound):
		newErrorResponse(c, http.StatusNotFound, "Patient not found")
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		newErrorResponse(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, domain.ErrInvalidPatientID):
		newErrorResponse(c, http.StatusBadRequest, "Invalid patient ID")
	case errors.Is(err, domain.ErrInvalidBirthDate), errors.Is(err, domain.ErrImplausibleAge):
		newValidationErrorResponse(c, "Validation failed", []fieldError{
			{Field: "birthDate", Message: err.Error()},
		})
	case errors.Is(err, domain.ErrNameTooShort):
		newValidationErrorResponse(c, "Validation failed", []fieldError{
			{Field: "name", Message: err.Error()},
		})
	case errors.Is(err, domain.ErrAddressTooShort):
		newValidationErrorResponse(c, "Validation failed", []fieldError{
			{Field: "address", Message: err.Error()},
		})
	case errors.Is(err, domain.ErrNoFieldsToUpdate):
		newValidationErrorResponse(c, err.Error(), nil)
	case strings.HasPrefix(err.Error(), "validation failed"), err.Error() == "invalid date format":
		newValidationErrorResponse(c, err.Error(), nil)
	default:
		newErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// parseListOptions reads pagination, sorting and filter query parameters.
// Returned details are non-empty when a parameter is malformed.
func parseListOptions(c *gin.Context) (domain.ListPatientsOptions, []fieldError) {
	opts := domain.ListPatientsOptions{
		Page:      1,
		Limit:     10,
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}

	var details []fieldError

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			details = append(details, fieldError{Field: "page", Message: "page must be a positive integer", Value: raw})
		} else {
			opts.Page = page
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			details = append(details, fieldError{Field: "limit", Message: "limit must be between 1 and 100", Value: raw})
		} else {
			opts.Limit = limit
		}
	}
	if raw := c.Query("minAge"); raw != "" {
		minAge, err := strconv.Atoi(raw)
		if err != nil || minAge < 0 {
			details = append(details, fieldError{Field: "minAge", Message: "minAge must be a non-negative integer", Value: raw})
		} else {
			opts.MinAge = &minAge
		}
	}
	if raw := c.Query("maxAge"); raw != "" {
		maxAge, err := strconv.Atoi(raw)
		if err != nil || maxAge < 0 {
			details = append(details, fieldError{Field: "maxAge", Message: "maxAge must be a non-negative integer", Value: raw})
		} else {
			opts.MaxAge = &maxAge
		}
	}

	return opts, details
}

// @Summary List patients
// @Description Paginated, filtered patient listing
// @Tags patients
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (1-100)" default(10)
// @Param search query string false "Substring match on name or email"
// @Param sortBy query string false "name|email|birthDate|createdAt|updatedAt"
// @Param sortOrder query string false "asc|desc"
// @Param minAge query int false "Minimum age, inclusive"
// @Param maxAge query int false "Maximum age, inclusive"
// @Success 200 {object} successResponse{data=[]domain.Patient}
// @Failure 400 {object} errorResponse "Invalid query params"
// @Router /api/patients [get]
func (h *PatientHandler) ListPatients(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	opts, details := parseListOptions(c)
	if len(details) > 0 {
		newValidationErrorResponse(c, "Invalid query parameters", details)
		return
	}

	page, err := h.patientService.ListPatients(c.Request.Context(), opts)
	if err != nil {
		h.logger.Error("Failed to list patients", map[string]interface{}{
			"error": err.Error(),
		})
		h.handleServiceError(c, err)
		return
	}

	newPaginatedResponse(c, http.StatusOK, "Patients retrieved successfully", page.Patients, page.Pagination)
}

// @Summary Get patient
// @Description Fetch one patient by ID
// @Tags patients
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} successResponse{data=domain.Patient}
// @Failure 404 {object} errorResponse "Patient not found"
// @Router /api/patients/{id} [get]
func (h *PatientHandler) GetPatient(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	patient, err := h.patientService.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	newSuccessResponse(c, http.StatusOK, "Patient found", patient)
}

// @Summary Create patient
// @Description Create a new patient record
// @Tags patients
// @Accept json
// @Produce json
// @Param request body PatientRequest true "Patient fields"
// @Success 201 {object} successResponse{data=domain.Patient}
// @Failure 400 {object} errorResponse "Validation error"
// @Failure 409 {object} errorResponse "Email already registered"
// @Router /api/patients [post]
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create patient", map[string]interface{}{
			"error": err.Error(),
		})
		newValidationErrorResponse(c, "Invalid request body", bindingDetails(err))
		return
	}

	created, err := h.patientService.CreatePatient(c.Request.Context(), req.toPatient())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	newSuccessResponse(c, http.StatusCreated, "Patient created successfully", created)
}

// @Summary Replace patient
// @Description Full update of a patient record
// @Tags patients
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param request body PatientRequest true "All patient fields"
// @Success 200 {object} successResponse{data=domain.Patient}
// @Failure 400 {object} errorResponse "Validation error"
// @Failure 404 {object} errorResponse "Patient not found"
// @Failure 409 {object} errorResponse "Email already registered"
// @Router /api/patients/{id} [put]
func (h *PatientHandler) ReplacePatient(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in replace patient", map[string]interface{}{
			"error": err.Error(),
		})
		newValidationErrorResponse(c, "Invalid request body", bindingDetails(err))
		return
	}

	cmd := &domain.UpdatePatientCommand{
		Name:      &req.Name,
		BirthDate: &req.BirthDate,
		Email:     &req.Email,
		Address:   &req.Address,
	}

	updated, err := h.patientService.UpdatePatient(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	newSuccessResponse(c, http.StatusOK, "Patient updated successfully", updated)
}

// @Summary Update patient
// @Description Partial update of a patient record
// @Tags patients
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param request body UpdatePatientRequest true "Fields to update"
// @Success 200 {object} successResponse{data=domain.Patient}
// @Failure 400 {object} errorResponse "Validation error"
// @Failure 404 {object} errorResponse "Patient not found"
// @Failure 409 {object} errorResponse "Email already registered"
// @Router /api/patients/{id} [patch]
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update patient", map[string]interface{}{
			"error": err.Error(),
		})
		newValidationErrorResponse(c, "Invalid request body", bindingDetails(err))
		return
	}

	updated, err := h.patientService.UpdatePatient(c.Request.Context(), c.Param("id"), req.toCommand())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	newSuccessResponse(c, http.StatusOK, "Patient updated successfully", updated)
}

// @Summary Delete patient
// @Description Hard-delete a patient record
// @Tags patients
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} successResponse
// @Failure 404 {object} errorResponse "Patient not found"
// @Router /api/patients/{id} [delete]
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if err := h.patientService.DeletePatient(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	newSuccessResponse(c, http.StatusOK, "Patient deleted successfully", nil)
}

// @Summary Search patients
// @Description Case-insensitive substring search on name or email
// @Tags patients
// @Produce json
// @Param q query string true "Search term"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (1-100)" default(10)
// @Success 200 {object} successResponse{data=[]domain.Patient}
// @Failure 400 {object} errorResponse "Missing query"
// @Router /api/patients/search [get]
func (h *PatientHandler) SearchPatients(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		newValidationErrorResponse(c, "Search query is required", []fieldError{
			{Field: "q", Message: "q must not be empty"},
		})
		return
	}

	opts, details := parseListOptions(c)
	if len(details) > 0 {
		newValidationErrorResponse(c, "Invalid query parameters", details)
		return
	}
	opts.Search = query

	page, err := h.patientService.ListPatients(c.Request.Context(), opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	newPaginatedResponse(c, http.StatusOK, "Search completed successfully", page.Patients, page.Pagination)
}

// @Summary Patients by age range
// @Description List patients whose derived age falls within the given bounds
// @Tags patients
// @Produce json
// @Param minAge query int false "Minimum age, inclusive"
// @Param maxAge query int false "Maximum age, inclusive"
// @Success 200 {object} successResponse{data=[]domain.Patient}
// @Failure 400 {object} errorResponse "Neither bound given"
// @Router /api/patients/age-range [get]
func (h *PatientHandler) PatientsByAgeRange(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	opts, details := parseListOptions(c)
	if len(details) > 0 {
		newValidationErrorResponse(c, "Invalid query parameters", details)
		return
	}

	if opts.MinAge == nil && opts.MaxAge == nil {
		newValidationErrorResponse(c, "At least one of minAge or maxAge is required", nil)
		return
	}
	if opts.MinAge != nil && opts.MaxAge != nil && *opts.MinAge > *opts.MaxAge {
		newValidationErrorResponse(c, "minAge must not exceed maxAge", []fieldError{
			{Field: "minAge", Message: "minAge must not exceed maxAge", Value: *opts.MinAge},
		})
		return
	}

	page, err := h.patientService.ListPatients(c.Request.Context(), opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	newPaginatedResponse(c, http.StatusOK, "Patients retrieved successfully", page.Patients, page.Pagination)
}

// @Summary Patient statistics
// @Description Age-group counts, percentages and average age
// @Tags patients
// @Produce json
// @Success 200 {object} successResponse{data=domain.PatientStats}
// @Router /api/patients/stats [get]
func (h *PatientHandler) GetStats(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	stats, err := h.patientService.GetStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	newSuccessResponse(c, http.StatusOK, "Stats computed successfully", stats)
}

// @Summary Export patients
// @Description Download all patient records as a JSON or CSV attachment
// @Tags patients
// @Produce json
// @Param format query string false "json|csv" default(json)
// @Success 200 {file} file "Exported records"
// @Failure 400 {object} errorResponse "Unsupported format"
// @Router /api/patients/export [get]
func (h *PatientHandler) ExportPatients(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "csv" {
		newValidationErrorResponse(c, "Unsupported export format", []fieldError{
			{Field: "format", Message: "format must be json or csv", Value: format},
		})
		return
	}

	patients, err := h.patientService.ExportPatients(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if format == "csv" {
		h.writeCSV(c, patients)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="patients.json"`)
	c.JSON(http.StatusOK, patients)
}

func (h *PatientHandler) writeCSV(c *gin.Context, patients []*domain.Patient) {
	c.Header("Content-Disposition", `attachment; filename="patients.csv"`)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	record := []string{"id", "name", "birthDate", "email", "address", "createdAt", "updatedAt"}
	if err := writer.Write(record); err != nil {
		h.logger.Error("Failed to write CSV header", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	for _, p := range patients {
		record = []string{
			p.ID.String(),
			p.Name,
			p.BirthDate,
			p.Email,
			p.Address,
			p.CreatedAt.UTC().Format(time.RFC3339),
			p.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			h.logger.Error("Failed to write CSV row", map[string]interface{}{
				"error": err.Error(),
				"id":    p.ID.String(),
			})
			return
		}
	}
	writer.Flush()
}

// @Summary Bulk create patients
// @Description Create many patients; each element succeeds or fails independently
// @Tags patients
// @Accept json
// @Produce json
// @Param request body BulkCreateRequest true "Patients to create"
// @Success 201 {object} successResponse{data=domain.BulkCreateReport} "All created"
// @Success 200 {object} successResponse{data=domain.BulkCreateReport} "Partial success"
// @Failure 400 {object} errorResponse "All failed"
// @Router /api/patients/bulk [post]
func (h *PatientHandler) BulkCreatePatients(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in bulk create", map[string]interface{}{
			"error": err.Error(),
		})
		newValidationErrorResponse(c, "Invalid request body", bindingDetails(err))
		return
	}

	patients := make([]*domain.Patient, 0, len(req.Patients))
	for i := range req.Patients {
		patients = append(patients, req.Patients[i].toPatient())
	}

	report := h.patientService.BulkCreatePatients(c.Request.Context(), patients)

	switch {
	case report.Failed == 0:
		newSuccessResponse(c, http.StatusCreated, "All patients created successfully", report)
	case report.Created > 0:
		newSuccessResponse(c, http.StatusOK, "Bulk create completed with errors", report)
	default:
		newErrorDataResponse(c, http.StatusBadRequest, "All patients failed to create", report)
	}
}

// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} successResponse
// @Router /health [get]
func (h *PatientHandler) Health(c *gin.Context) {
	newSuccessResponse(c, http.StatusOK, "Service is healthy", gin.H{
		"status": "ok",
	})
}
