package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"patient-record-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const validationErrorCode = "VALIDATION_ERROR"

type fieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

type errorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Message   string       `json:"message" example:"Error"`
	Code      string       `json:"code,omitempty" example:"VALIDATION_ERROR"`
	Details   []fieldError `json:"details,omitempty"`
	Data      interface{}  `json:"data,omitempty" swaggertype:"object"`
	Timestamp string       `json:"timestamp" example:"2024-01-01T12:00:00Z"`
}

type successResponse struct {
	Success    bool               `json:"success" example:"true"`
	Message    string             `json:"message,omitempty" example:"Success message"`
	Data       interface{}        `json:"data,omitempty" swaggertype:"object"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
	Timestamp  string             `json:"timestamp" example:"2024-01-01T12:00:00Z"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{
		Success:   false,
		Message:   message,
		Timestamp: timestamp(),
	})
}

// newErrorDataResponse is an error envelope that still carries a payload,
// such as the per-item report of a fully failed bulk request.
func newErrorDataResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.AbortWithStatusJSON(statusCode, errorResponse{
		Success:   false,
		Message:   message,
		Data:      data,
		Timestamp: timestamp(),
	})
}

func newValidationErrorResponse(c *gin.Context, message string, details []fieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Success:   false,
		Message:   message,
		Code:      validationErrorCode,
		Details:   details,
		Timestamp: timestamp(),
	})
}

func newSuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, successResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: timestamp(),
	})
}

func newPaginatedResponse(c *gin.Context, statusCode int, message string, data interface{}, pagination domain.Pagination) {
	c.JSON(statusCode, successResponse{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &pagination,
		Timestamp:  timestamp(),
	})
}

// bindingDetails turns validator binding failures into per-field detail
// entries. Field names are reported in their JSON form.
func bindingDetails(err error) []fieldError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	details := make([]fieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		details = append(details, fieldError{
			Field:   jsonFieldName(fe.Field()),
			Message: validationMessage(fe),
			Value:   fe.Value(),
		})
	}
	return details
}

func jsonFieldName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

func validationMessage(fe validator.FieldError) string {
	field := jsonFieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	default:
		return field + " is invalid"
	}
}
