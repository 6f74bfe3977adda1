package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents error response structure
// @Description Error envelope
type ErrorResponse struct {
	Success bool              `json:"success" example:"false"`         // Always false
	Error   string            `json:"error" example:"Entry not found"` // Error message
	Details map[string]string `json:"details,omitempty"`               // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendJSON writes v as the JSON response body.
func SendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	errorResp := ErrorResponse{Success: false, Error: message}

	var verrs validator.ValidationErrors
	if validationErr != nil && errors.As(validationErr, &verrs) {
		errorResp.Details = make(map[string]string, len(verrs))
		for _, err := range verrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	SendJSON(w, statusCode, errorResp)
}
